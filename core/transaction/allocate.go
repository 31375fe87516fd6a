package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/types"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

type AllocateData struct {
	Recipient types.Address
	Value     string
}

func (data AllocateData) TxType() TxType {
	return TypeAllocate
}

func (data AllocateData) String() string {
	return fmt.Sprintf("ALLOCATE to:%s value:%s", data.Recipient.String(), data.Value)
}

func (data AllocateData) Run(tx *Transaction, context *Context) Response {
	sender, _ := tx.Sender()

	value, errResp := parseValue(data.Value)
	if errResp != nil {
		return *errResp
	}

	var err error
	if context.IsCheck {
		err = context.Ledger.CheckAllocate(sender, data.Recipient, value)
	} else {
		err = context.Ledger.Allocate(sender, data.Recipient, value)
	}
	if err != nil {
		return errorResponse(err, context, tx, data.Recipient, value)
	}

	return Response{
		Code: code.OK,
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.recipient"), Value: []byte(hex.EncodeToString(data.Recipient[:])), Index: true},
			{Key: []byte("tx.amount"), Value: []byte(value.String())},
		},
	}
}
