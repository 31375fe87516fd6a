package transaction

import (
	"math/big"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/types"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

// RetrieveData sends the unallocated backing to the administrator.
type RetrieveData struct{}

func (data RetrieveData) TxType() TxType {
	return TypeRetrieve
}

func (data RetrieveData) String() string {
	return "RETRIEVE"
}

func (data RetrieveData) Run(tx *Transaction, context *Context) Response {
	sender, _ := tx.Sender()

	var amount *big.Int
	var err error
	if context.IsCheck {
		amount, err = context.Ledger.CheckRetrieveRemaining(sender)
	} else {
		amount, err = context.Ledger.RetrieveRemaining(sender)
	}
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, nil)
	}

	return Response{
		Code: code.OK,
		Data: []byte(amount.String()),
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.amount"), Value: []byte(amount.String())},
		},
	}
}
