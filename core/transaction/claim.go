package transaction

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/types"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

type ClaimData struct {
	Value string
}

func (data ClaimData) TxType() TxType {
	return TypeClaim
}

func (data ClaimData) String() string {
	return fmt.Sprintf("CLAIM value:%s", data.Value)
}

func (data ClaimData) Run(tx *Transaction, context *Context) Response {
	value, errResp := parseValue(data.Value)
	if errResp != nil {
		return *errResp
	}

	return runClaim(tx, context, value)
}

func runClaim(tx *Transaction, context *Context, value *big.Int) Response {
	sender, _ := tx.Sender()

	var err error
	if context.IsCheck {
		err = context.Ledger.CheckClaim(sender, value)
	} else {
		err = context.Ledger.Claim(sender, value)
	}
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, value)
	}

	return claimResponse(sender, value)
}

func claimResponse(sender types.Address, value *big.Int) Response {
	return Response{
		Code: code.OK,
		Data: []byte(value.String()),
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.account"), Value: []byte(hex.EncodeToString(sender[:])), Index: true},
			{Key: []byte("tx.amount"), Value: []byte(value.String())},
		},
	}
}

// ClaimAllData claims the whole remaining entitlement of the sender.
type ClaimAllData struct{}

func (data ClaimAllData) TxType() TxType {
	return TypeClaimAll
}

func (data ClaimAllData) String() string {
	return "CLAIM ALL"
}

func (data ClaimAllData) Run(tx *Transaction, context *Context) Response {
	sender, _ := tx.Sender()

	if context.IsCheck {
		if err := context.Ledger.CheckClaimAll(sender); err != nil {
			return errorResponse(err, context, tx, types.Address{}, nil)
		}
		return claimResponse(sender, context.Ledger.EntitlementOf(sender))
	}

	value, err := context.Ledger.ClaimAll(sender)
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, nil)
	}

	return claimResponse(sender, value)
}

// TransferData is the token-style claim, To is ignored.
type TransferData struct {
	To    types.Address
	Value string
}

func (data TransferData) TxType() TxType {
	return TypeTransfer
}

func (data TransferData) String() string {
	return fmt.Sprintf("TRANSFER to:%s value:%s", data.To.String(), data.Value)
}

func (data TransferData) Run(tx *Transaction, context *Context) Response {
	value, errResp := parseValue(data.Value)
	if errResp != nil {
		return *errResp
	}

	sender, _ := tx.Sender()

	var err error
	if context.IsCheck {
		err = context.Ledger.CheckTransfer(sender, data.To, value)
	} else {
		err = context.Ledger.Transfer(sender, data.To, value)
	}
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, value)
	}

	return claimResponse(sender, value)
}
