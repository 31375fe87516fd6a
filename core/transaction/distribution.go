package transaction

import (
	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/types"
)

type PauseData struct{}

func (data PauseData) TxType() TxType {
	return TypePause
}

func (data PauseData) String() string {
	return "PAUSE"
}

func (data PauseData) Run(tx *Transaction, context *Context) Response {
	sender, _ := tx.Sender()

	var err error
	if context.IsCheck {
		err = context.Ledger.CheckPause(sender)
	} else {
		err = context.Ledger.Pause(sender)
	}
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, nil)
	}

	return Response{Code: code.OK}
}

type ResumeData struct{}

func (data ResumeData) TxType() TxType {
	return TypeResume
}

func (data ResumeData) String() string {
	return "RESUME"
}

func (data ResumeData) Run(tx *Transaction, context *Context) Response {
	sender, _ := tx.Sender()

	var err error
	if context.IsCheck {
		err = context.Ledger.CheckResume(sender)
	} else {
		err = context.Ledger.Resume(sender)
	}
	if err != nil {
		return errorResponse(err, context, tx, types.Address{}, nil)
	}

	return Response{Code: code.OK}
}
