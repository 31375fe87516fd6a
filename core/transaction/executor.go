package transaction

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/grant"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/state/token"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/helpers"
	"github.com/pkg/errors"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

const maxTxLength = 1024

// Response represents standard response from tx delivery/check
type Response struct {
	Code uint32                    `json:"code,omitempty"`
	Data []byte                    `json:"data,omitempty"`
	Log  string                    `json:"log,omitempty"`
	Info string                    `json:"-"`
	Tags []abcTypes.EventAttribute `json:"tags,omitempty"`
}

// Context is what a transaction runs against. In check mode the ledger
// operations only validate. Transactions signed for another ChainID are rejected.
type Context struct {
	ChainID string
	State   *state.State
	Ledger  *grant.Ledger
	IsCheck bool
}

type Executor struct {
	decodeTxFunc func(txType TxType) (Data, bool)
}

func NewExecutor(decodeTxFunc func(txType TxType) (Data, bool)) *Executor {
	return &Executor{decodeTxFunc: decodeTxFunc}
}

// RunTx executes transaction in given context
func (e *Executor) RunTx(context *Context, rawTx []byte, currentMempool *sync.Map, notSaveTags bool) Response {
	lenRawTx := len(rawTx)
	if lenRawTx > maxTxLength {
		return Response{
			Code: code.TxTooLarge,
			Log:  fmt.Sprintf("TX length is over %d bytes", maxTxLength),
			Info: EncodeError(code.NewTxTooLarge(fmt.Sprintf("%d", maxTxLength), fmt.Sprintf("%d", lenRawTx))),
		}
	}

	tx, err := e.DecodeFromBytes(rawTx)
	if err != nil {
		if errors.Is(err, ErrUnknownTxType) {
			return Response{
				Code: code.UnknownTxType,
				Log:  err.Error(),
				Info: EncodeError(code.NewUnknownTxType(RawTxType(rawTx))),
			}
		}
		return Response{
			Code: code.DecodeError,
			Log:  err.Error(),
			Info: EncodeError(code.NewDecodeError()),
		}
	}

	if tx.ChainID != context.ChainID {
		return Response{
			Code: code.WrongChainID,
			Log:  fmt.Sprintf("Wrong chain id. Expected %q, got %q", context.ChainID, tx.ChainID),
			Info: EncodeError(code.NewWrongChainID(context.ChainID, tx.ChainID)),
		}
	}

	sender, err := tx.Sender()
	if err != nil {
		return Response{
			Code: code.InvalidSignature,
			Log:  err.Error(),
			Info: EncodeError(code.NewInvalidSignature()),
		}
	}

	if context.Ledger == nil {
		return Response{
			Code: code.LedgerNotDeployed,
			Log:  "Ledger is not deployed",
			Info: EncodeError(code.NewLedgerNotDeployed()),
		}
	}

	if expectedNonce := context.State.Token.GetNonce(sender) + 1; expectedNonce != tx.Nonce {
		return Response{
			Code: code.WrongNonce,
			Log:  fmt.Sprintf("Unexpected nonce. Expected: %d, got %d.", expectedNonce, tx.Nonce),
			Info: EncodeError(code.NewWrongNonce(fmt.Sprintf("%d", expectedNonce), fmt.Sprintf("%d", tx.Nonce))),
		}
	}

	response := tx.decodedData.Run(tx, context)
	if response.Code != code.OK {
		return response
	}

	if context.IsCheck {
		// check if mempool already has transactions from this address
		if _, has := currentMempool.LoadOrStore(sender, true); has {
			return Response{
				Code: code.TxFromSenderAlreadyInMempool,
				Log:  fmt.Sprintf("Tx from %s already exists in mempool", sender.String()),
				Info: EncodeError(code.NewTxFromSenderAlreadyInMempool(sender.String())),
			}
		}
	} else {
		context.State.Token.SetNonce(sender, tx.Nonce)
	}

	if notSaveTags || context.IsCheck {
		response.Tags = nil
	} else {
		response.Tags = append(response.Tags,
			abcTypes.EventAttribute{Key: []byte("tx.from"), Value: []byte(hex.EncodeToString(sender[:])), Index: true},
			abcTypes.EventAttribute{Key: []byte("tx.type"), Value: []byte(hex.EncodeToString([]byte{byte(tx.Type)})), Index: true},
		)
	}

	return response
}

// RawTxType returns the type byte of an encoded transaction, empty when it does not decode.
func RawTxType(rawTx []byte) string {
	var envelope Transaction
	if err := cdc.UnmarshalBinaryBare(rawTx, &envelope); err != nil {
		return ""
	}

	return envelope.Type.String()
}

// EncodeError encodes error to json
func EncodeError(data interface{}) string {
	marshaled, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return string(marshaled)
}

func parseValue(value string) (*big.Int, *Response) {
	amount, err := helpers.ParseAmount(value)
	if err != nil {
		return nil, &Response{
			Code: code.InvalidValue,
			Log:  err.Error(),
			Info: EncodeError(code.NewInvalidValue(value)),
		}
	}

	return amount, nil
}

// errorResponse maps a ledger or token error to its response code.
func errorResponse(err error, context *Context, tx *Transaction, recipient types.Address, value *big.Int) Response {
	ledger := context.Ledger
	sender := tx.MustSender()
	amount := ""
	if value != nil {
		amount = value.String()
	}

	var info interface{}
	var responseCode uint32
	switch {
	case errors.Is(err, grant.ErrUnauthorized):
		responseCode, info = code.Unauthorized, code.NewUnauthorized(ledger.Administrator().String(), sender.String())
	case errors.Is(err, grant.ErrInvalidRecipient):
		responseCode, info = code.InvalidRecipient, code.NewInvalidRecipient(recipient.String())
	case errors.Is(err, grant.ErrZeroAmount):
		responseCode, info = code.ZeroAmount, code.NewZeroAmount()
	case errors.Is(err, grant.ErrAlreadyAllocated):
		responseCode, info = code.AlreadyAllocated, code.NewAlreadyAllocated(recipient.String(), ledger.EntitlementOf(recipient).String())
	case errors.Is(err, grant.ErrAlreadyClaimed):
		responseCode, info = code.AlreadyClaimed, code.NewAlreadyClaimed(sender.String())
	case errors.Is(err, grant.ErrInsufficientBacking):
		responseCode, info = code.InsufficientBacking, code.NewInsufficientBacking(ledger.Available().String(), amount)
	case errors.Is(err, grant.ErrNotAllocated):
		responseCode, info = code.NotAllocated, code.NewNotAllocated(sender.String())
	case errors.Is(err, grant.ErrInsufficientEntitlement):
		responseCode, info = code.InsufficientEntitlement, code.NewInsufficientEntitlement(sender.String(), ledger.EntitlementOf(sender).String(), amount)
	case errors.Is(err, grant.ErrDistributionPaused):
		responseCode, info = code.DistributionPaused, code.NewDistributionPaused()
	case errors.Is(err, grant.ErrNotYetUnlocked):
		unlock := ledger.ClaimUnlockTime()
		if tx.Type == TypeRetrieve {
			unlock = ledger.RetrievalUnlockTime()
		}
		responseCode, info = code.NotYetUnlocked, code.NewNotYetUnlocked(unlock.Format(time.RFC3339), ledger.Now().Format(time.RFC3339))
	case errors.Is(err, grant.ErrAlreadyPaused):
		responseCode, info = code.AlreadyPaused, code.NewAlreadyPaused()
	case errors.Is(err, grant.ErrAlreadyActive):
		responseCode, info = code.AlreadyActive, code.NewAlreadyActive()
	case errors.Is(err, grant.ErrNothingToRetrieve):
		responseCode, info = code.NothingToRetrieve, code.NewNothingToRetrieve(ledger.Backing().String(), ledger.LockedBalance().String())
	case errors.Is(err, grant.ErrUnsupported):
		responseCode, info = code.Unsupported, code.NewUnsupported(tx.Type.String())
	case errors.Is(err, token.ErrInsufficientFunds):
		responseCode, info = code.InsufficientFunds, code.NewInsufficientFunds(ledger.Account().String(), amount)
	case errors.Is(err, token.ErrAccountNotExists):
		responseCode, info = code.AccountNotExists, code.NewAccountNotExists(ledger.Account().String())
	case errors.Is(err, token.ErrInvalidAccount):
		responseCode, info = code.InvalidAccount, code.NewInvalidAccount(sender.String())
	default:
		responseCode, info = code.Unknown, code.NewUnknown()
	}

	return Response{
		Code: responseCode,
		Log:  err.Error(),
		Info: EncodeError(info),
	}
}
