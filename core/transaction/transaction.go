package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/grantledger/grant-node/core/types"
	"github.com/tendermint/go-amino"
)

// TxType of transaction is determined by a single byte.
type TxType byte

func (t TxType) String() string {
	return "0x" + hex.EncodeToString([]byte{byte(t)})
}

const (
	TypeAllocate TxType = 0x01
	TypeClaim    TxType = 0x02
	TypeClaimAll TxType = 0x03
	TypeTransfer TxType = 0x04
	TypePause    TxType = 0x05
	TypeResume   TxType = 0x06
	TypeRetrieve TxType = 0x07
)

const signatureLength = 65

var (
	ErrInvalidSig    = errors.New("invalid transaction signature")
	ErrUnknownTxType = errors.New("unknown tx type")
)

var cdc = amino.NewCodec()

type Transaction struct {
	Nonce     uint64
	ChainID   string
	Type      TxType
	Data      RawData
	Signature []byte

	decodedData Data
	sender      *types.Address
}

type RawData []byte

type Data interface {
	String() string
	TxType() TxType
	Run(tx *Transaction, context *Context) Response
}

// unsigned is the part of a transaction covered by the signature
type unsigned struct {
	Nonce   uint64
	ChainID string
	Type    TxType
	Data    RawData
}

func (tx *Transaction) Serialize() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Transaction) String() string {
	sender, _ := tx.Sender()

	return fmt.Sprintf("TX nonce:%d chain:%s from:%s data:%s",
		tx.Nonce, tx.ChainID, sender.String(), tx.decodedData.String())
}

func (tx *Transaction) Hash() []byte {
	enc, err := cdc.MarshalBinaryBare(unsigned{Nonce: tx.Nonce, ChainID: tx.ChainID, Type: tx.Type, Data: tx.Data})
	if err != nil {
		panic(err)
	}

	return types.Keccak256(enc)
}

// Sign sets a compact recoverable secp256k1 signature of the transaction hash.
func (tx *Transaction) Sign(prv *btcec.PrivateKey) error {
	sig, err := btcec.SignCompact(btcec.S256(), prv, tx.Hash(), false)
	if err != nil {
		return err
	}

	tx.Signature = sig
	tx.sender = nil

	return nil
}

func (tx *Transaction) MustSender() types.Address {
	sender, err := tx.Sender()
	if err != nil {
		panic(err)
	}

	return sender
}

// Sender recovers the signer address.
func (tx *Transaction) Sender() (types.Address, error) {
	if tx.sender != nil {
		return *tx.sender, nil
	}

	if len(tx.Signature) != signatureLength {
		return types.Address{}, ErrInvalidSig
	}

	pub, _, err := btcec.RecoverCompact(btcec.S256(), tx.Signature, tx.Hash())
	if err != nil {
		return types.Address{}, ErrInvalidSig
	}

	sender := types.PubKeyToAddress(pub.SerializeUncompressed())
	tx.sender = &sender

	return sender, nil
}

func (tx *Transaction) SetDecodedData(data Data) {
	tx.decodedData = data
}

func (tx *Transaction) GetDecodedData() Data {
	return tx.decodedData
}

// NewTx builds an unsigned transaction carrying data for the chain chainID.
func NewTx(chainID string, nonce uint64, data Data) (*Transaction, error) {
	enc, err := cdc.MarshalBinaryBare(data)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Nonce:       nonce,
		ChainID:     chainID,
		Type:        data.TxType(),
		Data:        enc,
		decodedData: data,
	}, nil
}

// PubKeyAddress returns the address controlled by the private key.
func PubKeyAddress(prv *btcec.PrivateKey) types.Address {
	return types.PubKeyToAddress(prv.PubKey().SerializeUncompressed())
}
