package code

import (
	"strconv"
)

// Codes for transaction checks and delivers responses
const (
	// general
	OK                           uint32 = 0
	WrongNonce                   uint32 = 101
	TxTooLarge                   uint32 = 102
	DecodeError                  uint32 = 103
	UnknownTxType                uint32 = 104
	InvalidSignature             uint32 = 105
	InvalidValue                 uint32 = 106
	TxFromSenderAlreadyInMempool uint32 = 107
	LedgerNotDeployed            uint32 = 108
	WrongChainID                 uint32 = 109

	// allocation
	Unauthorized            uint32 = 201
	InvalidRecipient        uint32 = 202
	ZeroAmount              uint32 = 203
	AlreadyAllocated        uint32 = 204
	AlreadyClaimed          uint32 = 205
	InsufficientBacking     uint32 = 206
	InsufficientEntitlement uint32 = 207
	NotAllocated            uint32 = 208

	// distribution
	DistributionPaused uint32 = 301
	NotYetUnlocked     uint32 = 302
	AlreadyPaused      uint32 = 303
	AlreadyActive      uint32 = 304
	NothingToRetrieve  uint32 = 305
	Unsupported        uint32 = 306

	// underlying token
	InsufficientFunds uint32 = 401
	AccountNotExists  uint32 = 402
	InvalidAccount    uint32 = 403

	// queries
	UnknownQuery      uint32 = 501
	InvalidAddress    uint32 = 502
	StateNotAvailable uint32 = 503

	// internal
	Unknown uint32 = 999
)

type wrongNonce struct {
	Code          string `json:"code,omitempty"`
	ExpectedNonce string `json:"expected_nonce,omitempty"`
	GotNonce      string `json:"got_nonce,omitempty"`
}

func NewWrongNonce(expectedNonce string, gotNonce string) *wrongNonce {
	return &wrongNonce{Code: strconv.Itoa(int(WrongNonce)), ExpectedNonce: expectedNonce, GotNonce: gotNonce}
}

type wrongChainID struct {
	Code           string `json:"code,omitempty"`
	CurrentChainID string `json:"current_chain_id,omitempty"`
	GotChainID     string `json:"got_chain_id,omitempty"`
}

func NewWrongChainID(currentChainID string, gotChainID string) *wrongChainID {
	return &wrongChainID{Code: strconv.Itoa(int(WrongChainID)), CurrentChainID: currentChainID, GotChainID: gotChainID}
}

type txTooLarge struct {
	Code        string `json:"code,omitempty"`
	MaxTxLength string `json:"max_tx_length,omitempty"`
	RawTxLength string `json:"raw_tx_length,omitempty"`
}

func NewTxTooLarge(maxTxLength string, rawTxLength string) *txTooLarge {
	return &txTooLarge{Code: strconv.Itoa(int(TxTooLarge)), MaxTxLength: maxTxLength, RawTxLength: rawTxLength}
}

type decodeError struct {
	Code string `json:"code,omitempty"`
}

func NewDecodeError() *decodeError {
	return &decodeError{Code: strconv.Itoa(int(DecodeError))}
}

type unknownTxType struct {
	Code   string `json:"code,omitempty"`
	TxType string `json:"tx_type,omitempty"`
}

func NewUnknownTxType(txType string) *unknownTxType {
	return &unknownTxType{Code: strconv.Itoa(int(UnknownTxType)), TxType: txType}
}

type invalidSignature struct {
	Code string `json:"code,omitempty"`
}

func NewInvalidSignature() *invalidSignature {
	return &invalidSignature{Code: strconv.Itoa(int(InvalidSignature))}
}

type invalidValue struct {
	Code  string `json:"code,omitempty"`
	Value string `json:"value,omitempty"`
}

func NewInvalidValue(value string) *invalidValue {
	return &invalidValue{Code: strconv.Itoa(int(InvalidValue)), Value: value}
}

type txFromSenderAlreadyInMempool struct {
	Code   string `json:"code,omitempty"`
	Sender string `json:"sender,omitempty"`
}

func NewTxFromSenderAlreadyInMempool(sender string) *txFromSenderAlreadyInMempool {
	return &txFromSenderAlreadyInMempool{Code: strconv.Itoa(int(TxFromSenderAlreadyInMempool)), Sender: sender}
}

type ledgerNotDeployed struct {
	Code string `json:"code,omitempty"`
}

func NewLedgerNotDeployed() *ledgerNotDeployed {
	return &ledgerNotDeployed{Code: strconv.Itoa(int(LedgerNotDeployed))}
}

type unauthorized struct {
	Code          string `json:"code,omitempty"`
	Administrator string `json:"administrator,omitempty"`
	Sender        string `json:"sender,omitempty"`
}

func NewUnauthorized(administrator string, sender string) *unauthorized {
	return &unauthorized{Code: strconv.Itoa(int(Unauthorized)), Administrator: administrator, Sender: sender}
}

type invalidRecipient struct {
	Code      string `json:"code,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

func NewInvalidRecipient(recipient string) *invalidRecipient {
	return &invalidRecipient{Code: strconv.Itoa(int(InvalidRecipient)), Recipient: recipient}
}

type zeroAmount struct {
	Code string `json:"code,omitempty"`
}

func NewZeroAmount() *zeroAmount {
	return &zeroAmount{Code: strconv.Itoa(int(ZeroAmount))}
}

type alreadyAllocated struct {
	Code        string `json:"code,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Entitlement string `json:"entitlement,omitempty"`
}

func NewAlreadyAllocated(recipient string, entitlement string) *alreadyAllocated {
	return &alreadyAllocated{Code: strconv.Itoa(int(AlreadyAllocated)), Recipient: recipient, Entitlement: entitlement}
}

type alreadyClaimed struct {
	Code    string `json:"code,omitempty"`
	Account string `json:"account,omitempty"`
}

func NewAlreadyClaimed(account string) *alreadyClaimed {
	return &alreadyClaimed{Code: strconv.Itoa(int(AlreadyClaimed)), Account: account}
}

type insufficientBacking struct {
	Code         string `json:"code,omitempty"`
	Available    string `json:"available,omitempty"`
	NeededAmount string `json:"needed_amount,omitempty"`
}

func NewInsufficientBacking(available string, neededAmount string) *insufficientBacking {
	return &insufficientBacking{Code: strconv.Itoa(int(InsufficientBacking)), Available: available, NeededAmount: neededAmount}
}

type insufficientEntitlement struct {
	Code         string `json:"code,omitempty"`
	Account      string `json:"account,omitempty"`
	Entitlement  string `json:"entitlement,omitempty"`
	NeededAmount string `json:"needed_amount,omitempty"`
}

func NewInsufficientEntitlement(account string, entitlement string, neededAmount string) *insufficientEntitlement {
	return &insufficientEntitlement{Code: strconv.Itoa(int(InsufficientEntitlement)), Account: account, Entitlement: entitlement, NeededAmount: neededAmount}
}

type notAllocated struct {
	Code    string `json:"code,omitempty"`
	Account string `json:"account,omitempty"`
}

func NewNotAllocated(account string) *notAllocated {
	return &notAllocated{Code: strconv.Itoa(int(NotAllocated)), Account: account}
}

type distributionPaused struct {
	Code string `json:"code,omitempty"`
}

func NewDistributionPaused() *distributionPaused {
	return &distributionPaused{Code: strconv.Itoa(int(DistributionPaused))}
}

type notYetUnlocked struct {
	Code       string `json:"code,omitempty"`
	UnlockTime string `json:"unlock_time,omitempty"`
	Now        string `json:"now,omitempty"`
}

func NewNotYetUnlocked(unlockTime string, now string) *notYetUnlocked {
	return &notYetUnlocked{Code: strconv.Itoa(int(NotYetUnlocked)), UnlockTime: unlockTime, Now: now}
}

type alreadyPaused struct {
	Code string `json:"code,omitempty"`
}

func NewAlreadyPaused() *alreadyPaused {
	return &alreadyPaused{Code: strconv.Itoa(int(AlreadyPaused))}
}

type alreadyActive struct {
	Code string `json:"code,omitempty"`
}

func NewAlreadyActive() *alreadyActive {
	return &alreadyActive{Code: strconv.Itoa(int(AlreadyActive))}
}

type nothingToRetrieve struct {
	Code          string `json:"code,omitempty"`
	Backing       string `json:"backing,omitempty"`
	LockedBalance string `json:"locked_balance,omitempty"`
}

func NewNothingToRetrieve(backing string, lockedBalance string) *nothingToRetrieve {
	return &nothingToRetrieve{Code: strconv.Itoa(int(NothingToRetrieve)), Backing: backing, LockedBalance: lockedBalance}
}

type unsupported struct {
	Code      string `json:"code,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func NewUnsupported(operation string) *unsupported {
	return &unsupported{Code: strconv.Itoa(int(Unsupported)), Operation: operation}
}

type insufficientFunds struct {
	Code         string `json:"code,omitempty"`
	Sender       string `json:"sender,omitempty"`
	NeededAmount string `json:"needed_amount,omitempty"`
}

func NewInsufficientFunds(sender string, neededAmount string) *insufficientFunds {
	return &insufficientFunds{Code: strconv.Itoa(int(InsufficientFunds)), Sender: sender, NeededAmount: neededAmount}
}

type accountNotExists struct {
	Code    string `json:"code,omitempty"`
	Account string `json:"account,omitempty"`
}

func NewAccountNotExists(account string) *accountNotExists {
	return &accountNotExists{Code: strconv.Itoa(int(AccountNotExists)), Account: account}
}

type invalidAccount struct {
	Code    string `json:"code,omitempty"`
	Account string `json:"account,omitempty"`
}

func NewInvalidAccount(account string) *invalidAccount {
	return &invalidAccount{Code: strconv.Itoa(int(InvalidAccount)), Account: account}
}

type unknown struct {
	Code string `json:"code,omitempty"`
}

func NewUnknown() *unknown {
	return &unknown{Code: strconv.Itoa(int(Unknown))}
}
