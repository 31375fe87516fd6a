package events

import (
	"math/big"

	"github.com/grantledger/grant-node/core/types"
)

// Event type names
const (
	TypeAllocationAddedEvent           = "grant/AllocationAddedEvent"
	TypeClaimedEvent                   = "grant/ClaimedEvent"
	TypeDistributionPausedEvent        = "grant/DistributionPausedEvent"
	TypeDistributionResumedEvent       = "grant/DistributionResumedEvent"
	TypeRemainingBalanceRetrievedEvent = "grant/RemainingBalanceRetrievedEvent"
)

type Event interface {
	Type() string
	AddressString() string
	address() types.Address
	convert(addressID uint32) compactEvent
}

type compactEvent interface {
	compile(address [20]byte) Event
	addressID() uint32
}

type Events []Event

type allocationAdded struct {
	AddressID uint32
	Amount    []byte
}

func (a *allocationAdded) compile(address [20]byte) Event {
	event := new(AllocationAddedEvent)
	event.Recipient = address
	event.Amount = big.NewInt(0).SetBytes(a.Amount).String()
	return event
}

func (a *allocationAdded) addressID() uint32 {
	return a.AddressID
}

type AllocationAddedEvent struct {
	Recipient types.Address `json:"recipient"`
	Amount    string        `json:"amount"`
}

func (ae *AllocationAddedEvent) Type() string {
	return TypeAllocationAddedEvent
}

func (ae *AllocationAddedEvent) AddressString() string {
	return ae.Recipient.String()
}

func (ae *AllocationAddedEvent) address() types.Address {
	return ae.Recipient
}

func (ae *AllocationAddedEvent) convert(addressID uint32) compactEvent {
	result := new(allocationAdded)
	result.AddressID = addressID
	bi, _ := big.NewInt(0).SetString(ae.Amount, 10)
	result.Amount = bi.Bytes()
	return result
}

type claimed struct {
	AddressID uint32
	Amount    []byte
}

func (c *claimed) compile(address [20]byte) Event {
	event := new(ClaimedEvent)
	event.Account = address
	event.Amount = big.NewInt(0).SetBytes(c.Amount).String()
	return event
}

func (c *claimed) addressID() uint32 {
	return c.AddressID
}

type ClaimedEvent struct {
	Account types.Address `json:"account"`
	Amount  string        `json:"amount"`
}

func (ce *ClaimedEvent) Type() string {
	return TypeClaimedEvent
}

func (ce *ClaimedEvent) AddressString() string {
	return ce.Account.String()
}

func (ce *ClaimedEvent) address() types.Address {
	return ce.Account
}

func (ce *ClaimedEvent) convert(addressID uint32) compactEvent {
	result := new(claimed)
	result.AddressID = addressID
	bi, _ := big.NewInt(0).SetString(ce.Amount, 10)
	result.Amount = bi.Bytes()
	return result
}

type distributionPaused struct {
	AddressID uint32
}

func (d *distributionPaused) compile(address [20]byte) Event {
	return &DistributionPausedEvent{Administrator: address}
}

func (d *distributionPaused) addressID() uint32 {
	return d.AddressID
}

// DistributionPausedEvent is emitted when the administrator halts claiming.
type DistributionPausedEvent struct {
	Administrator types.Address `json:"administrator"`
}

func (pe *DistributionPausedEvent) Type() string {
	return TypeDistributionPausedEvent
}

func (pe *DistributionPausedEvent) AddressString() string {
	return pe.Administrator.String()
}

func (pe *DistributionPausedEvent) address() types.Address {
	return pe.Administrator
}

func (pe *DistributionPausedEvent) convert(addressID uint32) compactEvent {
	return &distributionPaused{AddressID: addressID}
}

type distributionResumed struct {
	AddressID uint32
}

func (d *distributionResumed) compile(address [20]byte) Event {
	return &DistributionResumedEvent{Administrator: address}
}

func (d *distributionResumed) addressID() uint32 {
	return d.AddressID
}

type DistributionResumedEvent struct {
	Administrator types.Address `json:"administrator"`
}

func (re *DistributionResumedEvent) Type() string {
	return TypeDistributionResumedEvent
}

func (re *DistributionResumedEvent) AddressString() string {
	return re.Administrator.String()
}

func (re *DistributionResumedEvent) address() types.Address {
	return re.Administrator
}

func (re *DistributionResumedEvent) convert(addressID uint32) compactEvent {
	return &distributionResumed{AddressID: addressID}
}

type remainingBalanceRetrieved struct {
	AddressID uint32
	Amount    []byte
}

func (r *remainingBalanceRetrieved) compile(address [20]byte) Event {
	event := new(RemainingBalanceRetrievedEvent)
	event.Administrator = address
	event.Amount = big.NewInt(0).SetBytes(r.Amount).String()
	return event
}

func (r *remainingBalanceRetrieved) addressID() uint32 {
	return r.AddressID
}

type RemainingBalanceRetrievedEvent struct {
	Administrator types.Address `json:"administrator"`
	Amount        string        `json:"amount"`
}

func (re *RemainingBalanceRetrievedEvent) Type() string {
	return TypeRemainingBalanceRetrievedEvent
}

func (re *RemainingBalanceRetrievedEvent) AddressString() string {
	return re.Administrator.String()
}

func (re *RemainingBalanceRetrievedEvent) address() types.Address {
	return re.Administrator
}

func (re *RemainingBalanceRetrievedEvent) convert(addressID uint32) compactEvent {
	result := new(remainingBalanceRetrieved)
	result.AddressID = addressID
	bi, _ := big.NewInt(0).SetString(re.Amount, 10)
	result.Amount = bi.Bytes()
	return result
}
