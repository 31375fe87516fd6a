package events

import (
	"testing"

	"github.com/grantledger/grant-node/core/types"
	db "github.com/tendermint/tm-db"
)

func TestIEventsDB(t *testing.T) {
	t.Parallel()
	store := NewEventsStore(db.NewMemDB())

	{
		event := &AllocationAddedEvent{
			Recipient: types.HexToAddress("0x04bea23efb744dc93b4fda4c20bf4a21c6e195f1"),
			Amount:    "10000000000000000000000",
		}
		store.AddEvent(event)
	}
	{
		event := &DistributionPausedEvent{
			Administrator: types.HexToAddress("0x18467bbb64a8edf890201d526c35957d82be3d95"),
		}
		store.AddEvent(event)
	}
	err := store.CommitEvents(12)
	if err != nil {
		t.Fatal(err)
	}

	{
		event := &ClaimedEvent{
			Account: types.HexToAddress("0x04bea23efb744dc93b4fda4c20bf4a21c6e195f1"),
			Amount:  "5000000000000000000000",
		}
		store.AddEvent(event)
	}
	{
		event := &RemainingBalanceRetrievedEvent{
			Administrator: types.HexToAddress("0x18467bbb64a8edf890201d526c35957d82be3d95"),
			Amount:        "90000000000000000000000",
		}
		store.AddEvent(event)
	}
	err = store.CommitEvents(14)
	if err != nil {
		t.Fatal(err)
	}

	loadEvents := store.LoadEvents(12)

	if len(loadEvents) != 2 {
		t.Fatalf("count of events not equal 2, got %d", len(loadEvents))
	}

	if loadEvents[0].Type() != TypeAllocationAddedEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[0].(*AllocationAddedEvent).Amount != "10000000000000000000000" {
		t.Fatal("invalid Amount")
	}
	if loadEvents[0].AddressString() != "0x04bea23efb744dc93b4fda4c20bf4a21c6e195f1" {
		t.Fatal("invalid Address")
	}

	if loadEvents[1].Type() != TypeDistributionPausedEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[1].AddressString() != "0x18467bbb64a8edf890201d526c35957d82be3d95" {
		t.Fatal("invalid Address")
	}

	loadEvents = store.LoadEvents(14)

	if len(loadEvents) != 2 {
		t.Fatalf("count of events not equal 2, got %d", len(loadEvents))
	}

	if loadEvents[0].Type() != TypeClaimedEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[0].(*ClaimedEvent).Amount != "5000000000000000000000" {
		t.Fatal("invalid Amount")
	}

	if loadEvents[1].Type() != TypeRemainingBalanceRetrievedEvent {
		t.Fatal("invalid event type")
	}
	if loadEvents[1].(*RemainingBalanceRetrievedEvent).Amount != "90000000000000000000000" {
		t.Fatal("invalid Amount")
	}

	if len(store.LoadEvents(13)) != 0 {
		t.Fatal("events loaded for an empty height")
	}
}

func TestIEventsDBReopen(t *testing.T) {
	t.Parallel()
	memDB := db.NewMemDB()
	store := NewEventsStore(memDB)

	store.AddEvent(&ClaimedEvent{Account: types.HexToAddress("0x01"), Amount: "1"})
	store.AddEvent(&ClaimedEvent{Account: types.HexToAddress("0x02"), Amount: "2"})
	if err := store.CommitEvents(1); err != nil {
		t.Fatal(err)
	}

	reopened := NewEventsStore(memDB)
	reopened.AddEvent(&DistributionResumedEvent{Administrator: types.HexToAddress("0x03")})
	if err := reopened.CommitEvents(2); err != nil {
		t.Fatal(err)
	}

	first := reopened.LoadEvents(1)
	if len(first) != 2 || first[1].AddressString() != types.HexToAddress("0x02").String() {
		t.Fatalf("unexpected events %v", first)
	}

	second := reopened.LoadEvents(2)
	if len(second) != 1 || second[0].AddressString() != types.HexToAddress("0x03").String() {
		t.Fatalf("unexpected events %v", second)
	}
}
