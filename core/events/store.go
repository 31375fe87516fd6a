package events

import (
	"encoding/binary"
	"sync"

	"github.com/tendermint/go-amino"
	db "github.com/tendermint/tm-db"
)

// IEventsDB is an interface of Events
type IEventsDB interface {
	AddEvent(event Event)
	LoadEvents(height uint32) Events
	CommitEvents(height uint32) error
}

type eventsStore struct {
	cdc *amino.Codec
	sync.RWMutex
	db        db.DB
	pending   pendingEvents
	idAddress map[uint32][20]byte
	addressID map[[20]byte]uint32
}

type pendingEvents struct {
	sync.Mutex
	items Events
}

// NewEventsStore creates new events store in given DB
func NewEventsStore(db db.DB) IEventsDB {
	codec := amino.NewCodec()
	codec.RegisterInterface((*compactEvent)(nil), nil)
	codec.RegisterConcrete(&allocationAdded{}, "allocationAdded", nil)
	codec.RegisterConcrete(&claimed{}, "claimed", nil)
	codec.RegisterConcrete(&distributionPaused{}, "distributionPaused", nil)
	codec.RegisterConcrete(&distributionResumed{}, "distributionResumed", nil)
	codec.RegisterConcrete(&remainingBalanceRetrieved{}, "remainingBalanceRetrieved", nil)

	return &eventsStore{
		cdc:       codec,
		RWMutex:   sync.RWMutex{},
		db:        db,
		pending:   pendingEvents{},
		idAddress: make(map[uint32][20]byte),
		addressID: make(map[[20]byte]uint32),
	}
}

func (store *eventsStore) cacheAddress(id uint32, address [20]byte) {
	store.idAddress[id] = address
	store.addressID[address] = id
}

func (store *eventsStore) AddEvent(event Event) {
	store.pending.Lock()
	defer store.pending.Unlock()
	store.pending.items = append(store.pending.items, event)
}

func (store *eventsStore) LoadEvents(height uint32) Events {
	store.loadCache()

	bytes, err := store.db.Get(uint32ToBytes(height))
	if err != nil {
		panic(err)
	}
	if len(bytes) == 0 {
		return Events{}
	}

	var items []compactEvent
	if err := store.cdc.UnmarshalBinaryBare(bytes, &items); err != nil {
		panic(err)
	}

	store.RLock()
	defer store.RUnlock()

	resultEvents := make(Events, 0, len(items))
	for _, compactEvent := range items {
		event := compactEvent.compile(store.idAddress[compactEvent.addressID()])
		resultEvents = append(resultEvents, event)
	}

	return resultEvents
}

// CommitEvents flushes pending events under the given height. Heights without
// events are not stored.
func (store *eventsStore) CommitEvents(height uint32) error {
	store.loadCache()

	store.pending.Lock()
	defer store.pending.Unlock()
	if len(store.pending.items) == 0 {
		return nil
	}

	store.Lock()
	defer store.Unlock()

	var data []compactEvent
	for _, item := range store.pending.items {
		address, err := store.saveAddress(item.address())
		if err != nil {
			return err
		}
		data = append(data, item.convert(address))
	}

	bytes, err := store.cdc.MarshalBinaryBare(data)
	if err != nil {
		return err
	}

	if err := store.db.Set(uint32ToBytes(height), bytes); err != nil {
		return err
	}

	store.pending.items = nil
	return nil
}

func (store *eventsStore) loadCache() {
	store.Lock()
	if len(store.idAddress) == 0 {
		store.loadAddresses()
	}
	store.Unlock()
}

const addressPrefix = "address"
const addressesCountKey = "addresses"

func (store *eventsStore) saveAddress(address [20]byte) (uint32, error) {
	if id, ok := store.addressID[address]; ok {
		return id, nil
	}

	id := uint32(len(store.addressID))
	store.cacheAddress(id, address)

	if err := store.db.Set(append([]byte(addressPrefix), uint32ToBytes(id)...), address[:]); err != nil {
		return 0, err
	}
	if err := store.db.Set([]byte(addressesCountKey), uint32ToBytes(uint32(len(store.addressID)))); err != nil {
		return 0, err
	}
	return id, nil
}

func (store *eventsStore) loadAddresses() {
	count, err := store.db.Get([]byte(addressesCountKey))
	if err != nil {
		panic(err)
	}
	if len(count) > 0 {
		for id := uint32(0); id < binary.BigEndian.Uint32(count); id++ {
			address, _ := store.db.Get(append([]byte(addressPrefix), uint32ToBytes(id)...))
			var key [20]byte
			copy(key[:], address)
			store.cacheAddress(id, key)
		}
	}
}

func uint32ToBytes(height uint32) []byte {
	var h = make([]byte, 4)
	binary.BigEndian.PutUint32(h, height)
	return h
}
