package grants

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/types"
	"github.com/tendermint/go-amino"
)

const mainPrefix = byte('g')

var cdc = amino.NewCodec()

type RGrants interface {
	Export(state *types.AppState)
	GetGrant(address types.Address) *Model
	EntitlementOf(address types.Address) *big.Int
	AllocatedOf(address types.Address) *big.Int
	IsClaimedFully(address types.Address) bool
}

// Grants keeps the allocation records of all recipients.
type Grants struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewGrants(stateBus *bus.Bus, db *iavl.ImmutableTree) *Grants {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Grants{db: immutableTree, bus: stateBus, list: map[types.Address]*Model{}, dirty: map[types.Address]struct{}{}}
}

func (g *Grants) immutableTree() *iavl.ImmutableTree {
	db := g.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (g *Grants) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	g.db.Store(immutableTree)
}

func (g *Grants) Commit(db *iavl.MutableTree) error {
	dirty := g.getOrderedDirty()
	for _, address := range dirty {
		grant := g.getFromMap(address)
		g.lock.Lock()
		delete(g.dirty, address)
		g.lock.Unlock()

		data, err := cdc.MarshalBinaryBare(grant.record())
		if err != nil {
			return fmt.Errorf("can't encode object at %x: %v", address[:], err)
		}

		db.Set(pathOf(address), data)
	}

	return nil
}

func pathOf(address types.Address) []byte {
	return append([]byte{mainPrefix}, address[:]...)
}

func (g *Grants) getOrderedDirty() []types.Address {
	g.lock.RLock()
	keys := make([]types.Address, 0, len(g.dirty))
	for k := range g.dirty {
		keys = append(keys, k)
	}
	g.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

// GetGrant returns the record of the address or nil if it was never allocated.
func (g *Grants) GetGrant(address types.Address) *Model {
	return g.get(address)
}

func (g *Grants) EntitlementOf(address types.Address) *big.Int {
	grant := g.get(address)
	if grant == nil {
		return big.NewInt(0)
	}

	return grant.GetEntitlement()
}

func (g *Grants) AllocatedOf(address types.Address) *big.Int {
	grant := g.get(address)
	if grant == nil {
		return big.NewInt(0)
	}

	return grant.GetAllocated()
}

func (g *Grants) IsClaimedFully(address types.Address) bool {
	grant := g.get(address)
	return grant != nil && grant.IsClaimedFully()
}

// Allocate sets the entitlement of the address, the caller guarantees it has none.
func (g *Grants) Allocate(address types.Address, value *big.Int) {
	g.getOrNew(address).allocate(value)
	g.bus.Checker().AddEntitlement(value)
}

// SubEntitlement draws value from the entitlement, marking the grant claimed once it is empty.
func (g *Grants) SubEntitlement(address types.Address, value *big.Int) {
	g.getOrNew(address).subEntitlement(value)
	g.bus.Checker().AddEntitlement(big.NewInt(0).Neg(value))
}

// Import restores a grant record from genesis.
func (g *Grants) Import(grant types.Grant, entitlement, allocated *big.Int) {
	model := g.getOrNew(grant.Address)
	model.lock.Lock()
	model.Entitlement = big.NewInt(0).Set(entitlement)
	model.Allocated = big.NewInt(0).Set(allocated)
	model.ClaimedFully = grant.ClaimedFully
	model.lock.Unlock()
	model.markDirty(grant.Address)

	g.bus.Checker().AddEntitlement(entitlement)
}

func (g *Grants) get(address types.Address) *Model {
	if grant := g.getFromMap(address); grant != nil {
		return grant
	}

	_, enc := g.immutableTree().Get(pathOf(address))
	if len(enc) == 0 {
		return nil
	}

	var r record
	if err := cdc.UnmarshalBinaryBare(enc, &r); err != nil {
		panic(fmt.Sprintf("failed to decode grant at address %s: %s", address.String(), err))
	}

	grant := &Model{
		Entitlement:  big.NewInt(0).SetBytes(r.Entitlement),
		Allocated:    big.NewInt(0).SetBytes(r.Allocated),
		ClaimedFully: r.ClaimedFully,
		address:      address,
		markDirty:    g.markDirty,
	}
	g.setToMap(address, grant)

	return grant
}

func (g *Grants) getOrNew(address types.Address) *Model {
	grant := g.get(address)
	if grant == nil {
		grant = &Model{
			Entitlement: big.NewInt(0),
			Allocated:   big.NewInt(0),
			address:     address,
			markDirty:   g.markDirty,
		}
		g.setToMap(address, grant)
	}

	return grant
}

func (g *Grants) markDirty(address types.Address) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.dirty[address] = struct{}{}
}

func (g *Grants) getFromMap(address types.Address) *Model {
	g.lock.RLock()
	defer g.lock.RUnlock()

	return g.list[address]
}

func (g *Grants) setToMap(address types.Address, model *Model) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.list[address] = model
}

func (g *Grants) Export(state *types.AppState) {
	g.immutableTree().IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		grant := g.get(types.BytesToAddress(key[1:]))

		state.Grants = append(state.Grants, types.Grant{
			Address:      grant.Address(),
			Entitlement:  grant.GetEntitlement().String(),
			Allocated:    grant.GetAllocated().String(),
			ClaimedFully: grant.IsClaimedFully(),
		})

		return false
	})
}
