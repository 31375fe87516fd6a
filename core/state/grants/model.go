package grants

import (
	"math/big"
	"sync"

	"github.com/grantledger/grant-node/core/types"
)

// Model is the grant record of one recipient. Records are never removed.
type Model struct {
	Entitlement  *big.Int
	Allocated    *big.Int
	ClaimedFully bool

	address   types.Address
	markDirty func(types.Address)
	lock      sync.RWMutex
}

// record is the stored form of Model
type record struct {
	Entitlement  []byte
	Allocated    []byte
	ClaimedFully bool
}

func (m *Model) Address() types.Address {
	return m.address
}

func (m *Model) GetEntitlement() *big.Int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return big.NewInt(0).Set(m.Entitlement)
}

func (m *Model) GetAllocated() *big.Int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return big.NewInt(0).Set(m.Allocated)
}

func (m *Model) IsClaimedFully() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.ClaimedFully
}

func (m *Model) allocate(value *big.Int) {
	m.lock.Lock()
	m.Entitlement = big.NewInt(0).Set(value)
	m.Allocated = big.NewInt(0).Set(value)
	m.lock.Unlock()

	m.markDirty(m.address)
}

func (m *Model) subEntitlement(value *big.Int) {
	m.lock.Lock()
	m.Entitlement = big.NewInt(0).Sub(m.Entitlement, value)
	m.ClaimedFully = m.Entitlement.Sign() == 0
	m.lock.Unlock()

	m.markDirty(m.address)
}

func (m *Model) record() record {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return record{Entitlement: m.Entitlement.Bytes(), Allocated: m.Allocated.Bytes(), ClaimedFully: m.ClaimedFully}
}
