package checker

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/grantledger/grant-node/core/state/bus"
)

// Checker accumulates per-block changes of the recipients' entitlements and of
// the ledger's locked balance, they must move together.
type Checker struct {
	entitlementDelta *big.Int
	lockedDelta      *big.Int

	lock sync.RWMutex
}

func NewChecker(bus *bus.Bus) *Checker {
	checker := &Checker{
		entitlementDelta: big.NewInt(0),
		lockedDelta:      big.NewInt(0),
	}
	bus.SetChecker(checker)

	return checker
}

func (c *Checker) AddEntitlement(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entitlementDelta.Add(c.entitlementDelta, value)
}

func (c *Checker) AddLocked(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.lockedDelta.Add(c.lockedDelta, value)
}

// Reset resets checker data
func (c *Checker) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entitlementDelta = big.NewInt(0)
	c.lockedDelta = big.NewInt(0)
}

func (c *Checker) Check() error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.entitlementDelta.Cmp(c.lockedDelta) != 0 {
		return fmt.Errorf("invariants error on locked balance: %s", big.NewInt(0).Sub(c.lockedDelta, c.entitlementDelta).String())
	}

	return nil
}
