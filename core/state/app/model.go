package app

import (
	"math/big"
	"sync"
	"time"

	"github.com/grantledger/grant-node/core/types"
)

// Model holds the ledger parameters. Everything but the distribution flag,
// the locked balance and the grants count is fixed at deployment.
type Model struct {
	Administrator       types.Address
	Deployer            types.Address
	Account             types.Address
	CreationTime        time.Time
	ClaimUnlockTime     time.Time
	RetrievalUnlockTime time.Time
	LockPeriod          time.Duration
	RetrievalPeriod     time.Duration
	DistributionActive  bool
	LockedBalance       *big.Int
	GrantsCount         uint64

	markDirty func()
	lock      sync.RWMutex
}

// record is the stored form of Model, times are unix nanoseconds
type record struct {
	Administrator       types.Address
	Deployer            types.Address
	Account             types.Address
	CreationTime        int64
	ClaimUnlockTime     int64
	RetrievalUnlockTime int64
	LockPeriod          int64
	RetrievalPeriod     int64
	DistributionActive  bool
	LockedBalance       []byte
	GrantsCount         uint64
}

func (model *Model) record() record {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return record{
		Administrator:       model.Administrator,
		Deployer:            model.Deployer,
		Account:             model.Account,
		CreationTime:        model.CreationTime.UnixNano(),
		ClaimUnlockTime:     model.ClaimUnlockTime.UnixNano(),
		RetrievalUnlockTime: model.RetrievalUnlockTime.UnixNano(),
		LockPeriod:          int64(model.LockPeriod),
		RetrievalPeriod:     int64(model.RetrievalPeriod),
		DistributionActive:  model.DistributionActive,
		LockedBalance:       model.LockedBalance.Bytes(),
		GrantsCount:         model.GrantsCount,
	}
}

func fromRecord(r record) *Model {
	return &Model{
		Administrator:       r.Administrator,
		Deployer:            r.Deployer,
		Account:             r.Account,
		CreationTime:        time.Unix(0, r.CreationTime).UTC(),
		ClaimUnlockTime:     time.Unix(0, r.ClaimUnlockTime).UTC(),
		RetrievalUnlockTime: time.Unix(0, r.RetrievalUnlockTime).UTC(),
		LockPeriod:          time.Duration(r.LockPeriod),
		RetrievalPeriod:     time.Duration(r.RetrievalPeriod),
		DistributionActive:  r.DistributionActive,
		LockedBalance:       big.NewInt(0).SetBytes(r.LockedBalance),
		GrantsCount:         r.GrantsCount,
	}
}

func (model *Model) setDistributionActive(active bool) {
	model.lock.Lock()
	model.DistributionActive = active
	model.lock.Unlock()

	model.markDirty()
}

func (model *Model) addLockedBalance(value *big.Int) {
	model.lock.Lock()
	model.LockedBalance = big.NewInt(0).Add(model.LockedBalance, value)
	model.lock.Unlock()

	model.markDirty()
}

func (model *Model) getLockedBalance() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.LockedBalance)
}

func (model *Model) isDistributionActive() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.DistributionActive
}

func (model *Model) addGrants(count uint64) {
	model.lock.Lock()
	model.GrantsCount += count
	model.lock.Unlock()

	model.markDirty()
}

func (model *Model) getGrantsCount() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.GrantsCount
}
