package app

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cosmos/iavl"
	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/types"
	"github.com/tendermint/go-amino"
)

const mainPrefix = 'd'

var cdc = amino.NewCodec()

type RApp interface {
	Export(state *types.AppState)
	Exists() bool
	Administrator() types.Address
	Deployer() types.Address
	Account() types.Address
	CreationTime() time.Time
	ClaimUnlockTime() time.Time
	RetrievalUnlockTime() time.Time
	LockPeriod() time.Duration
	RetrievalPeriod() time.Duration
	IsDistributionActive() bool
	LockedBalance() *big.Int
	GrantsCount() uint64
}

// App stores the parameters of the deployed ledger.
type App struct {
	model   *Model
	isDirty bool

	db atomic.Value

	bus *bus.Bus
	mx  sync.Mutex
}

func NewApp(stateBus *bus.Bus, db *iavl.ImmutableTree) *App {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &App{bus: stateBus, db: immutableTree}
}

func (a *App) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *App) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *App) Commit(db *iavl.MutableTree) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if !a.isDirty {
		return nil
	}

	a.isDirty = false

	data, err := cdc.MarshalBinaryBare(a.model.record())
	if err != nil {
		return fmt.Errorf("can't encode app model: %s", err)
	}

	path := []byte{mainPrefix}
	db.Set(path, data)

	return nil
}

// Deploy stores the parameters of a new ledger.
func (a *App) Deploy(administrator, deployer, account types.Address, creationTime time.Time, lockPeriod, retrievalPeriod time.Duration, distributionActive bool) {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.model = &Model{
		Administrator:       administrator,
		Deployer:            deployer,
		Account:             account,
		CreationTime:        creationTime.UTC(),
		ClaimUnlockTime:     creationTime.Add(lockPeriod).UTC(),
		RetrievalUnlockTime: creationTime.Add(retrievalPeriod).UTC(),
		LockPeriod:          lockPeriod,
		RetrievalPeriod:     retrievalPeriod,
		DistributionActive:  distributionActive,
		LockedBalance:       big.NewInt(0),
		markDirty:           a.markDirty,
	}
	a.isDirty = true
}

// Exists reports whether a ledger was deployed.
func (a *App) Exists() bool {
	return a.get() != nil
}

func (a *App) Administrator() types.Address {
	return a.mustGet().Administrator
}

func (a *App) Deployer() types.Address {
	return a.mustGet().Deployer
}

func (a *App) Account() types.Address {
	return a.mustGet().Account
}

func (a *App) CreationTime() time.Time {
	return a.mustGet().CreationTime
}

func (a *App) ClaimUnlockTime() time.Time {
	return a.mustGet().ClaimUnlockTime
}

func (a *App) RetrievalUnlockTime() time.Time {
	return a.mustGet().RetrievalUnlockTime
}

func (a *App) LockPeriod() time.Duration {
	return a.mustGet().LockPeriod
}

func (a *App) RetrievalPeriod() time.Duration {
	return a.mustGet().RetrievalPeriod
}

func (a *App) IsDistributionActive() bool {
	return a.mustGet().isDistributionActive()
}

func (a *App) SetDistributionActive(active bool) {
	a.mustGet().setDistributionActive(active)
}

func (a *App) LockedBalance() *big.Int {
	return a.mustGet().getLockedBalance()
}

func (a *App) AddLockedBalance(amount *big.Int) {
	a.mustGet().addLockedBalance(amount)
	a.bus.Checker().AddLocked(amount)
}

func (a *App) SubLockedBalance(amount *big.Int) {
	neg := big.NewInt(0).Neg(amount)
	a.mustGet().addLockedBalance(neg)
	a.bus.Checker().AddLocked(neg)
}

// GrantsCount is the number of stored grant records.
func (a *App) GrantsCount() uint64 {
	return a.mustGet().getGrantsCount()
}

func (a *App) AddGrants(count uint64) {
	a.mustGet().addGrants(count)
}

func (a *App) get() *Model {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.model != nil {
		return a.model
	}

	path := []byte{mainPrefix}
	_, enc := a.immutableTree().Get(path)
	if len(enc) == 0 {
		return nil
	}

	var r record
	if err := cdc.UnmarshalBinaryBare(enc, &r); err != nil {
		panic(fmt.Sprintf("failed to decode app model: %s", err))
	}

	model := fromRecord(r)
	model.markDirty = a.markDirty
	a.model = model

	return a.model
}

func (a *App) mustGet() *Model {
	model := a.get()
	if model == nil {
		panic("ledger is not deployed")
	}

	return model
}

func (a *App) markDirty() {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.isDirty = true
}

func (a *App) Export(state *types.AppState) {
	model := a.get()
	if model == nil {
		return
	}

	state.Ledger = types.Ledger{
		Deployer:           model.Deployer,
		Administrator:      model.Administrator,
		Account:            model.Account,
		CreationTime:       model.CreationTime,
		LockPeriod:         uint64(model.LockPeriod / time.Second),
		RetrievalPeriod:    uint64(model.RetrievalPeriod / time.Second),
		DistributionPaused: !model.isDistributionActive(),
	}
}
