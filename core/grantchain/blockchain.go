package grantchain

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/grantledger/grant-node/cmd/utils"
	"github.com/grantledger/grant-node/config"
	"github.com/grantledger/grant-node/core/appdb"
	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/grant"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/statistics"
	"github.com/grantledger/grant-node/core/transaction"
	"github.com/grantledger/grant-node/genesis"
	"github.com/grantledger/grant-node/version"
	"github.com/pkg/errors"
	abciTypes "github.com/tendermint/tendermint/abci/types"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

// Blockchain is the ABCI application replicating one grant ledger.
type Blockchain struct {
	abciTypes.BaseApplication

	logger     tmlog.Logger
	rootLogger tmlog.Logger

	executor      *transaction.Executor
	statisticData *statistics.Data

	appDB        *appdb.AppDB
	eventsDB     events.IEventsDB
	stateDeliver *state.State
	stateCheck   *state.CheckState
	ledger       *grant.Ledger
	clock        *grant.BlockClock
	height       uint64 // current Blockchain height

	// currentMempool prevents sending multiple transactions from one address in one block
	currentMempool *sync.Map

	chainID    string
	haltHeight uint64
	cfg        *config.Config
	storages   *utils.Storage
	halted     chan struct{}
	stopped    bool

	lock sync.RWMutex
}

// NewGrantBlockchain creates the application over opened storages, should be only called once
func NewGrantBlockchain(storages *utils.Storage, cfg *config.Config, logger tmlog.Logger) *Blockchain {
	applicationDB := appdb.NewAppDB(storages.GetGrantHome(), cfg)

	var eventsDB events.IEventsDB
	if !cfg.ValidatorMode && storages.EventDB() != nil {
		eventsDB = events.NewEventsStore(storages.EventDB())
	}

	if logger == nil {
		logger = tmlog.NewNopLogger()
	}

	app := &Blockchain{
		logger:         logger.With("module", "chain"),
		rootLogger:     logger,
		executor:       transaction.NewExecutor(transaction.GetData),
		appDB:          applicationDB,
		eventsDB:       eventsDB,
		clock:          grant.NewBlockClock(time.Time{}),
		currentMempool: &sync.Map{},
		chainID:        applicationDB.GetChainID(),
		haltHeight:     uint64(cfg.HaltHeight),
		cfg:            cfg,
		storages:       storages,
		halted:         make(chan struct{}),
	}

	if applicationDB.GetLastHeight() != 0 {
		app.initState()
	}

	return app
}

func (blockchain *Blockchain) initState() {
	currentHeight := blockchain.appDB.GetLastHeight()

	stateDeliver, err := state.NewState(currentHeight,
		blockchain.storages.StateDB(),
		blockchain.eventsDB,
		blockchain.cfg.StateCacheSize,
		blockchain.cfg.KeepLastStates)
	if err != nil {
		panic(err)
	}

	atomic.StoreUint64(&blockchain.height, currentHeight)
	blockchain.stateDeliver = stateDeliver
	blockchain.stateCheck = state.NewCheckState(stateDeliver)
	blockchain.loadLedger()
}

func (blockchain *Blockchain) loadLedger() {
	ledger, err := grant.New(blockchain.stateDeliver, blockchain.clock, blockchain.rootLogger)
	if err != nil {
		if errors.Is(err, grant.ErrNotDeployed) {
			return
		}
		panic(err)
	}

	blockchain.ledger = ledger
}

// InitChain imports the ledger from genesis. The imported state is committed
// together with the first block.
func (blockchain *Blockchain) InitChain(req abciTypes.RequestInitChain) abciTypes.ResponseInitChain {
	blockchain.lock.Lock()
	defer blockchain.lock.Unlock()

	genesisState, err := genesis.DecodeAppState(req.AppStateBytes)
	if err != nil {
		panic(err)
	}

	initialHeight := uint64(req.InitialHeight)
	if initialHeight == 0 {
		initialHeight = 1
	}

	blockchain.appDB.SetStartHeight(initialHeight - 1)
	blockchain.appDB.SaveStartHeight()
	blockchain.appDB.SetChainID(req.ChainId)
	blockchain.chainID = req.ChainId
	blockchain.initState()
	blockchain.stateDeliver.Tree().SetInitialVersion(initialHeight)

	if err := blockchain.stateDeliver.Import(genesisState, req.Time); err != nil {
		panic(err)
	}
	if err := blockchain.stateDeliver.Check(); err != nil {
		panic(err)
	}

	blockchain.clock.Set(req.Time)
	blockchain.loadLedger()

	blockchain.logger.Info("ledger imported from genesis",
		"administrator", blockchain.ledger.Administrator(),
		"account", blockchain.ledger.Account(),
		"locked", blockchain.ledger.LockedBalance())

	return abciTypes.ResponseInitChain{}
}

// BeginBlock moves the ledger clock to the block time
func (blockchain *Blockchain) BeginBlock(req abciTypes.RequestBeginBlock) abciTypes.ResponseBeginBlock {
	blockchain.lock.Lock()
	defer blockchain.lock.Unlock()

	height := uint64(req.Header.Height)
	if blockchain.stateDeliver == nil {
		blockchain.initState()
	}

	blockchain.StatisticData().SetStartBlock(height, time.Now(), req.Header.Time)
	blockchain.clock.Set(req.Header.Time)
	blockchain.appDB.AddBlocksTime(req.Header.Time)

	if blockchain.isApplicationHalted(height) {
		blockchain.logger.Error("application halted", "height", height)
		blockchain.stop()
	}

	return abciTypes.ResponseBeginBlock{}
}

// EndBlock records the height of the executed block
func (blockchain *Blockchain) EndBlock(req abciTypes.RequestEndBlock) abciTypes.ResponseEndBlock {
	height := uint64(req.Height)
	atomic.StoreUint64(&blockchain.height, height)

	blockchain.StatisticData().SetEndBlockDuration(time.Now(), height)

	return abciTypes.ResponseEndBlock{}
}

// Info return application info. Used for synchronization between Tendermint and the ledger
func (blockchain *Blockchain) Info(_ abciTypes.RequestInfo) (resInfo abciTypes.ResponseInfo) {
	hash := blockchain.appDB.GetLastBlockHash()
	height := int64(blockchain.appDB.GetLastHeight())
	return abciTypes.ResponseInfo{
		Version:          version.Version,
		AppVersion:       version.AppVer,
		LastBlockHeight:  height,
		LastBlockAppHash: hash,
	}
}

// DeliverTx deliver a tx for full processing
func (blockchain *Blockchain) DeliverTx(req abciTypes.RequestDeliverTx) abciTypes.ResponseDeliverTx {
	blockchain.lock.Lock()
	defer blockchain.lock.Unlock()

	context := &transaction.Context{ChainID: blockchain.chainID, State: blockchain.stateDeliver, Ledger: blockchain.ledger}
	response := blockchain.executor.RunTx(context, req.Tx, &sync.Map{}, blockchain.cfg.ValidatorMode)
	blockchain.StatisticData().AddTx(transaction.RawTxType(req.Tx), response.Code)

	return abciTypes.ResponseDeliverTx{
		Code: response.Code,
		Data: response.Data,
		Log:  response.Log,
		Info: response.Info,
		Events: []abciTypes.Event{
			{
				Type:       "tags",
				Attributes: response.Tags,
			},
		},
	}
}

// CheckTx validates a tx for the mempool
func (blockchain *Blockchain) CheckTx(req abciTypes.RequestCheckTx) abciTypes.ResponseCheckTx {
	blockchain.lock.RLock()
	defer blockchain.lock.RUnlock()

	context := &transaction.Context{ChainID: blockchain.chainID, State: blockchain.stateDeliver, Ledger: blockchain.ledger, IsCheck: true}
	response := blockchain.executor.RunTx(context, req.Tx, blockchain.currentMempool, true)

	return abciTypes.ResponseCheckTx{
		Code: response.Code,
		Data: response.Data,
		Log:  response.Log,
		Info: response.Info,
	}
}

// Commit the state and return the application Merkle root hash
func (blockchain *Blockchain) Commit() abciTypes.ResponseCommit {
	blockchain.lock.Lock()
	defer blockchain.lock.Unlock()

	height := blockchain.Height()

	if err := blockchain.stateDeliver.Check(); err != nil {
		panic(errors.Wrapf(err, "height %d", height))
	}

	// Flush events db
	if blockchain.eventsDB != nil {
		if err := blockchain.eventsDB.CommitEvents(uint32(height)); err != nil {
			panic(err)
		}
	}

	hash, err := blockchain.stateDeliver.Commit()
	if err != nil {
		panic(err)
	}

	// Persist application hash and height
	blockchain.appDB.SetLastBlockHash(hash)
	blockchain.appDB.SetLastHeight(height)
	blockchain.appDB.SaveBlocksTime()

	// Clear mempool
	blockchain.currentMempool = &sync.Map{}

	if blockchain.ledger != nil {
		blockchain.StatisticData().SetLedger(blockchain.ledger.LockedBalance(), blockchain.ledger.Backing(), int(blockchain.stateDeliver.App.GrantsCount()))
	}

	return abciTypes.ResponseCommit{
		Data: hash,
	}
}

func (blockchain *Blockchain) isApplicationHalted(height uint64) bool {
	return blockchain.haltHeight > 0 && height >= blockchain.haltHeight
}

func (blockchain *Blockchain) stop() {
	if blockchain.stopped {
		return
	}
	blockchain.stopped = true
	close(blockchain.halted)
}

// Halted is closed once the configured halt height is reached
func (blockchain *Blockchain) Halted() <-chan struct{} {
	return blockchain.halted
}

// CurrentState returns immutable state of the ledger
func (blockchain *Blockchain) CurrentState() *state.CheckState {
	blockchain.lock.RLock()
	defer blockchain.lock.RUnlock()

	return blockchain.stateCheck
}

// GetStateForHeight returns immutable state of the ledger for given height, 0 means current
func (blockchain *Blockchain) GetStateForHeight(height uint64) (*state.CheckState, error) {
	if height == 0 {
		if cState := blockchain.CurrentState(); cState != nil {
			return cState, nil
		}
		return nil, errors.New("state is not initialized")
	}

	blockchain.lock.RLock()
	defer blockchain.lock.RUnlock()

	if blockchain.stateDeliver == nil {
		return nil, errors.New("state is not initialized")
	}

	immutableTree, err := blockchain.stateDeliver.Tree().GetImmutableAtHeight(int64(height))
	if err != nil {
		return nil, errors.Wrapf(err, "state at height %d", height)
	}

	return state.NewCheckStateForTree(immutableTree), nil
}

// AvailableVersions returns all available versions in ascending order
func (blockchain *Blockchain) AvailableVersions() []int {
	blockchain.lock.RLock()
	defer blockchain.lock.RUnlock()

	if blockchain.stateDeliver == nil {
		return nil
	}
	return blockchain.stateDeliver.Tree().AvailableVersions()
}

// Height returns current height of the chain
func (blockchain *Blockchain) Height() uint64 {
	return atomic.LoadUint64(&blockchain.height)
}

// InitialHeight returns the height preceding the first block
func (blockchain *Blockchain) InitialHeight() uint64 {
	return blockchain.appDB.GetStartHeight()
}

// Ledger returns the deliver-side ledger, nil before genesis is imported
func (blockchain *Blockchain) Ledger() *grant.Ledger {
	blockchain.lock.RLock()
	defer blockchain.lock.RUnlock()

	return blockchain.ledger
}

// GetEventsDB returns current EventsDB
func (blockchain *Blockchain) GetEventsDB() events.IEventsDB {
	return blockchain.eventsDB
}

// SetStatisticData used for collection statistics about blockchain operations
func (blockchain *Blockchain) SetStatisticData(statisticData *statistics.Data) *statistics.Data {
	blockchain.statisticData = statisticData
	return blockchain.statisticData
}

// StatisticData used for collection statistics about blockchain operations
func (blockchain *Blockchain) StatisticData() *statistics.Data {
	return blockchain.statisticData
}

// Close closes db connections
func (blockchain *Blockchain) Close() error {
	if err := blockchain.appDB.Close(); err != nil {
		return err
	}
	return blockchain.storages.Close()
}
