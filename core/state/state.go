package state

import (
	"math/big"
	"sync"
	"time"

	"github.com/cosmos/iavl"
	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/state/app"
	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/state/checker"
	"github.com/grantledger/grant-node/core/state/grants"
	"github.com/grantledger/grant-node/core/state/token"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/helpers"
	"github.com/grantledger/grant-node/tree"
	"github.com/pkg/errors"
	db "github.com/tendermint/tm-db"
)

// CheckState is a read-only view of a State.
type CheckState struct {
	state *State
}

func NewCheckState(state *State) *CheckState {
	return &CheckState{state: state}
}

func (cs *CheckState) App() app.RApp {
	return cs.state.App
}

func (cs *CheckState) Grants() grants.RGrants {
	return cs.state.Grants
}

func (cs *CheckState) Token() token.RToken {
	return cs.state.Token
}

func (cs *CheckState) Export() types.AppState {
	return cs.state.Export()
}

type State struct {
	App     *app.App
	Grants  *grants.Grants
	Token   *token.Token
	Checker *checker.Checker
	Events  events.IEventsDB

	db   db.DB
	tree tree.MTree
	bus  *bus.Bus
	lock sync.RWMutex
}

// NewState opens the state stored in db at the given height, 0 means latest.
func NewState(height uint64, db db.DB, events events.IEventsDB, cacheSize int, keepLastStates int64) (*State, error) {
	iavlTree, err := tree.NewMutableTree(height, db, cacheSize, keepLastStates)
	if err != nil {
		return nil, err
	}

	state := newStateForTree(iavlTree.GetLastImmutable(), events, db)
	state.tree = iavlTree

	return state, nil
}

// NewCheckStateAtHeight opens a read-only view of the state committed at height.
func NewCheckStateAtHeight(height uint64, db db.DB) (*CheckState, error) {
	iavlTree, err := tree.NewMutableTree(0, db, 1024, 0)
	if err != nil {
		return nil, err
	}

	immutableTree, err := iavlTree.GetImmutableAtHeight(int64(height))
	if err != nil {
		return nil, err
	}

	return NewCheckStateForTree(immutableTree), nil
}

// NewCheckStateForTree wraps an already loaded immutable tree.
func NewCheckStateForTree(immutableTree *iavl.ImmutableTree) *CheckState {
	return NewCheckState(newStateForTree(immutableTree, nil, nil))
}

func newStateForTree(immutableTree *iavl.ImmutableTree, events events.IEventsDB, db db.DB) *State {
	stateBus := bus.NewBus()

	stateChecker := checker.NewChecker(stateBus)
	appState := app.NewApp(stateBus, immutableTree)
	grantsState := grants.NewGrants(stateBus, immutableTree)
	tokenState := token.NewToken(stateBus, immutableTree)

	return &State{
		App:     appState,
		Grants:  grantsState,
		Token:   tokenState,
		Checker: stateChecker,
		Events:  events,

		db:  db,
		bus: stateBus,
	}
}

func (s *State) Tree() tree.MTree {
	return s.tree
}

// Check verifies the block-level invariants before commit.
func (s *State) Check() error {
	if err := s.Checker.Check(); err != nil {
		return err
	}

	if !s.App.Exists() {
		return nil
	}

	locked := s.App.LockedBalance()
	if locked.Sign() == -1 {
		return errors.Errorf("invariants error: negative locked balance %s", locked)
	}

	backing := s.Token.BalanceOf(s.App.Account())
	if backing.Cmp(locked) == -1 {
		return errors.Errorf("invariants error: locked balance %s exceeds backing %s", locked, backing)
	}

	return nil
}

func (s *State) Commit() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Checker.Reset()

	hash, _, err := s.tree.Commit(s.App, s.Grants, s.Token)
	if err != nil {
		return hash, err
	}

	return hash, nil
}

// Import loads genesis. Empty administrator, account and creation time default
// to the deployer, the derived ledger account and genesisTime.
func (s *State) Import(state types.AppState, genesisTime time.Time) error {
	if err := state.Verify(); err != nil {
		return errors.Wrap(err, "invalid genesis")
	}

	s.Token.SetInfo(state.Token.Symbol, state.Token.Decimals)
	for _, balance := range state.Balances {
		s.Token.Mint(balance.Address, helpers.StringToBigInt(balance.Value))
	}
	for _, nonce := range state.Nonces {
		s.Token.SetNonce(nonce.Address, nonce.Nonce)
	}

	ledger := state.Ledger
	administrator := ledger.Administrator
	if administrator.IsZero() {
		administrator = ledger.Deployer
	}
	account := ledger.Account
	if account.IsZero() {
		account = types.CreateLedgerAddress(ledger.Deployer, 0)
	}
	creationTime := ledger.CreationTime
	if creationTime.IsZero() {
		creationTime = genesisTime
	}

	s.App.Deploy(administrator, ledger.Deployer, account, creationTime, ledger.LockDuration(), ledger.RetrievalDuration(), !ledger.DistributionPaused)

	locked := big.NewInt(0)
	for _, grant := range state.Grants {
		entitlement := helpers.StringToBigInt(grant.Entitlement)
		s.Grants.Import(grant, entitlement, helpers.StringToBigInt(grant.Allocated))
		locked.Add(locked, entitlement)
	}
	s.App.AddLockedBalance(locked)
	s.App.AddGrants(uint64(len(state.Grants)))

	return nil
}

func (s *State) Export() types.AppState {
	appState := new(types.AppState)
	s.App.Export(appState)
	s.Token.Export(appState)
	s.Grants.Export(appState)

	return *appState
}
