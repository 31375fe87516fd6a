package grant

import (
	"math/big"
	"sync"
	"time"

	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/types"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// DeployParams are the immutable parameters of a ledger.
type DeployParams struct {
	Deployer        types.Address
	Administrator   types.Address // defaults to Deployer
	Account         types.Address // defaults to the address derived from Deployer
	LockPeriod      time.Duration
	RetrievalPeriod time.Duration
}

// Ledger holds the grants of one deployment. Every operation runs its checks
// before any mutation, the token transfer is the last fallible step.
type Ledger struct {
	state  *state.State
	token  bus.Token
	clock  Clock
	logger log.Logger

	lock sync.Mutex
}

// Deploy creates the ledger in st with creation time taken from clock.
func Deploy(st *state.State, params DeployParams, clock Clock, logger log.Logger) (*Ledger, error) {
	if st.App.Exists() {
		return nil, ErrAlreadyDeployed
	}
	if params.Deployer.IsZero() {
		return nil, errors.Wrap(ErrInvalidRecipient, "empty deployer")
	}
	if err := types.CheckPeriods(params.LockPeriod, params.RetrievalPeriod); err != nil {
		return nil, err
	}

	administrator := params.Administrator
	if administrator.IsZero() {
		administrator = params.Deployer
	}
	account := params.Account
	if account.IsZero() {
		account = types.CreateLedgerAddress(params.Deployer, 0)
	}

	st.App.Deploy(administrator, params.Deployer, account, clock.Now(), params.LockPeriod, params.RetrievalPeriod, true)

	ledger := newLedger(st, clock, logger)
	ledger.logger.Info("ledger deployed", "administrator", administrator, "account", account,
		"claim_unlock", st.App.ClaimUnlockTime(), "retrieval_unlock", st.App.RetrievalUnlockTime())

	return ledger, nil
}

// New opens the ledger already deployed in st.
func New(st *state.State, clock Clock, logger log.Logger) (*Ledger, error) {
	if !st.App.Exists() {
		return nil, ErrNotDeployed
	}

	return newLedger(st, clock, logger), nil
}

func newLedger(st *state.State, clock Clock, logger log.Logger) *Ledger {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Ledger{
		state:  st,
		token:  st.Token,
		clock:  clock,
		logger: logger.With("module", "grant"),
	}
}

func (l *Ledger) addEvent(event events.Event) {
	if l.state.Events != nil {
		l.state.Events.AddEvent(event)
	}
}

func (l *Ledger) available() *big.Int {
	backing := l.token.BalanceOf(l.state.App.Account())
	return backing.Sub(backing, l.state.App.LockedBalance())
}

func (l *Ledger) checkAdministrator(caller types.Address) error {
	if administrator := l.state.App.Administrator(); caller != administrator {
		return errors.Wrapf(ErrUnauthorized, "sender %s, administrator %s", caller, administrator)
	}

	return nil
}

func (l *Ledger) checkAllocate(caller, recipient types.Address, amount *big.Int) error {
	if err := l.checkAdministrator(caller); err != nil {
		return err
	}
	if recipient.IsZero() {
		return errors.Wrapf(ErrInvalidRecipient, "recipient %s", recipient)
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if l.state.Grants.IsClaimedFully(recipient) {
		return errors.Wrapf(ErrAlreadyClaimed, "recipient %s", recipient)
	}
	if entitlement := l.state.Grants.EntitlementOf(recipient); entitlement.Sign() != 0 {
		return errors.Wrapf(ErrAlreadyAllocated, "recipient %s has %s", recipient, entitlement)
	}
	if available := l.available(); available.Cmp(amount) == -1 {
		return errors.Wrapf(ErrInsufficientBacking, "available %s, needed %s", available, amount)
	}

	return nil
}

// CheckAllocate reports whether Allocate would succeed.
func (l *Ledger) CheckAllocate(caller, recipient types.Address, amount *big.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkAllocate(caller, recipient, amount)
}

// Allocate grants amount to recipient from the unallocated backing.
func (l *Ledger) Allocate(caller, recipient types.Address, amount *big.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.checkAllocate(caller, recipient, amount); err != nil {
		return err
	}

	if l.state.Grants.GetGrant(recipient) == nil {
		l.state.App.AddGrants(1)
	}
	l.state.Grants.Allocate(recipient, amount)
	l.state.App.AddLockedBalance(amount)
	l.addEvent(&events.AllocationAddedEvent{Recipient: recipient, Amount: amount.String()})

	l.logger.Info("allocation added", "recipient", recipient, "amount", amount)
	return nil
}

func (l *Ledger) checkClaim(caller types.Address, amount *big.Int) error {
	if !l.state.App.IsDistributionActive() {
		return ErrDistributionPaused
	}
	if now, unlock := l.clock.Now(), l.state.App.ClaimUnlockTime(); now.Before(unlock) {
		return errors.Wrapf(ErrNotYetUnlocked, "claims unlock at %s, now %s", unlock.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if l.state.Grants.IsClaimedFully(caller) {
		return errors.Wrapf(ErrAlreadyClaimed, "account %s", caller)
	}
	if l.state.Grants.GetGrant(caller) == nil {
		return errors.Wrapf(ErrNotAllocated, "account %s", caller)
	}
	if entitlement := l.state.Grants.EntitlementOf(caller); entitlement.Cmp(amount) == -1 {
		return errors.Wrapf(ErrInsufficientEntitlement, "account %s has %s, needed %s", caller, entitlement, amount)
	}

	return nil
}

// CheckClaim reports whether Claim would succeed, the token transfer excluded.
func (l *Ledger) CheckClaim(caller types.Address, amount *big.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkClaim(caller, amount)
}

// Claim pays amount of the caller's entitlement to the caller.
func (l *Ledger) Claim(caller types.Address, amount *big.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.claim(caller, amount)
}

func (l *Ledger) claim(caller types.Address, amount *big.Int) error {
	if err := l.checkClaim(caller, amount); err != nil {
		return err
	}

	if err := l.token.Transfer(l.state.App.Account(), caller, amount); err != nil {
		return err
	}

	l.state.Grants.SubEntitlement(caller, amount)
	l.state.App.SubLockedBalance(amount)
	l.addEvent(&events.ClaimedEvent{Account: caller, Amount: amount.String()})

	l.logger.Info("claimed", "account", caller, "amount", amount)
	return nil
}

// CheckClaimAll reports whether ClaimAll would succeed.
func (l *Ledger) CheckClaimAll(caller types.Address) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkClaim(caller, l.claimAllAmount(caller))
}

// ClaimAll claims the whole remaining entitlement and returns the amount paid.
func (l *Ledger) ClaimAll(caller types.Address) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	amount := l.claimAllAmount(caller)
	if err := l.claim(caller, amount); err != nil {
		return nil, err
	}

	return amount, nil
}

func (l *Ledger) claimAllAmount(caller types.Address) *big.Int {
	amount := l.state.Grants.EntitlementOf(caller)
	if amount.Sign() == 0 {
		// claimed or never allocated, the placeholder lets checkClaim name which
		return big.NewInt(1)
	}

	return amount
}

func (l *Ledger) checkPause(caller types.Address) error {
	if err := l.checkAdministrator(caller); err != nil {
		return err
	}
	if !l.state.App.IsDistributionActive() {
		return ErrAlreadyPaused
	}

	return nil
}

func (l *Ledger) CheckPause(caller types.Address) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkPause(caller)
}

// Pause stops claims until Resume.
func (l *Ledger) Pause(caller types.Address) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.checkPause(caller); err != nil {
		return err
	}

	l.state.App.SetDistributionActive(false)
	l.addEvent(&events.DistributionPausedEvent{Administrator: caller})

	l.logger.Info("distribution paused", "administrator", caller)
	return nil
}

func (l *Ledger) checkResume(caller types.Address) error {
	if err := l.checkAdministrator(caller); err != nil {
		return err
	}
	if l.state.App.IsDistributionActive() {
		return ErrAlreadyActive
	}

	return nil
}

func (l *Ledger) CheckResume(caller types.Address) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkResume(caller)
}

func (l *Ledger) Resume(caller types.Address) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.checkResume(caller); err != nil {
		return err
	}

	l.state.App.SetDistributionActive(true)
	l.addEvent(&events.DistributionResumedEvent{Administrator: caller})

	l.logger.Info("distribution resumed", "administrator", caller)
	return nil
}

func (l *Ledger) checkRetrieve(caller types.Address) (*big.Int, error) {
	if err := l.checkAdministrator(caller); err != nil {
		return nil, err
	}
	if now, unlock := l.clock.Now(), l.state.App.RetrievalUnlockTime(); now.Before(unlock) {
		return nil, errors.Wrapf(ErrNotYetUnlocked, "retrieval unlocks at %s, now %s", unlock.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	available := l.available()
	if available.Sign() <= 0 {
		return nil, errors.Wrapf(ErrNothingToRetrieve, "backing %s, locked %s", l.token.BalanceOf(l.state.App.Account()), l.state.App.LockedBalance())
	}

	return available, nil
}

// CheckRetrieveRemaining returns the amount RetrieveRemaining would pay.
func (l *Ledger) CheckRetrieveRemaining(caller types.Address) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.checkRetrieve(caller)
}

// RetrieveRemaining sends the unallocated backing to the administrator.
// Locked funds stay with the ledger.
func (l *Ledger) RetrieveRemaining(caller types.Address) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	amount, err := l.checkRetrieve(caller)
	if err != nil {
		return nil, err
	}

	if err := l.token.Transfer(l.state.App.Account(), caller, amount); err != nil {
		return nil, err
	}

	l.addEvent(&events.RemainingBalanceRetrievedEvent{Administrator: caller, Amount: amount.String()})

	l.logger.Info("remaining balance retrieved", "administrator", caller, "amount", amount)
	return amount, nil
}

func (l *Ledger) EntitlementOf(account types.Address) *big.Int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.state.Grants.EntitlementOf(account)
}

func (l *Ledger) AllocatedOf(account types.Address) *big.Int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.state.Grants.AllocatedOf(account)
}

func (l *Ledger) IsFullyClaimed(account types.Address) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.state.Grants.IsClaimedFully(account)
}

func (l *Ledger) LockedBalance() *big.Int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.state.App.LockedBalance()
}

func (l *Ledger) IsDistributionActive() bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.state.App.IsDistributionActive()
}

// Backing is the ledger account balance in the underlying token.
func (l *Ledger) Backing() *big.Int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.token.BalanceOf(l.state.App.Account())
}

// Available is the backing not covered by allocations.
func (l *Ledger) Available() *big.Int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.available()
}

// Now is the time the gates are evaluated against.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

func (l *Ledger) Administrator() types.Address {
	return l.state.App.Administrator()
}

func (l *Ledger) Account() types.Address {
	return l.state.App.Account()
}

func (l *Ledger) ClaimUnlockTime() time.Time {
	return l.state.App.ClaimUnlockTime()
}

func (l *Ledger) RetrievalUnlockTime() time.Time {
	return l.state.App.RetrievalUnlockTime()
}

func (l *Ledger) LockPeriod() time.Duration {
	return l.state.App.LockPeriod()
}

func (l *Ledger) RetrievalPeriod() time.Duration {
	return l.state.App.RetrievalPeriod()
}
