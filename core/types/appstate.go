package types

import (
	"math"
	"math/big"
	"time"

	"github.com/grantledger/grant-node/helpers"
	"github.com/pkg/errors"
)

// MaxPeriodSeconds is the longest lock or retrieval period, the largest whole
// number of seconds a time.Duration holds.
const MaxPeriodSeconds = uint64(math.MaxInt64 / int64(time.Second))

var ErrInvalidPeriods = errors.New("invalid lock or retrieval period")

// CheckPeriods validates the lock and retrieval periods of a ledger: whole
// non-negative seconds with the retrieval unlocking no earlier than the claim.
func CheckPeriods(lockPeriod, retrievalPeriod time.Duration) error {
	if lockPeriod < 0 || retrievalPeriod < 0 {
		return errors.Wrapf(ErrInvalidPeriods, "negative period: lock %s, retrieval %s", lockPeriod, retrievalPeriod)
	}
	if lockPeriod%time.Second != 0 || retrievalPeriod%time.Second != 0 {
		return errors.Wrapf(ErrInvalidPeriods, "periods must be whole seconds: lock %s, retrieval %s", lockPeriod, retrievalPeriod)
	}
	if retrievalPeriod < lockPeriod {
		return errors.Wrapf(ErrInvalidPeriods, "retrieval period %s is shorter than lock period %s", retrievalPeriod, lockPeriod)
	}

	return nil
}

// AppState is the genesis and export representation of the whole ledger.
type AppState struct {
	Token    Token     `json:"token"`
	Ledger   Ledger    `json:"ledger"`
	Balances []Balance `json:"balances,omitempty"`
	Grants   []Grant   `json:"grants,omitempty"`
	Nonces   []Nonce   `json:"nonces,omitempty"`
}

type Token struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Balance struct {
	Address Address `json:"address"`
	Value   string  `json:"value"`
}

type Nonce struct {
	Address Address `json:"address"`
	Nonce   uint64  `json:"nonce"`
}

// Ledger holds deployment parameters. Administrator and Account default to the
// deployer and to the derived ledger account when left empty. CreationTime
// defaults to the genesis time.
type Ledger struct {
	Deployer           Address   `json:"deployer"`
	Administrator      Address   `json:"administrator,omitempty"`
	Account            Address   `json:"account,omitempty"`
	CreationTime       time.Time `json:"creation_time,omitempty"`
	LockPeriod         uint64    `json:"lock_period"`
	RetrievalPeriod    uint64    `json:"retrieval_period"`
	DistributionPaused bool      `json:"distribution_paused,omitempty"`
}

// LockDuration returns the lock period, stored in seconds.
func (l Ledger) LockDuration() time.Duration {
	return time.Duration(l.LockPeriod) * time.Second
}

// RetrievalDuration returns the retrieval period, stored in seconds.
func (l Ledger) RetrievalDuration() time.Duration {
	return time.Duration(l.RetrievalPeriod) * time.Second
}

type Grant struct {
	Address      Address `json:"address"`
	Entitlement  string  `json:"entitlement"`
	Allocated    string  `json:"allocated"`
	ClaimedFully bool    `json:"claimed_fully,omitempty"`
}

// Verify checks that the state is self-consistent and can be imported.
func (s *AppState) Verify() error {
	if s.Token.Symbol == "" {
		return errors.New("token symbol is empty")
	}

	if s.Ledger.Deployer.IsZero() {
		return errors.New("ledger deployer is empty")
	}

	if s.Ledger.LockPeriod > MaxPeriodSeconds || s.Ledger.RetrievalPeriod > MaxPeriodSeconds {
		return errors.Wrapf(ErrInvalidPeriods, "periods over %d seconds: lock %d, retrieval %d", MaxPeriodSeconds, s.Ledger.LockPeriod, s.Ledger.RetrievalPeriod)
	}
	if err := CheckPeriods(s.Ledger.LockDuration(), s.Ledger.RetrievalDuration()); err != nil {
		return err
	}

	balances := map[Address]*big.Int{}
	for _, bal := range s.Balances {
		if !helpers.IsValidBigInt(bal.Value) {
			return errors.Errorf("wrong balance value %q for %s", bal.Value, bal.Address)
		}
		if _, exists := balances[bal.Address]; exists {
			return errors.Errorf("duplicated balance for %s", bal.Address)
		}
		balances[bal.Address] = helpers.StringToBigInt(bal.Value)
	}

	nonces := map[Address]struct{}{}
	for _, n := range s.Nonces {
		if _, exists := nonces[n.Address]; exists {
			return errors.Errorf("duplicated nonce for %s", n.Address)
		}
		nonces[n.Address] = struct{}{}
	}

	locked := big.NewInt(0)
	grants := map[Address]struct{}{}
	for _, grant := range s.Grants {
		if grant.Address.IsZero() {
			return errors.New("grant to zero address")
		}
		if _, exists := grants[grant.Address]; exists {
			return errors.Errorf("duplicated grant for %s", grant.Address)
		}
		grants[grant.Address] = struct{}{}

		if !helpers.IsValidBigInt(grant.Entitlement) || !helpers.IsValidBigInt(grant.Allocated) {
			return errors.Errorf("wrong grant values for %s", grant.Address)
		}

		entitlement := helpers.StringToBigInt(grant.Entitlement)
		allocated := helpers.StringToBigInt(grant.Allocated)
		if entitlement.Cmp(allocated) == 1 {
			return errors.Errorf("entitlement of %s exceeds its allocation", grant.Address)
		}
		if grant.ClaimedFully != (entitlement.Sign() == 0) {
			return errors.Errorf("claimed flag of %s does not match its entitlement", grant.Address)
		}
		if allocated.Sign() == 0 {
			return errors.Errorf("grant of %s has zero allocation", grant.Address)
		}

		locked.Add(locked, entitlement)
	}

	if locked.Sign() == 0 {
		return nil
	}

	account := s.Ledger.Account
	if account.IsZero() {
		account = CreateLedgerAddress(s.Ledger.Deployer, 0)
	}
	backing, ok := balances[account]
	if !ok {
		backing = big.NewInt(0)
	}
	if backing.Cmp(locked) == -1 {
		return errors.Errorf("ledger account %s holds %s, locked %s", account, backing, locked)
	}

	return nil
}
