package token

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
	"github.com/pkg/errors"
	"github.com/tendermint/go-amino"
)

const mainPrefix = byte('t')
const infoPrefix = byte('i')

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotExists  = errors.New("account does not exist")
	ErrInvalidAccount    = errors.New("invalid account")
	ErrNegativeAmount    = errors.New("negative amount")
)

var cdc = amino.NewCodec()

type RToken interface {
	Export(state *types.AppState)
	BalanceOf(address types.Address) *big.Int
	GetNonce(address types.Address) uint64
	Exists(address types.Address) bool
	Symbol() string
	Decimals() uint8
	TotalSupply() *big.Int
}

// Token is the underlying fungible token: balances and nonces of accounts.
type Token struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	info        *info
	isInfoDirty bool

	db  atomic.Value
	bus *bus.Bus

	lock     sync.RWMutex
	transfer sync.Mutex
}

func NewToken(stateBus *bus.Bus, db *iavl.ImmutableTree) *Token {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	token := &Token{db: immutableTree, bus: stateBus, list: map[types.Address]*Model{}, dirty: map[types.Address]struct{}{}}
	token.bus.SetToken(token)

	return token
}

func (t *Token) immutableTree() *iavl.ImmutableTree {
	db := t.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (t *Token) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	t.db.Store(immutableTree)
}

func (t *Token) Commit(db *iavl.MutableTree) error {
	t.lock.Lock()
	if t.isInfoDirty {
		t.isInfoDirty = false
		data, err := cdc.MarshalBinaryBare(t.info)
		if err != nil {
			t.lock.Unlock()
			return fmt.Errorf("can't encode token info: %v", err)
		}
		db.Set([]byte{infoPrefix}, data)
	}
	t.lock.Unlock()

	for _, address := range t.getOrderedDirtyAccounts() {
		account := t.getFromMap(address)
		t.lock.Lock()
		delete(t.dirty, address)
		t.lock.Unlock()

		if account.getBalance().Sign() == -1 {
			panic(fmt.Sprintf("Address %s has negative balance: %s", address.String(), account.getBalance()))
		}

		data, err := cdc.MarshalBinaryBare(account.record())
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

func (t *Token) getOrderedDirtyAccounts() []types.Address {
	t.lock.RLock()
	keys := make([]types.Address, 0, len(t.dirty))
	for k := range t.dirty {
		keys = append(keys, k)
	}
	t.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

// SetInfo sets the token symbol and precision, used on genesis import.
func (t *Token) SetInfo(symbol string, decimals uint8) {
	i := t.getInfo()

	t.lock.Lock()
	defer t.lock.Unlock()

	i.Symbol = symbol
	i.Decimals = uint32(decimals)
	t.isInfoDirty = true
}

func (t *Token) getInfo() *info {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.info != nil {
		return t.info
	}

	t.info = &info{}
	_, enc := t.immutableTree().Get([]byte{infoPrefix})
	if len(enc) == 0 {
		return t.info
	}

	if err := cdc.UnmarshalBinaryBare(enc, t.info); err != nil {
		panic(fmt.Sprintf("failed to decode token info: %s", err))
	}

	return t.info
}

func (t *Token) Symbol() string {
	return t.getInfo().Symbol
}

func (t *Token) Decimals() uint8 {
	return uint8(t.getInfo().Decimals)
}

func (t *Token) TotalSupply() *big.Int {
	return big.NewInt(0).SetBytes(t.getInfo().Supply)
}

// Mint creates new tokens on the given account, used on genesis import.
func (t *Token) Mint(address types.Address, amount *big.Int) {
	t.AddBalance(address, amount)

	i := t.getInfo()
	t.lock.Lock()
	i.Supply = big.NewInt(0).Add(big.NewInt(0).SetBytes(i.Supply), amount).Bytes()
	t.isInfoDirty = true
	t.lock.Unlock()
}

func (t *Token) BalanceOf(address types.Address) *big.Int {
	account := t.get(address)
	if account == nil {
		return big.NewInt(0)
	}

	return account.getBalance()
}

func (t *Token) GetNonce(address types.Address) uint64 {
	account := t.get(address)
	if account == nil {
		return 0
	}

	return account.getNonce()
}

func (t *Token) SetNonce(address types.Address, nonce uint64) {
	t.getOrNew(address).setNonce(nonce)
}

// Exists reports whether the account was ever written.
func (t *Token) Exists(address types.Address) bool {
	account := t.get(address)
	return account != nil && account.exists()
}

func (t *Token) AddBalance(address types.Address, amount *big.Int) {
	account := t.getOrNew(address)
	account.setBalance(big.NewInt(0).Add(account.getBalance(), amount))
}

func (t *Token) SubBalance(address types.Address, amount *big.Int) {
	account := t.getOrNew(address)
	account.setBalance(big.NewInt(0).Sub(account.getBalance(), amount))
}

// Transfer moves amount between accounts. Either both balances change or none.
func (t *Token) Transfer(from, to types.Address, amount *big.Int) error {
	t.transfer.Lock()
	defer t.transfer.Unlock()

	if amount.Sign() == -1 {
		return errors.Wrapf(ErrNegativeAmount, "transfer of %s", amount)
	}
	if to.IsZero() {
		return errors.Wrapf(ErrInvalidAccount, "transfer to %s", to)
	}
	if !t.Exists(from) {
		return errors.Wrapf(ErrAccountNotExists, "transfer from %s", from)
	}
	if balance := t.BalanceOf(from); balance.Cmp(amount) == -1 {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %s, wanted %s", from, balance, amount)
	}

	if from == to {
		return nil
	}

	t.SubBalance(from, amount)
	t.AddBalance(to, amount)

	return nil
}

func (t *Token) get(address types.Address) *Model {
	if account := t.getFromMap(address); account != nil {
		return account
	}

	_, enc := t.immutableTree().Get(pathOf(address))
	if len(enc) == 0 {
		return nil
	}

	var r record
	if err := cdc.UnmarshalBinaryBare(enc, &r); err != nil {
		panic(fmt.Sprintf("failed to decode account at address %s: %s", address.String(), err))
	}

	account := &Model{
		Nonce:     r.Nonce,
		Balance:   big.NewInt(0).SetBytes(r.Balance),
		address:   address,
		markDirty: t.markDirty,
	}
	t.setToMap(address, account)

	return account
}

func (t *Token) getOrNew(address types.Address) *Model {
	account := t.get(address)
	if account == nil {
		account = &Model{
			Balance:   big.NewInt(0),
			address:   address,
			isNew:     true,
			markDirty: t.markDirty,
		}
		t.setToMap(address, account)
	}

	return account
}

func (t *Token) markDirty(address types.Address) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.dirty[address] = struct{}{}
}

func (t *Token) getFromMap(address types.Address) *Model {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.list[address]
}

func (t *Token) setToMap(address types.Address, model *Model) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.list[address] = model
}

func (t *Token) Export(state *types.AppState) {
	i := t.getInfo()
	state.Token = types.Token{Symbol: i.Symbol, Decimals: uint8(i.Decimals)}

	t.immutableTree().IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		address := types.BytesToAddress(key[1:])
		account := t.get(address)

		if balance := account.getBalance(); balance.Sign() == 1 {
			state.Balances = append(state.Balances, types.Balance{
				Address: address,
				Value:   balance.String(),
			})
		}
		if nonce := account.getNonce(); nonce > 0 {
			state.Nonces = append(state.Nonces, types.Nonce{
				Address: address,
				Nonce:   nonce,
			})
		}

		return false
	})
}
