package token

import (
	"math/big"
	"sync"

	"github.com/grantledger/grant-node/core/types"
)

type Model struct {
	Nonce   uint64
	Balance *big.Int

	address types.Address
	isNew   bool

	markDirty func(types.Address)
	lock      sync.RWMutex
}

// record is the stored form of Model, Exists keeps drained accounts non-empty
type record struct {
	Nonce   uint64
	Balance []byte
	Exists  bool
}

type info struct {
	Symbol   string
	Decimals uint32
	Supply   []byte
}

func (model *Model) setNonce(nonce uint64) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.Nonce = nonce
	model.isNew = false
	model.markDirty(model.address)
}

func (model *Model) getBalance() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.Balance)
}

func (model *Model) setBalance(value *big.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.Balance = big.NewInt(0).Set(value)
	model.isNew = false
	model.markDirty(model.address)
}

func (model *Model) getNonce() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Nonce
}

func (model *Model) exists() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return !model.isNew
}

func (model *Model) record() record {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return record{Nonce: model.Nonce, Balance: model.Balance.Bytes(), Exists: true}
}
