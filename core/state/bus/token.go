package bus

import (
	"math/big"

	"github.com/grantledger/grant-node/core/types"
)

// Token is the underlying accountable store a ledger draws its backing from.
type Token interface {
	BalanceOf(types.Address) *big.Int
	Transfer(from, to types.Address, amount *big.Int) error
	Decimals() uint8
}
