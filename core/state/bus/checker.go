package bus

import (
	"math/big"
)

type Checker interface {
	AddEntitlement(*big.Int)
	AddLocked(*big.Int)
}
