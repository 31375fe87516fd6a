package grant

import (
	"github.com/grantledger/grant-node/core/types"
	"github.com/pkg/errors"
)

var (
	ErrNotDeployed      = errors.New("ledger is not deployed")
	ErrAlreadyDeployed  = errors.New("ledger is already deployed")
	ErrInvalidPeriods   = types.ErrInvalidPeriods
	ErrUnauthorized     = errors.New("sender is not the administrator")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrZeroAmount       = errors.New("amount must be positive")

	ErrAlreadyAllocated        = errors.New("recipient already has an allocation")
	ErrAlreadyClaimed          = errors.New("allocation is already claimed")
	ErrInsufficientBacking     = errors.New("insufficient backing for allocation")
	ErrInsufficientEntitlement = errors.New("insufficient entitlement")

	// ErrNotAllocated also matches ErrInsufficientEntitlement.
	ErrNotAllocated error = &entitlementError{msg: "account has no allocation"}

	ErrDistributionPaused = errors.New("distribution is paused")
	ErrNotYetUnlocked     = errors.New("funds are not yet unlocked")
	ErrAlreadyPaused      = errors.New("distribution is already paused")
	ErrAlreadyActive      = errors.New("distribution is already active")
	ErrNothingToRetrieve  = errors.New("nothing to retrieve")
	ErrUnsupported        = errors.New("operation is not supported")
)

type entitlementError struct {
	msg string
}

func (e *entitlementError) Error() string {
	return e.msg
}

func (e *entitlementError) Is(target error) bool {
	return target == ErrInsufficientEntitlement
}
