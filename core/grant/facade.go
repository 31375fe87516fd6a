package grant

import (
	"math/big"

	"github.com/grantledger/grant-node/core/types"
	"github.com/pkg/errors"
)

// Wallets display a ledger as a token whose balances are the entitlements.

const symbolSuffix = "-GRANT"

func (l *Ledger) Name() string {
	return l.Symbol()
}

func (l *Ledger) Symbol() string {
	return DisplaySymbol(l.state.Token.Symbol())
}

// DisplaySymbol is the symbol a ledger over tokenSymbol is displayed with.
func DisplaySymbol(tokenSymbol string) string {
	return tokenSymbol + symbolSuffix
}

func (l *Ledger) Decimals() uint8 {
	return l.token.Decimals()
}

func (l *Ledger) BalanceOf(account types.Address) *big.Int {
	return l.EntitlementOf(account)
}

func (l *Ledger) TotalSupply() *big.Int {
	return l.LockedBalance()
}

func (l *Ledger) Allowance(owner, spender types.Address) *big.Int {
	return big.NewInt(0)
}

func (l *Ledger) Approve(owner, spender types.Address, amount *big.Int) error {
	return errors.Wrap(ErrUnsupported, "approve")
}

func (l *Ledger) TransferFrom(caller, from, to types.Address, amount *big.Int) error {
	return errors.Wrap(ErrUnsupported, "transferFrom")
}

// Transfer claims amount to the caller, to is ignored.
func (l *Ledger) Transfer(caller, to types.Address, amount *big.Int) error {
	return l.Claim(caller, amount)
}

// CheckTransfer reports whether Transfer would succeed.
func (l *Ledger) CheckTransfer(caller, to types.Address, amount *big.Int) error {
	return l.CheckClaim(caller, amount)
}
