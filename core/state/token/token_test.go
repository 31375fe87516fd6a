package token

import (
	"math/big"
	"testing"

	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/tree"
	"github.com/pkg/errors"
	db "github.com/tendermint/tm-db"
)

func TestTokenTransfer(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	token := NewToken(bus.NewBus(), mutableTree.GetLastImmutable())

	alice, bob := types.Address{1}, types.Address{2}
	token.SetInfo("FLT", 18)
	token.Mint(alice, big.NewInt(100))

	if err := token.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatal(err)
	}
	if token.BalanceOf(alice).Cmp(big.NewInt(70)) != 0 || token.BalanceOf(bob).Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("wrong balances %s %s", token.BalanceOf(alice), token.BalanceOf(bob))
	}

	if err := token.Transfer(bob, alice, big.NewInt(31)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if err := token.Transfer(types.Address{3}, alice, big.NewInt(0)); !errors.Is(err, ErrAccountNotExists) {
		t.Fatalf("expected account not exists, got %v", err)
	}
	if err := token.Transfer(alice, types.ZeroAddress, big.NewInt(1)); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("expected invalid account, got %v", err)
	}
	if err := token.Transfer(alice, bob, big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount, got %v", err)
	}

	if token.BalanceOf(alice).Cmp(big.NewInt(70)) != 0 || token.BalanceOf(bob).Cmp(big.NewInt(30)) != 0 {
		t.Fatal("failed transfers changed balances")
	}
	if token.TotalSupply().Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("wrong supply %s", token.TotalSupply())
	}
}

func TestTokenCommitAndExport(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	token := NewToken(bus.NewBus(), mutableTree.GetLastImmutable())

	alice, bob := types.Address{1}, types.Address{2}
	token.SetInfo("FLT", 18)
	token.Mint(alice, big.NewInt(100))
	token.SetNonce(bob, 5)

	if _, _, err := mutableTree.Commit(token); err != nil {
		t.Fatal(err)
	}

	reloaded := NewToken(bus.NewBus(), mutableTree.GetLastImmutable())
	if reloaded.BalanceOf(alice).Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("wrong balance after reload %s", reloaded.BalanceOf(alice))
	}
	if reloaded.GetNonce(bob) != 5 || !reloaded.Exists(bob) {
		t.Fatal("nonce is not persisted")
	}
	if reloaded.Symbol() != "FLT" || reloaded.Decimals() != 18 {
		t.Fatal("token info is not persisted")
	}

	state := new(types.AppState)
	reloaded.Export(state)

	if state.Token.Symbol != "FLT" || state.Token.Decimals != 18 {
		t.Fatalf("wrong exported token %+v", state.Token)
	}
	if len(state.Balances) != 1 || state.Balances[0].Address != alice || state.Balances[0].Value != "100" {
		t.Fatalf("wrong exported balances %+v", state.Balances)
	}
	if len(state.Nonces) != 1 || state.Nonces[0].Address != bob || state.Nonces[0].Nonce != 5 {
		t.Fatalf("wrong exported nonces %+v", state.Nonces)
	}
}
