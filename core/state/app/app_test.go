package app

import (
	"math/big"
	"testing"
	"time"

	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/state/checker"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/tree"
	db "github.com/tendermint/tm-db"
)

func TestAppDeployAndReload(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	checker.NewChecker(b)
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	app := NewApp(b, mutableTree.GetLastImmutable())

	if app.Exists() {
		t.Fatal("ledger exists before deploy")
	}

	admin, deployer, account := types.Address{1}, types.Address{2}, types.Address{3}
	created := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	app.Deploy(admin, deployer, account, created, time.Hour, 5*time.Hour, true)
	app.AddLockedBalance(big.NewInt(10))
	app.SetDistributionActive(false)
	app.AddGrants(2)
	app.AddGrants(1)

	if _, _, err := mutableTree.Commit(app); err != nil {
		t.Fatal(err)
	}

	reloaded := NewApp(b, mutableTree.GetLastImmutable())
	if !reloaded.Exists() {
		t.Fatal("ledger is not persisted")
	}
	if reloaded.Administrator() != admin || reloaded.Deployer() != deployer || reloaded.Account() != account {
		t.Fatal("wrong addresses after reload")
	}
	if !reloaded.ClaimUnlockTime().Equal(created.Add(time.Hour)) {
		t.Fatalf("wrong claim unlock time %s", reloaded.ClaimUnlockTime())
	}
	if !reloaded.RetrievalUnlockTime().Equal(created.Add(5 * time.Hour)) {
		t.Fatalf("wrong retrieval unlock time %s", reloaded.RetrievalUnlockTime())
	}
	if reloaded.IsDistributionActive() {
		t.Fatal("distribution flag is not persisted")
	}
	if reloaded.LockedBalance().Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("wrong locked balance %s", reloaded.LockedBalance())
	}
	if reloaded.GrantsCount() != 3 {
		t.Fatalf("wrong grants count %d", reloaded.GrantsCount())
	}

	state := new(types.AppState)
	reloaded.Export(state)
	if state.Ledger.LockPeriod != 3600 || state.Ledger.RetrievalPeriod != 18000 || !state.Ledger.DistributionPaused {
		t.Fatalf("wrong exported ledger %+v", state.Ledger)
	}
	if !state.Ledger.CreationTime.Equal(created) {
		t.Fatalf("wrong exported creation time %s", state.Ledger.CreationTime)
	}
}
