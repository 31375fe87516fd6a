package grants

import (
	"math/big"
	"testing"

	"github.com/grantledger/grant-node/core/state/bus"
	"github.com/grantledger/grant-node/core/state/checker"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/tree"
	db "github.com/tendermint/tm-db"
)

func TestGrantsAllocateAndClaim(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	c := checker.NewChecker(b)
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	grants := NewGrants(b, mutableTree.GetLastImmutable())

	addr := types.Address{7}
	if grants.GetGrant(addr) != nil {
		t.Fatal("grant exists before allocation")
	}

	grants.Allocate(addr, big.NewInt(100))
	if err := c.Check(); err == nil {
		t.Fatal("expected unbalanced checker")
	}
	b.Checker().AddLocked(big.NewInt(100))

	grants.SubEntitlement(addr, big.NewInt(40))

	if grants.EntitlementOf(addr).Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("wrong entitlement %s", grants.EntitlementOf(addr))
	}
	if grants.AllocatedOf(addr).Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("wrong allocation %s", grants.AllocatedOf(addr))
	}
	if grants.IsClaimedFully(addr) {
		t.Fatal("grant claimed too early")
	}

	grants.SubEntitlement(addr, big.NewInt(60))
	if !grants.IsClaimedFully(addr) {
		t.Fatal("grant should be claimed")
	}

	b.Checker().AddLocked(big.NewInt(-100))
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestGrantsCommitAndExport(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	checker.NewChecker(b)
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	grants := NewGrants(b, mutableTree.GetLastImmutable())

	alice, bob := types.Address{1}, types.Address{2}
	grants.Allocate(alice, big.NewInt(100))
	grants.Allocate(bob, big.NewInt(50))
	grants.SubEntitlement(bob, big.NewInt(50))

	if _, _, err := mutableTree.Commit(grants); err != nil {
		t.Fatal(err)
	}

	reloaded := NewGrants(b, mutableTree.GetLastImmutable())
	if reloaded.EntitlementOf(alice).Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("wrong entitlement after reload %s", reloaded.EntitlementOf(alice))
	}
	if !reloaded.IsClaimedFully(bob) || reloaded.AllocatedOf(bob).Cmp(big.NewInt(50)) != 0 {
		t.Fatal("claimed grant is not persisted")
	}

	state := new(types.AppState)
	reloaded.Export(state)

	if len(state.Grants) != 2 {
		t.Fatalf("wrong count of exported grants %d", len(state.Grants))
	}
	if state.Grants[0].Address != alice || state.Grants[0].Entitlement != "100" || state.Grants[0].ClaimedFully {
		t.Fatalf("wrong exported grant %+v", state.Grants[0])
	}
	if state.Grants[1].Address != bob || state.Grants[1].Entitlement != "0" || !state.Grants[1].ClaimedFully {
		t.Fatalf("wrong exported grant %+v", state.Grants[1])
	}
}
