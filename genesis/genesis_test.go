package genesis

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/grantledger/grant-node/core/types"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmtypes "github.com/tendermint/tendermint/types"
)

var (
	deployer    = types.HexToAddress("0x6e2f8c3bd3b8a79c5ad1e4c7d0a4c3ad9a4de0f1")
	genesisTime = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
)

func testParams() Params {
	return Params{
		Deployer:        deployer,
		Symbol:          "FLT",
		Decimals:        DefaultDecimals,
		Backing:         big.NewInt(100000),
		LockPeriod:      365 * 24 * time.Hour,
		RetrievalPeriod: 5 * 365 * 24 * time.Hour,
	}
}

func TestNewAppState(t *testing.T) {
	t.Parallel()

	appState := NewAppState(testParams())
	if err := appState.Verify(); err != nil {
		t.Fatal(err)
	}

	if appState.Ledger.Account != types.CreateLedgerAddress(deployer, 0) {
		t.Errorf("unexpected ledger account %s", appState.Ledger.Account)
	}
	if appState.Ledger.LockPeriod != 365*24*3600 {
		t.Errorf("unexpected lock period %d", appState.Ledger.LockPeriod)
	}
	if len(appState.Balances) != 1 || appState.Balances[0].Value != "100000" {
		t.Errorf("unexpected balances %v", appState.Balances)
	}

	params := testParams()
	params.Backing = nil
	if len(NewAppState(params).Balances) != 0 {
		t.Error("empty backing should not create a balance")
	}
}

func TestNewGenesisDoc(t *testing.T) {
	t.Parallel()

	pubKey := ed25519.GenPrivKey().PubKey()
	doc, err := NewGenesisDoc(DefaultChainID, genesisTime, NewAppState(testParams()), Validator(pubKey, "node"))
	if err != nil {
		t.Fatal(err)
	}

	if doc.InitialHeight != 1 {
		t.Errorf("expected initial height 1, got %d", doc.InitialHeight)
	}

	file := filepath.Join(t.TempDir(), "genesis.json")
	if err := doc.SaveAs(file); err != nil {
		t.Fatal(err)
	}

	loaded, err := tmtypes.GenesisDocFromFile(file)
	if err != nil {
		t.Fatal(err)
	}

	appState, err := AppStateFromGenesis(loaded)
	if err != nil {
		t.Fatal(err)
	}
	if appState.Ledger.Deployer != deployer || appState.Token.Symbol != "FLT" {
		t.Errorf("unexpected app state %+v", appState)
	}
	if !loaded.Validators[0].PubKey.Equals(pubKey) {
		t.Error("validator key mismatch")
	}
}

func TestNewGenesisDocInvalid(t *testing.T) {
	t.Parallel()

	pubKey := ed25519.GenPrivKey().PubKey()

	params := testParams()
	params.RetrievalPeriod = time.Hour
	if _, err := NewGenesisDoc(DefaultChainID, genesisTime, NewAppState(params), Validator(pubKey, "node")); err == nil {
		t.Error("expected error for retrieval period shorter than lock period")
	}

	params = testParams()
	params.LockPeriod = -time.Hour
	if _, err := NewGenesisDoc(DefaultChainID, genesisTime, NewAppState(params), Validator(pubKey, "node")); err == nil {
		t.Error("expected error for negative lock period")
	}

	if _, err := NewGenesisDoc("", genesisTime, NewAppState(testParams()), Validator(pubKey, "node")); err == nil {
		t.Error("expected error for empty chain id")
	}

	if _, err := DecodeAppState([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
}
