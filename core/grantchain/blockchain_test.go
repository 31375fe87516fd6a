package grantchain

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"github.com/grantledger/grant-node/cmd/utils"
	"github.com/grantledger/grant-node/config"
	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/statistics"
	"github.com/grantledger/grant-node/core/transaction"
	"github.com/grantledger/grant-node/genesis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abciTypes "github.com/tendermint/tendermint/abci/types"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
)

var genesisTime = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

type testChain struct {
	app    *Blockchain
	admin  *btcec.PrivateKey
	alice  *btcec.PrivateKey
	nonces map[*btcec.PrivateKey]uint64
	height int64
}

func newTestConfig(t *testing.T, backend string) (*config.Config, *utils.Storage) {
	t.Helper()

	home := t.TempDir()
	cfg := config.GetConfig(home)
	cfg.DBBackend = backend

	storages := utils.NewStorage(home, backend)
	_, err := storages.InitStateDB()
	require.NoError(t, err)
	_, err = storages.InitEventDB()
	require.NoError(t, err)

	return cfg, storages
}

func newTestChain(t *testing.T, cfg *config.Config, storages *utils.Storage) *testChain {
	t.Helper()

	admin, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	app := NewGrantBlockchain(storages, cfg, nil)
	app.SetStatisticData(statistics.New(prometheus.NewRegistry()))

	appState := genesis.NewAppState(genesis.Params{
		Deployer:        transaction.PubKeyAddress(admin),
		Symbol:          "FLT",
		Decimals:        genesis.DefaultDecimals,
		Backing:         big.NewInt(100_000),
		LockPeriod:      time.Hour,
		RetrievalPeriod: 2 * time.Hour,
	})
	appStateJSON, err := json.Marshal(appState)
	require.NoError(t, err)

	app.InitChain(abciTypes.RequestInitChain{
		Time:          genesisTime,
		ChainId:       genesis.DefaultChainID,
		AppStateBytes: appStateJSON,
		InitialHeight: 1,
	})

	return &testChain{
		app:    app,
		admin:  admin,
		alice:  alice,
		nonces: map[*btcec.PrivateKey]uint64{},
	}
}

func (c *testChain) tx(t *testing.T, key *btcec.PrivateKey, data transaction.Data) []byte {
	t.Helper()

	c.nonces[key]++
	tx, err := transaction.NewTx(genesis.DefaultChainID, c.nonces[key], data)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key))

	encoded, err := tx.Serialize()
	require.NoError(t, err)
	return encoded
}

func (c *testChain) block(blockTime time.Time, txs ...[]byte) []abciTypes.ResponseDeliverTx {
	c.height++

	c.app.BeginBlock(abciTypes.RequestBeginBlock{Header: tmproto.Header{Height: c.height, Time: blockTime}})
	responses := make([]abciTypes.ResponseDeliverTx, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, c.app.DeliverTx(abciTypes.RequestDeliverTx{Tx: tx}))
	}
	c.app.EndBlock(abciTypes.RequestEndBlock{Height: c.height})
	c.app.Commit()

	return responses
}

func (c *testChain) query(t *testing.T, path string, height int64, result interface{}) {
	t.Helper()

	response := c.app.Query(abciTypes.RequestQuery{Path: path, Height: height})
	require.Equal(t, code.OK, response.Code, response.Log)
	require.NoError(t, json.Unmarshal(response.Value, result))
}

func TestBlockchainFlow(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")
	chain := newTestChain(t, cfg, storages)
	alice := transaction.PubKeyAddress(chain.alice)

	responses := chain.block(genesisTime.Add(time.Minute),
		chain.tx(t, chain.admin, &transaction.AllocateData{Recipient: alice, Value: "10000"}))
	require.Equal(t, code.OK, responses[0].Code, responses[0].Log)
	assert.Equal(t, uint64(1), chain.app.Height())

	var ledger LedgerInfo
	chain.query(t, QueryLedger, 0, &ledger)
	assert.Equal(t, "10000", ledger.LockedBalance)
	assert.Equal(t, "100000", ledger.Backing)
	assert.Equal(t, "90000", ledger.Available)
	assert.Equal(t, "0.00000000000001", ledger.LockedDisplay)
	assert.Equal(t, "0.0000000000001", ledger.BackingDisplay)
	assert.Equal(t, "0.00000000000009", ledger.AvailableDisplay)
	assert.Equal(t, "FLT-GRANT", ledger.Symbol)
	assert.Equal(t, transaction.PubKeyAddress(chain.admin), ledger.Administrator)
	assert.Equal(t, genesisTime, ledger.CreationTime.UTC())
	assert.True(t, ledger.DistributionActive)
	assert.Equal(t, 1, ledger.Grants)

	responses = chain.block(genesisTime.Add(30*time.Minute),
		chain.tx(t, chain.alice, &transaction.ClaimData{Value: "4000"}))
	assert.Equal(t, code.NotYetUnlocked, responses[0].Code)
	chain.nonces[chain.alice]--

	responses = chain.block(genesisTime.Add(time.Hour),
		chain.tx(t, chain.alice, &transaction.ClaimData{Value: "4000"}))
	require.Equal(t, code.OK, responses[0].Code, responses[0].Log)

	var balance BalanceInfo
	chain.query(t, QueryBalance+"/"+alice.String(), 0, &balance)
	assert.Equal(t, "6000", balance.Balance)
	assert.Equal(t, "0.000000000000006", balance.Display)

	var account AccountInfo
	chain.query(t, QueryToken+"/"+alice.String(), 0, &account)
	assert.Equal(t, "4000", account.Balance)
	assert.Equal(t, uint64(1), account.Nonce)

	var historical GrantInfo
	chain.query(t, QueryGrant+"/"+alice.String(), 1, &historical)
	assert.Equal(t, "10000", historical.Entitlement)
	assert.Equal(t, "10000", historical.Allocated)

	var current GrantInfo
	chain.query(t, QueryGrant+"/"+alice.String(), 0, &current)
	assert.Equal(t, "6000", current.Entitlement)
	assert.False(t, current.ClaimedFully)

	var firstBlock []struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	chain.query(t, QueryEvents+"/1", 0, &firstBlock)
	require.Len(t, firstBlock, 1)
	assert.Equal(t, events.TypeAllocationAddedEvent, firstBlock[0].Type)

	var thirdBlock []struct {
		Type string `json:"type"`
	}
	chain.query(t, QueryEvents+"/3", 0, &thirdBlock)
	require.Len(t, thirdBlock, 1)
	assert.Equal(t, events.TypeClaimedEvent, thirdBlock[0].Type)

	assert.Equal(t, []int{1, 2, 3}, chain.app.AvailableVersions())
}

func TestBlockchainCheckTx(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")
	chain := newTestChain(t, cfg, storages)
	alice := transaction.PubKeyAddress(chain.alice)

	raw := chain.tx(t, chain.admin, &transaction.AllocateData{Recipient: alice, Value: "10000"})

	response := chain.app.CheckTx(abciTypes.RequestCheckTx{Tx: raw})
	require.Equal(t, code.OK, response.Code, response.Log)

	response = chain.app.CheckTx(abciTypes.RequestCheckTx{Tx: raw})
	assert.Equal(t, code.TxFromSenderAlreadyInMempool, response.Code)

	var grant GrantInfo
	chain.query(t, QueryGrant+"/"+alice.String(), 0, &grant)
	assert.Equal(t, "0", grant.Entitlement)

	chain.block(genesisTime.Add(time.Minute))

	response = chain.app.CheckTx(abciTypes.RequestCheckTx{Tx: raw})
	assert.Equal(t, code.OK, response.Code, response.Log)
}

func TestBlockchainRestart(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "goleveldb")
	chain := newTestChain(t, cfg, storages)
	alice := transaction.PubKeyAddress(chain.alice)

	chain.block(genesisTime.Add(time.Minute),
		chain.tx(t, chain.admin, &transaction.AllocateData{Recipient: alice, Value: "10000"}))
	chain.block(genesisTime.Add(2 * time.Minute))

	info := chain.app.Info(abciTypes.RequestInfo{})
	require.NoError(t, chain.app.Close())

	reopened := utils.NewStorage(storages.GetGrantHome(), "goleveldb")
	_, err := reopened.InitStateDB()
	require.NoError(t, err)
	_, err = reopened.InitEventDB()
	require.NoError(t, err)

	app := NewGrantBlockchain(reopened, cfg, nil)
	defer app.Close()

	restarted := app.Info(abciTypes.RequestInfo{})
	assert.Equal(t, int64(2), restarted.LastBlockHeight)
	assert.Equal(t, info.LastBlockAppHash, restarted.LastBlockAppHash)
	assert.Equal(t, uint64(0), app.InitialHeight())
	require.NotNil(t, app.Ledger())
	assert.Equal(t, int64(10000), app.Ledger().EntitlementOf(alice).Int64())

	response := app.Query(abciTypes.RequestQuery{Path: QueryEvents + "/1"})
	require.Equal(t, code.OK, response.Code, response.Log)
	assert.Contains(t, string(response.Value), events.TypeAllocationAddedEvent)

	checked := app.CheckTx(abciTypes.RequestCheckTx{Tx: chain.tx(t, chain.admin, &transaction.PauseData{})})
	assert.Equal(t, code.OK, checked.Code, checked.Log)
}

func TestBlockchainRejectsOtherChainTx(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")
	chain := newTestChain(t, cfg, storages)
	alice := transaction.PubKeyAddress(chain.alice)

	tx, err := transaction.NewTx("grant-other-1", 1, &transaction.AllocateData{Recipient: alice, Value: "10000"})
	require.NoError(t, err)
	require.NoError(t, tx.Sign(chain.admin))
	replayed, err := tx.Serialize()
	require.NoError(t, err)

	checked := chain.app.CheckTx(abciTypes.RequestCheckTx{Tx: replayed})
	assert.Equal(t, code.WrongChainID, checked.Code)

	responses := chain.block(genesisTime.Add(time.Minute), replayed)
	assert.Equal(t, code.WrongChainID, responses[0].Code)
	assert.Equal(t, int64(0), chain.app.Ledger().EntitlementOf(alice).Int64())
}

func TestBlockchainQueryErrors(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")

	empty := NewGrantBlockchain(storages, cfg, nil)
	assert.Equal(t, code.StateNotAvailable, empty.Query(abciTypes.RequestQuery{Path: QueryLedger}).Code)

	chain := newTestChain(t, cfg, storages)
	assert.Equal(t, code.UnknownQuery, chain.app.Query(abciTypes.RequestQuery{Path: "validators"}).Code)
	assert.Equal(t, code.UnknownQuery, chain.app.Query(abciTypes.RequestQuery{Path: QueryGrant}).Code)
	assert.Equal(t, code.InvalidAddress, chain.app.Query(abciTypes.RequestQuery{Path: QueryGrant + "/0x12"}).Code)
	assert.Equal(t, code.UnknownQuery, chain.app.Query(abciTypes.RequestQuery{Path: QueryEvents + "/abc"}).Code)
	assert.Equal(t, code.StateNotAvailable, chain.app.Query(abciTypes.RequestQuery{Path: QueryLedger, Height: 10}).Code)
}

func TestBlockchainHaltHeight(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")
	cfg.HaltHeight = 2
	chain := newTestChain(t, cfg, storages)

	chain.block(genesisTime.Add(time.Minute))
	select {
	case <-chain.app.Halted():
		t.Fatal("halted too early")
	default:
	}

	chain.block(genesisTime.Add(2 * time.Minute))
	select {
	case <-chain.app.Halted():
	default:
		t.Fatal("expected halt at height 2")
	}
}

func TestBlockchainCommitChecksInvariants(t *testing.T) {
	t.Parallel()

	cfg, storages := newTestConfig(t, "memdb")
	chain := newTestChain(t, cfg, storages)

	chain.app.BeginBlock(abciTypes.RequestBeginBlock{Header: tmproto.Header{Height: 1, Time: genesisTime}})
	chain.app.EndBlock(abciTypes.RequestEndBlock{Height: 1})
	chain.app.stateDeliver.App.AddLockedBalance(big.NewInt(1))

	assert.Panics(t, func() { chain.app.Commit() })
}
