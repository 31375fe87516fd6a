package cmd

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/transaction"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/genesis"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"
	db "github.com/tendermint/tm-db"
)

var testGenesisTime = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, SaveKey(path, key))

	loaded, err := LoadKey(path)
	require.NoError(t, err)
	assert.Equal(t, transaction.PubKeyAddress(key), transaction.PubKeyAddress(loaded))

	_, err = LoadKey(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestTxData(t *testing.T) {
	t.Parallel()

	recipient := types.HexToAddress("0x00000000000000000000000000000000000000aa")

	data, err := allocateData([]string{recipient.String(), "100"}, baseAmount)
	require.NoError(t, err)
	assert.Equal(t, &transaction.AllocateData{Recipient: recipient, Value: "100"}, data)

	data, err = transferData([]string{recipient.String(), "5"}, baseAmount)
	require.NoError(t, err)
	assert.Equal(t, transaction.TypeTransfer, data.TxType())

	_, err = allocateData([]string{"nope", "100"}, baseAmount)
	assert.Error(t, err)
	_, err = allocateData([]string{recipient.String(), "-1"}, baseAmount)
	assert.Error(t, err)
	_, err = claimData([]string{"ten"}, baseAmount)
	assert.Error(t, err)

	for _, build := range []func([]string, amountFunc) (transaction.Data, error){claimAllData, pauseData, resumeData, retrieveData} {
		data, err := build(nil, baseAmount)
		require.NoError(t, err)
		assert.NotNil(t, data)
	}
}

func TestTxDataUnits(t *testing.T) {
	t.Parallel()

	recipient := types.HexToAddress("0x00000000000000000000000000000000000000aa")

	data, err := allocateData([]string{recipient.String(), "3"}, unitsAmount(18))
	require.NoError(t, err)
	assert.Equal(t, &transaction.AllocateData{Recipient: recipient, Value: "3000000000000000000"}, data)

	data, err = claimData([]string{"25"}, unitsAmount(2))
	require.NoError(t, err)
	assert.Equal(t, &transaction.ClaimData{Value: "2500"}, data)

	data, err = transferData([]string{recipient.String(), "7"}, unitsAmount(0))
	require.NoError(t, err)
	assert.Equal(t, &transaction.TransferData{To: recipient, Value: "7"}, data)

	_, err = claimData([]string{"1.5"}, unitsAmount(18))
	assert.Error(t, err)
}

func TestSignTx(t *testing.T) {
	t.Parallel()

	key, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	rawTx, err := signTx(key, "grant-test", 3, &transaction.ClaimData{Value: "7"})
	require.NoError(t, err)

	tx, err := transaction.NewExecutor(transaction.GetData).DecodeFromBytes(rawTx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tx.Nonce)
	assert.Equal(t, "grant-test", tx.ChainID)

	sender, err := tx.Sender()
	require.NoError(t, err)
	assert.Equal(t, transaction.PubKeyAddress(key), sender)
}

func TestGenesisParams(t *testing.T) {
	deployer := types.HexToAddress("0x00000000000000000000000000000000000000d1")

	command := &cobra.Command{}
	command.Flags().AddFlagSet(InitCommand.Flags())
	require.NoError(t, command.Flags().Set("deployer", deployer.String()))
	require.NoError(t, command.Flags().Set("backing", "5000"))
	require.NoError(t, command.Flags().Set("lock-period", "1h"))
	require.NoError(t, command.Flags().Set("retrieval-period", "2h"))
	require.NoError(t, command.Flags().Set("genesis-time", testGenesisTime.Format(time.RFC3339)))

	params, err := genesisParams(command)
	require.NoError(t, err)
	assert.Equal(t, deployer, params.Deployer)
	assert.Equal(t, deployer, params.Administrator)
	assert.Equal(t, int64(5000), params.Backing.Int64())
	assert.Equal(t, time.Hour, params.LockPeriod)

	genesisTime, err := parseGenesisTime(command)
	require.NoError(t, err)
	assert.True(t, testGenesisTime.Equal(genesisTime))

	doc, err := newGenesis("grant-test", genesisTime, params, genesis.Validator(ed25519.GenPrivKey().PubKey(), "node"))
	require.NoError(t, err)

	appState, err := genesis.AppStateFromGenesis(doc)
	require.NoError(t, err)
	assert.Equal(t, types.CreateLedgerAddress(deployer, 0), appState.Ledger.Account)

	require.NoError(t, command.Flags().Set("backing", "-1"))
	_, err = genesisParams(command)
	assert.Error(t, err)

	require.NoError(t, command.Flags().Set("backing", "0"))
	require.NoError(t, command.Flags().Set("administrator", "bad"))
	_, err = genesisParams(command)
	assert.Error(t, err)
	require.NoError(t, command.Flags().Set("administrator", ""))

	for _, periods := range [][2]string{{"-1h", "2h"}, {"1h", "-2h"}, {"1h500ms", "2h"}, {"3h", "2h"}} {
		require.NoError(t, command.Flags().Set("lock-period", periods[0]))
		require.NoError(t, command.Flags().Set("retrieval-period", periods[1]))
		_, err = genesisParams(command)
		assert.ErrorIs(t, err, types.ErrInvalidPeriods, "lock %s retrieval %s", periods[0], periods[1])
	}
	require.NoError(t, command.Flags().Set("lock-period", "1h"))
	require.NoError(t, command.Flags().Set("retrieval-period", "2h"))

	require.NoError(t, command.Flags().Set("backing", "12"))
	require.NoError(t, command.Flags().Set("decimals", "3"))
	require.NoError(t, command.Flags().Set("units", "true"))
	params, err = genesisParams(command)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000), params.Backing.Int64())
	require.NoError(t, command.Flags().Set("units", "false"))
	require.NoError(t, command.Flags().Set("decimals", "18"))
}

func TestExportGenesis(t *testing.T) {
	t.Parallel()

	deployer := types.HexToAddress("0x00000000000000000000000000000000000000d1")
	appState := genesis.NewAppState(genesis.Params{
		Deployer:        deployer,
		Symbol:          "FLT",
		Decimals:        18,
		Backing:         big.NewInt(1000),
		LockPeriod:      time.Hour,
		RetrievalPeriod: 2 * time.Hour,
	})

	stateDB := db.NewMemDB()
	st, err := state.NewState(0, stateDB, nil, 1024, 0)
	require.NoError(t, err)
	require.NoError(t, st.Import(appState, testGenesisTime))
	_, err = st.Commit()
	require.NoError(t, err)

	current, err := genesis.NewGenesisDoc("grant-test", testGenesisTime, appState, genesis.Validator(ed25519.GenPrivKey().PubKey(), "node"))
	require.NoError(t, err)

	exportTime := testGenesisTime.Add(24 * time.Hour)
	doc, err := exportGenesis(stateDB, 1, current, "", exportTime)
	require.NoError(t, err)
	assert.Equal(t, "grant-test", doc.ChainID)
	assert.Equal(t, int64(2), doc.InitialHeight)
	assert.Equal(t, current.Validators, doc.Validators)

	exported, err := genesis.AppStateFromGenesis(doc)
	require.NoError(t, err)
	assert.Equal(t, "FLT", exported.Token.Symbol)
	assert.Equal(t, deployer, exported.Ledger.Deployer)
	assert.True(t, testGenesisTime.Equal(exported.Ledger.CreationTime))
	require.Len(t, exported.Balances, 1)
	assert.Equal(t, "1000", exported.Balances[0].Value)

	_, err = exportGenesis(stateDB, 0, current, "", exportTime)
	assert.Error(t, err)
	_, err = exportGenesis(stateDB, 5, current, "", exportTime)
	assert.Error(t, err)
}
