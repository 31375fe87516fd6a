package cmd

import (
	"fmt"
	"time"

	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/genesis"
	"github.com/grantledger/grant-node/helpers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	tmtypes "github.com/tendermint/tendermint/types"
)

var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Create node keys and a genesis deploying the ledger",
	RunE:  initNode,
}

func init() {
	InitCommand.Flags().String("chain-id", genesis.DefaultChainID, "chain id")
	InitCommand.Flags().String("deployer", "", "deployer address (required)")
	InitCommand.Flags().String("administrator", "", "administrator address, the deployer when empty")
	InitCommand.Flags().String("symbol", "GRANT", "token symbol")
	InitCommand.Flags().Uint8("decimals", genesis.DefaultDecimals, "token decimals")
	InitCommand.Flags().String("backing", "0", "initial ledger account balance in base units")
	InitCommand.Flags().Bool("units", false, "read --backing in whole token units")
	InitCommand.Flags().Duration("lock-period", 365*24*time.Hour, "time before beneficiaries can claim")
	InitCommand.Flags().Duration("retrieval-period", 2*365*24*time.Hour, "time before the administrator can retrieve the surplus")
	InitCommand.Flags().String("genesis-time", "", "genesis time in RFC3339, now when empty")
	InitCommand.Flags().Bool("force", false, "overwrite an existing genesis file")
}

func initNode(cmd *cobra.Command, args []string) error {
	genesisFile := cfg.GenesisFile()
	force, _ := cmd.Flags().GetBool("force")
	if tmos.FileExists(genesisFile) && !force {
		return errors.Errorf("genesis file %s already exists", genesisFile)
	}

	params, err := genesisParams(cmd)
	if err != nil {
		return err
	}

	chainID, _ := cmd.Flags().GetString("chain-id")
	genesisTime, err := parseGenesisTime(cmd)
	if err != nil {
		return err
	}

	pv := privval.LoadOrGenFilePV(cfg.PrivValidatorKeyFile(), cfg.PrivValidatorStateFile())
	pubKey, err := pv.GetPubKey()
	if err != nil {
		return errors.Wrap(err, "failed to get validator key")
	}

	nodeKey, err := p2p.LoadOrGenNodeKey(cfg.NodeKeyFile())
	if err != nil {
		return errors.Wrap(err, "failed to load node key")
	}

	doc, err := newGenesis(chainID, genesisTime, params, genesis.Validator(pubKey, cfg.Moniker))
	if err != nil {
		return err
	}

	if err := doc.SaveAs(genesisFile); err != nil {
		return errors.Wrap(err, "failed to save genesis")
	}

	fmt.Printf("Node ID: %s\n", nodeKey.ID())
	fmt.Printf("Ledger account: %s\n", types.CreateLedgerAddress(params.Deployer, 0))
	fmt.Printf("Genesis written to %s\n", genesisFile)

	return nil
}

func newGenesis(chainID string, genesisTime time.Time, params genesis.Params, validator tmtypes.GenesisValidator) (*tmtypes.GenesisDoc, error) {
	return genesis.NewGenesisDoc(chainID, genesisTime, genesis.NewAppState(params), validator)
}

func genesisParams(cmd *cobra.Command) (genesis.Params, error) {
	flags := cmd.Flags()

	deployerFlag, _ := flags.GetString("deployer")
	deployer, err := types.ParseAddress(deployerFlag)
	if err != nil {
		return genesis.Params{}, errors.Wrap(err, "invalid deployer")
	}

	administrator := deployer
	if administratorFlag, _ := flags.GetString("administrator"); administratorFlag != "" {
		if administrator, err = types.ParseAddress(administratorFlag); err != nil {
			return genesis.Params{}, errors.Wrap(err, "invalid administrator")
		}
	}

	backingFlag, _ := flags.GetString("backing")
	backing, err := helpers.ParseAmount(backingFlag)
	if err != nil {
		return genesis.Params{}, errors.Wrap(err, "invalid backing")
	}

	symbol, _ := flags.GetString("symbol")
	decimals, _ := flags.GetUint8("decimals")
	if units, _ := flags.GetBool("units"); units {
		backing = helpers.UnitsToBase(backing, decimals)
	}

	lockPeriod, _ := flags.GetDuration("lock-period")
	retrievalPeriod, _ := flags.GetDuration("retrieval-period")
	if err := types.CheckPeriods(lockPeriod, retrievalPeriod); err != nil {
		return genesis.Params{}, err
	}

	return genesis.Params{
		Deployer:        deployer,
		Administrator:   administrator,
		Symbol:          symbol,
		Decimals:        decimals,
		Backing:         backing,
		LockPeriod:      lockPeriod,
		RetrievalPeriod: retrievalPeriod,
	}, nil
}

func parseGenesisTime(cmd *cobra.Command) (time.Time, error) {
	value, _ := cmd.Flags().GetString("genesis-time")
	if value == "" {
		return time.Now().UTC(), nil
	}

	genesisTime, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid genesis time")
	}

	return genesisTime.UTC(), nil
}
