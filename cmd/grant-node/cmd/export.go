package cmd

import (
	"fmt"
	"time"

	"github.com/grantledger/grant-node/cmd/utils"
	"github.com/grantledger/grant-node/core/appdb"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/genesis"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmtypes "github.com/tendermint/tendermint/types"
	db "github.com/tendermint/tm-db"
)

var ExportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger state at a height as a new genesis",
	RunE:  export,
}

func init() {
	ExportCommand.Flags().Uint64("height", 0, "height to export, the last committed height when 0")
	ExportCommand.Flags().String("chain-id", "", "chain id of the new genesis, the current one when empty")
	ExportCommand.Flags().String("genesis-time", "", "genesis time in RFC3339, now when empty")
	ExportCommand.Flags().String("out", "", "output file, stdout when empty")
	ExportCommand.Flags().Bool("indent", false, "indent the output")
}

func export(cmd *cobra.Command, args []string) error {
	height, _ := cmd.Flags().GetUint64("height")
	chainID, _ := cmd.Flags().GetString("chain-id")
	out, _ := cmd.Flags().GetString("out")
	indent, _ := cmd.Flags().GetBool("indent")

	genesisTime, err := parseGenesisTime(cmd)
	if err != nil {
		return err
	}

	current, err := tmtypes.GenesisDocFromFile(cfg.GenesisFile())
	if err != nil {
		return errors.Wrap(err, "failed to load current genesis")
	}

	storages := utils.NewStorage(utils.GetGrantHome(), cfg.DBBackend)
	defer storages.Close()

	stateDB, err := storages.InitStateDB()
	if err != nil {
		return err
	}

	if height == 0 {
		applicationDB := appdb.NewAppDB(storages.GetGrantHome(), cfg)
		height = applicationDB.GetLastHeight()
		if err := applicationDB.Close(); err != nil {
			return err
		}
	}

	doc, err := exportGenesis(stateDB, height, current, chainID, genesisTime)
	if err != nil {
		return err
	}

	if out != "" {
		if err := doc.SaveAs(out); err != nil {
			return errors.Wrap(err, "failed to save genesis")
		}
		fmt.Printf("Height %d exported to %s\n", height, out)
		return nil
	}

	var jsonBytes []byte
	if indent {
		jsonBytes, err = tmjson.MarshalIndent(doc, "", "  ")
	} else {
		jsonBytes, err = tmjson.Marshal(doc)
	}
	if err != nil {
		return errors.Wrap(err, "cannot marshal genesis")
	}

	fmt.Println(string(jsonBytes))
	return nil
}

// exportGenesis builds a genesis continuing the chain after height with the
// validators and consensus params of current.
func exportGenesis(stateDB db.DB, height uint64, current *tmtypes.GenesisDoc, chainID string, genesisTime time.Time) (*tmtypes.GenesisDoc, error) {
	if height == 0 {
		return nil, errors.New("nothing to export, no committed blocks")
	}

	checkState, err := state.NewCheckStateAtHeight(height, stateDB)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load state at height %d", height)
	}

	appState := checkState.Export()
	if err := appState.Verify(); err != nil {
		return nil, errors.Wrap(err, "exported state is invalid")
	}

	if chainID == "" {
		chainID = current.ChainID
	}

	doc, err := genesis.NewGenesisDoc(chainID, genesisTime, appState, current.Validators...)
	if err != nil {
		return nil, err
	}

	doc.InitialHeight = int64(height) + 1
	doc.ConsensusParams = current.ConsensusParams

	return doc, nil
}
