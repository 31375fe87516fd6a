package cmd

import (
	"github.com/grantledger/grant-node/cmd/utils"
	"github.com/grantledger/grant-node/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:           "grant-node",
	Short:         "Time-locked token grant ledger node",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(utils.GetGrantHome())
		if err != nil {
			return err
		}

		cfg = loaded
		return nil
	},
}
