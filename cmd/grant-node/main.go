package main

import (
	"context"
	"fmt"
	"os"

	"github.com/grantledger/grant-node/cmd/grant-node/cmd"
	"github.com/grantledger/grant-node/cmd/utils"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.PersistentFlags().StringVar(&utils.GrantHome, "home-dir", "", "base dir (default is $HOME/.grant-node)")

	rootCmd.AddCommand(
		cmd.InitCommand,
		cmd.StartNode,
		cmd.ExportCommand,
		cmd.TxCommand,
		cmd.QueryCommand,
		cmd.GenKey,
		cmd.ShowValidator,
		cmd.Version)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
