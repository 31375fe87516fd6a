package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grantledger/grant-node/core/code"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
)

var QueryCommand = &cobra.Command{
	Use:   "query <path>",
	Short: "Query the ledger, e.g. ledger, grant/<address>, balance/<address>, token/<address>, events/<height>",
	Args:  cobra.ExactArgs(1),
	RunE:  query,
}

func init() {
	QueryCommand.Flags().Int64("height", 0, "state height, the latest when 0")
	QueryCommand.Flags().String("node", "", "RPC address of the node, the local one when empty")
}

func query(cmd *cobra.Command, args []string) error {
	height, _ := cmd.Flags().GetInt64("height")

	client, err := rpcClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	result, err := client.ABCIQueryWithOptions(ctx, strings.Trim(args[0], "/"), nil, rpcclient.ABCIQueryOptions{Height: height})
	if err != nil {
		return errors.Wrap(err, "query failed")
	}

	if result.Response.Code != code.OK {
		return errors.Errorf("query failed with code %d: %s", result.Response.Code, result.Response.Log)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, result.Response.Value, "", "  "); err != nil {
		return errors.Wrap(err, "cannot format result")
	}

	fmt.Println(out.String())
	return nil
}
