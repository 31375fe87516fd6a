package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/grantchain"
	"github.com/grantledger/grant-node/core/transaction"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/helpers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	rpchttp "github.com/tendermint/tendermint/rpc/client/http"
)

const requestTimeout = 30 * time.Second

var TxCommand = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast ledger transactions",
}

func init() {
	TxCommand.PersistentFlags().String("key", "", "file with the hex encoded sender key (required)")
	TxCommand.PersistentFlags().Uint64("nonce", 0, "sender nonce, fetched from the node when 0")
	TxCommand.PersistentFlags().String("chain-id", "", "chain id to sign for, fetched from the node when empty")
	TxCommand.PersistentFlags().String("node", "", "RPC address of the node, the local one when empty")
	TxCommand.PersistentFlags().Bool("units", false, "read amounts in whole token units instead of base units")

	TxCommand.AddCommand(
		txCommand("allocate <recipient> <amount>", "Allocate an entitlement to a beneficiary", 2, allocateData),
		txCommand("claim <amount>", "Claim part of the sender's entitlement", 1, claimData),
		txCommand("claim-all", "Claim the whole remaining entitlement", 0, claimAllData),
		txCommand("transfer <to> <amount>", "Claim through the legacy transfer entry point", 2, transferData),
		txCommand("pause", "Pause the distribution", 0, pauseData),
		txCommand("resume", "Resume the distribution", 0, resumeData),
		txCommand("retrieve", "Retrieve the backing surplus to the administrator", 0, retrieveData),
	)
}

type amountFunc func(value string) (string, error)

func txCommand(use, short string, argsCount int, build func(args []string, amount amountFunc) (transaction.Data, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(argsCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rpcClient(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			amount := amountFunc(baseAmount)
			if units, _ := cmd.Flags().GetBool("units"); units {
				decimals, err := ledgerDecimals(ctx, client)
				if err != nil {
					return err
				}
				amount = unitsAmount(decimals)
			}

			data, err := build(args, amount)
			if err != nil {
				return err
			}
			return broadcast(ctx, cmd, client, data)
		},
	}
}

func baseAmount(value string) (string, error) {
	amount, err := helpers.ParseAmount(value)
	if err != nil {
		return "", err
	}
	return amount.String(), nil
}

// unitsAmount reads amounts in whole token units.
func unitsAmount(decimals uint8) amountFunc {
	return func(value string) (string, error) {
		amount, err := helpers.ParseAmount(value)
		if err != nil {
			return "", err
		}
		return helpers.UnitsToBase(amount, decimals).String(), nil
	}
}

func allocateData(args []string, amount amountFunc) (transaction.Data, error) {
	recipient, err := types.ParseAddress(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid recipient")
	}
	value, err := amount(args[1])
	if err != nil {
		return nil, err
	}
	return &transaction.AllocateData{Recipient: recipient, Value: value}, nil
}

func claimData(args []string, amount amountFunc) (transaction.Data, error) {
	value, err := amount(args[0])
	if err != nil {
		return nil, err
	}
	return &transaction.ClaimData{Value: value}, nil
}

func claimAllData([]string, amountFunc) (transaction.Data, error) {
	return &transaction.ClaimAllData{}, nil
}

func transferData(args []string, amount amountFunc) (transaction.Data, error) {
	to, err := types.ParseAddress(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid destination")
	}
	value, err := amount(args[1])
	if err != nil {
		return nil, err
	}
	return &transaction.TransferData{To: to, Value: value}, nil
}

func pauseData([]string, amountFunc) (transaction.Data, error) {
	return &transaction.PauseData{}, nil
}

func resumeData([]string, amountFunc) (transaction.Data, error) {
	return &transaction.ResumeData{}, nil
}

func retrieveData([]string, amountFunc) (transaction.Data, error) {
	return &transaction.RetrieveData{}, nil
}

// signTx returns the encoded transaction signed by key for the chain chainID.
func signTx(key *btcec.PrivateKey, chainID string, nonce uint64, data transaction.Data) ([]byte, error) {
	tx, err := transaction.NewTx(chainID, nonce, data)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(key); err != nil {
		return nil, err
	}
	return tx.Serialize()
}

func rpcClient(cmd *cobra.Command) (*rpchttp.HTTP, error) {
	addr, _ := cmd.Flags().GetString("node")
	if addr == "" {
		addr = cfg.RPC.ListenAddress
	}

	client, err := rpchttp.New(addr, "/websocket")
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %s", addr)
	}
	return client, nil
}

func broadcast(ctx context.Context, cmd *cobra.Command, client *rpchttp.HTTP, data transaction.Data) error {
	keyFile, _ := cmd.Flags().GetString("key")
	if keyFile == "" {
		return errors.New("--key is required")
	}

	key, err := LoadKey(keyFile)
	if err != nil {
		return err
	}

	nonce, _ := cmd.Flags().GetUint64("nonce")
	if nonce == 0 {
		if nonce, err = nextNonce(ctx, client, transaction.PubKeyAddress(key)); err != nil {
			return err
		}
	}

	chainID, _ := cmd.Flags().GetString("chain-id")
	if chainID == "" {
		if chainID, err = networkID(ctx, client); err != nil {
			return err
		}
	}

	rawTx, err := signTx(key, chainID, nonce, data)
	if err != nil {
		return err
	}

	result, err := client.BroadcastTxSync(ctx, rawTx)
	if err != nil {
		return errors.Wrap(err, "broadcast failed")
	}

	if result.Code != code.OK {
		return errors.Errorf("transaction rejected with code %d: %s", result.Code, result.Log)
	}

	fmt.Printf("Transaction %s accepted, hash 0x%X\n", data.TxType(), result.Hash)
	return nil
}

func nextNonce(ctx context.Context, client rpcclient.ABCIClient, address types.Address) (uint64, error) {
	result, err := client.ABCIQuery(ctx, grantchain.QueryToken+"/"+address.String(), nil)
	if err != nil {
		return 0, errors.Wrap(err, "cannot query nonce")
	}
	if result.Response.Code != code.OK {
		return 0, errors.Errorf("nonce query failed with code %d: %s", result.Response.Code, result.Response.Log)
	}

	var account grantchain.AccountInfo
	if err := json.Unmarshal(result.Response.Value, &account); err != nil {
		return 0, errors.Wrap(err, "cannot decode account")
	}

	return account.Nonce + 1, nil
}

func ledgerDecimals(ctx context.Context, client rpcclient.ABCIClient) (uint8, error) {
	result, err := client.ABCIQuery(ctx, grantchain.QueryLedger, nil)
	if err != nil {
		return 0, errors.Wrap(err, "cannot query ledger")
	}
	if result.Response.Code != code.OK {
		return 0, errors.Errorf("ledger query failed with code %d: %s", result.Response.Code, result.Response.Log)
	}

	var ledger grantchain.LedgerInfo
	if err := json.Unmarshal(result.Response.Value, &ledger); err != nil {
		return 0, errors.Wrap(err, "cannot decode ledger")
	}

	return ledger.Decimals, nil
}

func networkID(ctx context.Context, client rpcclient.StatusClient) (string, error) {
	status, err := client.Status(ctx)
	if err != nil {
		return "", errors.Wrap(err, "cannot query chain id")
	}

	return status.NodeInfo.Network, nil
}
