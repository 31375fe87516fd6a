package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	"github.com/grantledger/grant-node/core/transaction"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/privval"
)

var GenKey = &cobra.Command{
	Use:   "gen-key <file>",
	Short: "Generate an account key and print its address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmos.FileExists(args[0]) {
			return errors.Errorf("key file %s already exists", args[0])
		}

		key, err := btcec.NewPrivateKey(btcec.S256())
		if err != nil {
			return err
		}
		if err := SaveKey(args[0], key); err != nil {
			return err
		}

		fmt.Println(transaction.PubKeyAddress(key).String())
		return nil
	},
}

var ShowValidator = &cobra.Command{
	Use:   "show-validator",
	Short: "Show this node's validator public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyFilePath := cfg.PrivValidatorKeyFile()
		if !tmos.FileExists(keyFilePath) {
			return errors.Errorf("private validator file %s does not exist", keyFilePath)
		}

		pv := privval.LoadFilePV(keyFilePath, cfg.PrivValidatorStateFile())
		pubKey, err := pv.GetPubKey()
		if err != nil {
			return err
		}

		fmt.Printf("%X\n", pubKey.Bytes())
		return nil
	},
}

// SaveKey writes the hex encoded private key readable by the owner only.
func SaveKey(path string, key *btcec.PrivateKey) error {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key.Serialize())+"\n"), 0600); err != nil {
		return errors.Wrap(err, "failed to write key")
	}
	return nil
}

func LoadKey(path string) (*btcec.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read key")
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(string(content)), "0x"))
	if err != nil || len(raw) != btcec.PrivKeyBytesLen {
		return nil, errors.Errorf("key file %s should hold %d hex encoded bytes", path, btcec.PrivKeyBytesLen)
	}

	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return key, nil
}
