package genesis

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/grantledger/grant-node/core/types"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/crypto"
	tmtypes "github.com/tendermint/tendermint/types"
)

const (
	DefaultChainID  = "grant-local-1"
	validatorPower  = 100000000
	DefaultDecimals = 18
)

// Params describe a fresh ledger deployment written into a new genesis.
type Params struct {
	Deployer        types.Address
	Administrator   types.Address
	Symbol          string
	Decimals        uint8
	Backing         *big.Int
	LockPeriod      time.Duration
	RetrievalPeriod time.Duration
}

// NewAppState returns the initial state of a deployed ledger whose account is
// funded with the backing.
func NewAppState(params Params) types.AppState {
	appState := types.AppState{
		Token: types.Token{
			Symbol:   params.Symbol,
			Decimals: params.Decimals,
		},
		Ledger: types.Ledger{
			Deployer:        params.Deployer,
			Administrator:   params.Administrator,
			Account:         types.CreateLedgerAddress(params.Deployer, 0),
			LockPeriod:      uint64(params.LockPeriod / time.Second),
			RetrievalPeriod: uint64(params.RetrievalPeriod / time.Second),
		},
	}

	if params.Backing != nil && params.Backing.Sign() == 1 {
		appState.Balances = append(appState.Balances, types.Balance{
			Address: appState.Ledger.Account,
			Value:   params.Backing.String(),
		})
	}

	return appState
}

// Validator returns a genesis validator for the consensus key.
func Validator(pubKey crypto.PubKey, name string) tmtypes.GenesisValidator {
	return tmtypes.GenesisValidator{
		Address: pubKey.Address(),
		PubKey:  pubKey,
		Power:   validatorPower,
		Name:    name,
	}
}

// NewGenesisDoc builds a validated genesis document carrying appState.
func NewGenesisDoc(chainID string, genesisTime time.Time, appState types.AppState, validators ...tmtypes.GenesisValidator) (*tmtypes.GenesisDoc, error) {
	if err := appState.Verify(); err != nil {
		return nil, errors.Wrap(err, "invalid app state")
	}

	appStateJSON, err := json.Marshal(appState)
	if err != nil {
		return nil, err
	}

	genesis := &tmtypes.GenesisDoc{
		GenesisTime: genesisTime,
		ChainID:     chainID,
		Validators:  validators,
		AppState:    appStateJSON,
	}

	if err := genesis.ValidateAndComplete(); err != nil {
		return nil, err
	}

	return genesis, nil
}

// AppStateFromGenesis decodes the ledger state carried by a genesis document.
func AppStateFromGenesis(genesis *tmtypes.GenesisDoc) (types.AppState, error) {
	return DecodeAppState(genesis.AppState)
}

func DecodeAppState(raw []byte) (types.AppState, error) {
	var appState types.AppState
	if err := json.Unmarshal(raw, &appState); err != nil {
		return types.AppState{}, errors.Wrap(err, "failed to decode app state")
	}

	return appState, nil
}
