package grantchain

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/grant"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/types"
	"github.com/grantledger/grant-node/helpers"
	"github.com/pkg/errors"
	abciTypes "github.com/tendermint/tendermint/abci/types"
)

// Query paths
const (
	QueryLedger  = "ledger"
	QueryGrant   = "grant"
	QueryBalance = "balance"
	QueryToken   = "token"
	QueryEvents  = "events"
)

// LedgerInfo is the public view of the ledger parameters and totals.
type LedgerInfo struct {
	Name                string        `json:"name"`
	Symbol              string        `json:"symbol"`
	Decimals            uint8         `json:"decimals"`
	Administrator       types.Address `json:"administrator"`
	Deployer            types.Address `json:"deployer"`
	Account             types.Address `json:"account"`
	CreationTime        time.Time     `json:"creation_time"`
	ClaimUnlockTime     time.Time     `json:"claim_unlock_time"`
	RetrievalUnlockTime time.Time     `json:"retrieval_unlock_time"`
	LockPeriod          string        `json:"lock_period"`
	RetrievalPeriod     string        `json:"retrieval_period"`
	DistributionActive  bool          `json:"distribution_active"`
	LockedBalance       string        `json:"locked_balance"`
	Backing             string        `json:"backing"`
	Available           string        `json:"available"`
	LockedDisplay       string        `json:"locked_display"`
	BackingDisplay      string        `json:"backing_display"`
	AvailableDisplay    string        `json:"available_display"`
	Grants              int           `json:"grants"`
}

type GrantInfo struct {
	Address      types.Address `json:"address"`
	Entitlement  string        `json:"entitlement"`
	Allocated    string        `json:"allocated"`
	ClaimedFully bool          `json:"claimed_fully"`
}

// BalanceInfo is an entitlement as displayed by the token facade.
type BalanceInfo struct {
	Address types.Address `json:"address"`
	Symbol  string        `json:"symbol"`
	Balance string        `json:"balance"`
	Display string        `json:"display"`
}

// AccountInfo is an account of the underlying token.
type AccountInfo struct {
	Address types.Address `json:"address"`
	Symbol  string        `json:"symbol"`
	Balance string        `json:"balance"`
	Nonce   uint64        `json:"nonce"`
}

type EventInfo struct {
	Type  string       `json:"type"`
	Value events.Event `json:"value"`
}

var errNotDeployed = errors.New("ledger is not deployed")

// LedgerInfoOf builds the ledger view of a state.
func LedgerInfoOf(cState *state.CheckState) (*LedgerInfo, error) {
	app := cState.App()
	if !app.Exists() {
		return nil, errNotDeployed
	}

	token := cState.Token()
	locked := app.LockedBalance()
	backing := token.BalanceOf(app.Account())
	available := big.NewInt(0).Sub(backing, locked)
	if available.Sign() == -1 {
		available.SetInt64(0)
	}

	symbol, decimals := grant.DisplaySymbol(token.Symbol()), token.Decimals()
	return &LedgerInfo{
		Name:                symbol,
		Symbol:              symbol,
		Decimals:            decimals,
		Administrator:       app.Administrator(),
		Deployer:            app.Deployer(),
		Account:             app.Account(),
		CreationTime:        app.CreationTime(),
		ClaimUnlockTime:     app.ClaimUnlockTime(),
		RetrievalUnlockTime: app.RetrievalUnlockTime(),
		LockPeriod:          app.LockPeriod().String(),
		RetrievalPeriod:     app.RetrievalPeriod().String(),
		DistributionActive:  app.IsDistributionActive(),
		LockedBalance:       locked.String(),
		Backing:             backing.String(),
		Available:           available.String(),
		LockedDisplay:       helpers.FormatUnits(locked, decimals),
		BackingDisplay:      helpers.FormatUnits(backing, decimals),
		AvailableDisplay:    helpers.FormatUnits(available, decimals),
		Grants:              int(app.GrantsCount()),
	}, nil
}

func GrantInfoOf(cState *state.CheckState, address types.Address) *GrantInfo {
	grants := cState.Grants()
	return &GrantInfo{
		Address:      address,
		Entitlement:  grants.EntitlementOf(address).String(),
		Allocated:    grants.AllocatedOf(address).String(),
		ClaimedFully: grants.IsClaimedFully(address),
	}
}

func BalanceInfoOf(cState *state.CheckState, address types.Address) *BalanceInfo {
	token := cState.Token()
	entitlement := cState.Grants().EntitlementOf(address)
	return &BalanceInfo{
		Address: address,
		Symbol:  grant.DisplaySymbol(token.Symbol()),
		Balance: entitlement.String(),
		Display: helpers.FormatUnits(entitlement, token.Decimals()),
	}
}

func AccountInfoOf(cState *state.CheckState, address types.Address) *AccountInfo {
	token := cState.Token()
	return &AccountInfo{
		Address: address,
		Symbol:  token.Symbol(),
		Balance: token.BalanceOf(address).String(),
		Nonce:   token.GetNonce(address),
	}
}

// EventInfosOf tags every event with its type name.
func EventInfosOf(list events.Events) []EventInfo {
	infos := make([]EventInfo, 0, len(list))
	for _, event := range list {
		infos = append(infos, EventInfo{Type: event.Type(), Value: event})
	}
	return infos
}

// Query answers the read paths ledger, grant/<address>, balance/<address>,
// token/<address> and events/<height>. A non-zero request height selects a
// committed state.
func (blockchain *Blockchain) Query(req abciTypes.RequestQuery) abciTypes.ResponseQuery {
	path := strings.Split(strings.Trim(req.Path, "/"), "/")

	if path[0] == QueryEvents {
		return blockchain.queryEvents(path)
	}

	cState, err := blockchain.GetStateForHeight(uint64(req.Height))
	if err != nil {
		return queryError(code.StateNotAvailable, err)
	}

	var result interface{}
	switch path[0] {
	case QueryLedger:
		info, err := LedgerInfoOf(cState)
		if err != nil {
			return queryError(code.LedgerNotDeployed, err)
		}
		result = info
	case QueryGrant, QueryBalance, QueryToken:
		if len(path) != 2 {
			return queryError(code.UnknownQuery, errors.Errorf("%s query expects an address", path[0]))
		}
		address, err := types.ParseAddress(path[1])
		if err != nil {
			return queryError(code.InvalidAddress, err)
		}
		switch path[0] {
		case QueryGrant:
			result = GrantInfoOf(cState, address)
		case QueryBalance:
			result = BalanceInfoOf(cState, address)
		default:
			result = AccountInfoOf(cState, address)
		}
	default:
		return queryError(code.UnknownQuery, errors.Errorf("unknown query path %q", req.Path))
	}

	return queryResult(result, int64(blockchain.Height()))
}

func (blockchain *Blockchain) queryEvents(path []string) abciTypes.ResponseQuery {
	if len(path) != 2 {
		return queryError(code.UnknownQuery, errors.New("events query expects a height"))
	}
	height, err := strconv.ParseUint(path[1], 10, 32)
	if err != nil {
		return queryError(code.UnknownQuery, errors.Wrap(err, "events height"))
	}
	if blockchain.eventsDB == nil {
		return queryError(code.StateNotAvailable, errors.New("events are not stored in validator mode"))
	}

	return queryResult(EventInfosOf(blockchain.eventsDB.LoadEvents(uint32(height))), int64(height))
}

func queryResult(result interface{}, height int64) abciTypes.ResponseQuery {
	value, err := json.Marshal(result)
	if err != nil {
		return queryError(code.Unknown, err)
	}

	return abciTypes.ResponseQuery{
		Code:   code.OK,
		Value:  value,
		Height: height,
	}
}

func queryError(responseCode uint32, err error) abciTypes.ResponseQuery {
	return abciTypes.ResponseQuery{
		Code: responseCode,
		Log:  err.Error(),
	}
}
