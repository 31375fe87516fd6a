package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/grantchain"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/types"
)

// Ledger returns the ledger parameters and totals.
func (s *Server) Ledger(w http.ResponseWriter, r *http.Request) {
	cState, err := s.GetStateForRequest(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, code.StateNotAvailable, err)
		return
	}

	info, err := grantchain.LedgerInfoOf(cState)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, code.LedgerNotDeployed, err)
		return
	}

	s.writeResult(w, r, info)
}

func (s *Server) Grant(w http.ResponseWriter, r *http.Request) {
	s.addressQuery(w, r, func(cState *state.CheckState, address types.Address) interface{} {
		return grantchain.GrantInfoOf(cState, address)
	})
}

// Balance returns the entitlement the way token wallets display it.
func (s *Server) Balance(w http.ResponseWriter, r *http.Request) {
	s.addressQuery(w, r, func(cState *state.CheckState, address types.Address) interface{} {
		return grantchain.BalanceInfoOf(cState, address)
	})
}

// Account returns the underlying token balance and nonce.
func (s *Server) Account(w http.ResponseWriter, r *http.Request) {
	s.addressQuery(w, r, func(cState *state.CheckState, address types.Address) interface{} {
		return grantchain.AccountInfoOf(cState, address)
	})
}

func (s *Server) addressQuery(w http.ResponseWriter, r *http.Request, view func(*state.CheckState, types.Address) interface{}) {
	address, err := types.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, code.InvalidAddress, err)
		return
	}

	cState, err := s.GetStateForRequest(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, code.StateNotAvailable, err)
		return
	}

	s.writeResult(w, r, view(cState, address))
}
