package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/core/grantchain"
	"github.com/pkg/errors"
)

type EventsResponse struct {
	Height uint32                 `json:"height"`
	Events []grantchain.EventInfo `json:"events"`
}

func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(mux.Vars(r)["height"], 10, 32)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, code.UnknownQuery, errors.Wrap(err, "wrong height"))
		return
	}

	eventsDB := s.blockchain.GetEventsDB()
	if eventsDB == nil {
		s.writeError(w, r, http.StatusNotFound, code.StateNotAvailable, errors.New("events are not stored in validator mode"))
		return
	}

	s.writeResult(w, r, EventsResponse{
		Height: uint32(height),
		Events: grantchain.EventInfosOf(eventsDB.LoadEvents(uint32(height))),
	})
}
