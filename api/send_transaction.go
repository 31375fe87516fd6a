package api

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/grantledger/grant-node/core/code"
	"github.com/pkg/errors"
)

const maxRequestBody = 1 << 20

type SendTransactionRequest struct {
	Transaction string `json:"transaction"`
}

type SendTransactionResponse struct {
	Hash string `json:"hash"`
}

// SendTransaction submits a signed transaction to the mempool and returns its hash.
func (s *Server) SendTransaction(w http.ResponseWriter, r *http.Request) {
	var req SendTransactionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, code.DecodeError, errors.Wrap(err, "failed to decode request"))
		return
	}

	tx, err := hex.DecodeString(strings.TrimPrefix(req.Transaction, "0x"))
	if err != nil || len(tx) == 0 {
		s.writeError(w, r, http.StatusBadRequest, code.DecodeError, errors.New("transaction should be a non-empty hex string"))
		return
	}

	result, err := s.client.BroadcastTxSync(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, code.Unknown, err)
		return
	}

	if result.Code != code.OK {
		s.writeResponse(w, r, http.StatusBadRequest, Response{
			Code: result.Code,
			Log:  "Check tx error: " + result.Log,
		})
		return
	}

	s.writeResult(w, r, SendTransactionResponse{Hash: "0x" + strings.ToLower(result.Hash.String())})
}
