package api

import (
	"net/http"
	"time"

	"github.com/grantledger/grant-node/core/code"
	"github.com/grantledger/grant-node/version"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
)

type StatusResponse struct {
	Version           string           `json:"version"`
	Network           string           `json:"network"`
	LatestBlockHash   tmbytes.HexBytes `json:"latest_block_hash"`
	LatestAppHash     tmbytes.HexBytes `json:"latest_app_hash"`
	LatestBlockHeight int64            `json:"latest_block_height"`
	LatestBlockTime   time.Time        `json:"latest_block_time"`
	CatchingUp        bool             `json:"catching_up"`
	LedgerHeight      uint64           `json:"ledger_height"`
	LastBlockDuration float64          `json:"last_block_duration"`
}

func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	result, err := s.client.Status(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, code.Unknown, err)
		return
	}

	s.writeResult(w, r, StatusResponse{
		Version:           version.Version,
		Network:           result.NodeInfo.Network,
		LatestBlockHash:   result.SyncInfo.LatestBlockHash,
		LatestAppHash:     result.SyncInfo.LatestAppHash,
		LatestBlockHeight: result.SyncInfo.LatestBlockHeight,
		LatestBlockTime:   result.SyncInfo.LatestBlockTime,
		CatchingUp:        result.SyncInfo.CatchingUp,
		LedgerHeight:      s.blockchain.Height(),
		LastBlockDuration: s.blockchain.StatisticData().GetLastBlockInfo().Duration,
	})
}
