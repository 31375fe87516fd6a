package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/grantledger/grant-node/core/events"
	"github.com/grantledger/grant-node/core/state"
	"github.com/grantledger/grant-node/core/statistics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tendermint/tendermint/libs/log"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

const requestIDHeader = "X-Request-Id"

// Blockchain is the read side of the node the API serves.
type Blockchain interface {
	CurrentState() *state.CheckState
	GetStateForHeight(height uint64) (*state.CheckState, error)
	GetEventsDB() events.IEventsDB
	Height() uint64
	StatisticData() *statistics.Data
}

// Client reaches the consensus engine.
type Client interface {
	Status(ctx context.Context) (*ctypes.ResultStatus, error)
	BroadcastTxSync(ctx context.Context, tx tmtypes.Tx) (*ctypes.ResultBroadcastTx, error)
}

type Response struct {
	Code   uint32      `json:"code"`
	Result interface{} `json:"result,omitempty"`
	Log    string      `json:"log,omitempty"`
}

type Server struct {
	blockchain     Blockchain
	client         Client
	logger         log.Logger
	allowedOrigins []string
	gatherer       prometheus.Gatherer
}

func NewServer(blockchain Blockchain, client Client, logger log.Logger, allowedOrigins []string, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Server{
		blockchain:     blockchain,
		client:         client,
		logger:         logger.With("module", "api"),
		allowedOrigins: allowedOrigins,
		gatherer:       gatherer,
	}
}

// Handler returns the router wrapped with the CORS, request id and logging middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/api/status", s.Status).Methods("GET")
	router.HandleFunc("/api/ledger", s.Ledger).Methods("GET")
	router.HandleFunc("/api/grant/{address}", s.Grant).Methods("GET")
	router.HandleFunc("/api/balance/{address}", s.Balance).Methods("GET")
	router.HandleFunc("/api/account/{address}", s.Account).Methods("GET")
	router.HandleFunc("/api/events/{height}", s.Events).Methods("GET")
	router.HandleFunc("/api/send_transaction", s.SendTransaction).Methods("POST")
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	router.Use(s.timing)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"POST", "GET"},
		AllowCredentials: true,
	})

	return handlers.RecoveryHandler()(requestID(c.Handler(router)))
}

// Run serves the API on listenAddr (tcp://host:port) until ctx is done.
func (s *Server) Run(ctx context.Context, listenAddr string) error {
	addr, err := url.Parse(listenAddr)
	if err != nil {
		return errors.Wrap(err, "failed to parse API address")
	}

	server := &http.Server{
		Addr:              addr.Host,
		Handler:           handlers.CombinedLoggingHandler(os.Stdout, s.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr.Host)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}
		s.blockchain.StatisticData().SetApiTime(time.Since(start), path)
	})
}

// GetStateForRequest returns the state at the height query parameter, current when absent.
func (s *Server) GetStateForRequest(r *http.Request) (*state.CheckState, error) {
	height := uint64(0)
	if raw := r.URL.Query().Get("height"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "wrong height %q", raw)
		}
		height = parsed
	}

	return s.blockchain.GetStateForHeight(height)
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, status int, response Response) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to write response", "path", r.URL.Path, "request_id", w.Header().Get(requestIDHeader), "err", err)
	}
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result interface{}) {
	s.writeResponse(w, r, http.StatusOK, Response{Result: result})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, responseCode uint32, err error) {
	s.writeResponse(w, r, status, Response{Code: responseCode, Log: err.Error()})
}
