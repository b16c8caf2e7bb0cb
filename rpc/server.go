package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/txpool"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/log"
)

// Config wires the Server to the rest of the running node.
type Config struct {
	ChainID   common.Felt
	Factory   state.ProviderFactory
	Chain     *state.ChainReader
	Pool      *txpool.Pool
	Validator *txpool.Validator

	// CORSOrigins lists allowed Origin headers; nil/empty allows "*",
	// matching a permissive dev-mode default (spec §6 "CORS" flag).
	CORSOrigins []string
}

// Server is the chi-routed JSON-RPC 2.0 + websocket-subscriptions HTTP
// server (spec §6 "EXTERNAL INTERFACES").
type Server struct {
	cfg         Config
	chainIDFelt common.Felt
	factory     state.ProviderFactory
	chain       *state.ChainReader
	pool        *txpool.Pool
	validator   *txpool.Validator

	methods map[string]methodHandler

	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*websocket.Conn]struct{}
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:         cfg,
		chainIDFelt: cfg.ChainID,
		factory:     cfg.Factory,
		chain:       cfg.Chain,
		pool:        cfg.Pool,
		validator:   cfg.Validator,
		subs:        make(map[*websocket.Conn]struct{}),
	}
	s.registerMethods()
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return s
}

func (s *Server) ctx() context.Context { return context.Background() }

// Router builds the chi mux: a single JSON-RPC POST endpoint plus a
// websocket subscription endpoint, wrapped in a permissive CORS policy
// (spec §6 node flags cover CORS origins).
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Throttling-Bypass"},
	})
	r.Use(corsMiddleware.Handler)

	r.Post("/", s.handleHTTP)
	r.Get("/ws", s.handleWebsocket)
	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, Response{JSONRPC: "2.0", Error: newError(codeParseError, "parse error")})
		return
	}
	writeJSON(w, s.dispatch(req))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleWebsocket upgrades and registers a connection for the
// subscription surface (spec §6's write/read split implies a push
// channel for new heads and pending transactions; this is the stub
// DESIGN.md records — message framing for individual subscription kinds
// is left to a future pass).
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.New(r.Context()).Warn("websocket upgrade failed", "err", err)
		return
	}
	s.mu.Lock()
	s.subs[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyNewHead broadcasts a newly sealed block's header to every
// subscribed websocket connection — the producer calls this after each
// sealed block (spec §5 "a new block is visible to readers atomically").
func (s *Server) NotifyNewHead(blockNumber uint64, blockHash common.Hash) {
	payload := struct {
		Method string `json:"method"`
		Params struct {
			BlockNumber uint64      `json:"block_number"`
			BlockHash   common.Hash `json:"block_hash"`
		} `json:"params"`
	}{Method: "starknet_subscriptionNewHeads"}
	payload.Params.BlockNumber = blockNumber
	payload.Params.BlockHash = blockHash

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.subs {
		if err := conn.WriteJSON(payload); err != nil {
			log.New(context.Background()).Warn("websocket notify failed", "err", err)
		}
	}
}
