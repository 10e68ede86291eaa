// Package httpapi wires the session registry, configuration, and LLM client
// plumbing into the HTTP surface described in §4.6: token issuance, the SSE
// event stream, and the game-control and model-listing endpoints.
package httpapi

import (
	"net/http"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/config"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/registry"
	"github.com/gorilla/mux"
)

// Server holds the collaborators every handler needs. It carries no
// per-request state of its own; all session state lives in the Registry.
type Server struct {
	cfg     config.Config
	reg     *registry.Registry
	models  *registry.ModelCache
	limiter *llm.RateLimiter
	log     *llm.ExchangeLog
}

// NewServer returns a Server ready to build a Router.
func NewServer(cfg config.Config, reg *registry.Registry, limiter *llm.RateLimiter, log *llm.ExchangeLog) *Server {
	return &Server{
		cfg:     cfg,
		reg:     reg,
		models:  registry.NewModelCache(),
		limiter: limiter,
		log:     log,
	}
}

// Router builds the mux.Router carrying every endpoint in §4.6, named the
// way herohde-morlock's web routes are: one HandleFunc per concern, method
// restricted, no middleware beyond what net/http already gives us.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/token", s.handleToken).Methods(http.MethodPost)
	r.HandleFunc("/api/game/stream", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/api/game/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/game/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/game/move", s.handleMove).Methods(http.MethodPost)
	r.HandleFunc("/api/game/legal-moves", s.handleLegalMoves).Methods(http.MethodGet)
	r.HandleFunc("/api/game/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/api/game/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/api/models", s.handleModels).Methods(http.MethodPost)
	r.HandleFunc("/api/models/default", s.handleDefaultModels).Methods(http.MethodPost)

	return r
}
