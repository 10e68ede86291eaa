package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/game"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/registry"
)

func parseHumanSide(s string) game.HumanSide {
	switch strings.ToUpper(s) {
	case "WHITE":
		return game.HumanWhite
	case "BLACK":
		return game.HumanBlack
	default:
		return game.HumanNone
	}
}

// handleStart resolves per-side credentials (request override, else
// server default), checks the shared-credential cooldown, constructs a
// Game, registers it, and starts its turn loop as a background goroutine
// bound to the process lifetime — the Game itself owns shutdown via Stop.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if existing, ok := s.reg.Game(token); ok && !existing.Terminal() {
		writeError(w, http.StatusConflict, registry.ErrGameInProgress.Error())
		return
	}

	humanSide := parseHumanSide(req.HumanSide)
	bypass := s.cfg.BypassPassword != "" && req.Password == s.cfg.BypassPassword

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.cfg.MaxRetries
	}

	cfg := game.Config{
		HumanSide:  humanSide,
		MaxRetries: maxRetries,
		Emit:       s.reg.Emitter(token),
	}

	whiteShared := false
	if humanSide != game.HumanWhite {
		endpoint := firstNonEmpty(req.WhiteAPIURL, s.cfg.DefaultWhiteEndpoint)
		credential := firstNonEmpty(req.WhiteAPIKey, s.cfg.DefaultWhiteCredential)
		if endpoint == "" || credential == "" {
			writeError(w, http.StatusBadRequest, "missing credential for white")
			return
		}
		whiteShared = req.WhiteAPIURL == "" && req.WhiteAPIKey == ""
		cfg.WhiteModel = firstNonEmpty(req.WhiteModel, s.cfg.DefaultWhiteModel)
		cfg.WhiteClient = llm.NewClient(endpoint, credential, s.limiter, s.log)
	}

	blackShared := false
	if humanSide != game.HumanBlack {
		endpoint := firstNonEmpty(req.BlackAPIURL, s.cfg.DefaultBlackEndpoint)
		credential := firstNonEmpty(req.BlackAPIKey, s.cfg.DefaultBlackCredential)
		if endpoint == "" || credential == "" {
			writeError(w, http.StatusBadRequest, "missing credential for black")
			return
		}
		blackShared = req.BlackAPIURL == "" && req.BlackAPIKey == ""
		cfg.BlackModel = firstNonEmpty(req.BlackModel, s.cfg.DefaultBlackModel)
		cfg.BlackClient = llm.NewClient(endpoint, credential, s.limiter, s.log)
	}

	if remaining, blocked := s.reg.CheckCooldown(token, whiteShared || blackShared, bypass); blocked {
		writeJSON(w, http.StatusTooManyRequests, cooldownResponse{
			Error:       "shared credentials are cooling down",
			RemainingMS: remaining.Milliseconds(),
			Bypass:      false,
		})
		return
	}

	if req.BaseTime > 0 {
		cfg.Clock = game.ClockConfig{
			BaseTime:  time.Duration(req.BaseTime * float64(time.Minute)),
			Increment: time.Duration(req.Increment * float64(time.Second)),
		}
	}

	g := game.New(cfg)
	if err := s.reg.Put(token, g); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	go g.Run(context.Background())

	writeJSON(w, http.StatusOK, startResponse{
		Message: "game started",
		State:   g.Snapshot(),
		Bypass:  bypass,
	})
}
