// Command arena runs the chess arena HTTP server: a session registry of
// orchestrated LLM-vs-LLM and LLM-vs-human games, each
// broadcasting its turn-by-turn event stream over SSE.
package main

import (
	"context"
	"net/http"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/config"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/httpapi"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/registry"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logw.Exitf(ctx, "failed to load configuration: %v", err)
	}

	reg := registry.New()
	limiter := llm.NewRateLimiter(llm.DefaultInterval)
	exchangeLog := llm.NewExchangeLog(cfg.LogPath)

	reaperCtx, cancelReaper := context.WithCancel(ctx)
	defer cancelReaper()
	go reg.RunReaper(reaperCtx)

	srv := httpapi.NewServer(cfg, reg, limiter, exchangeLog)

	addr := ":" + cfg.Port
	logw.Infof(ctx, "arena %v listening on %v", version, addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logw.Exitf(ctx, "server exited: %v", err)
	}
}
