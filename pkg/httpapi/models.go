package httpapi

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
)

// deriveModelsURL strips trailing "/chat" and "/completions" path segments
// from a chat-completions endpoint URL and appends "/models", per §4.6.
func deriveModelsURL(apiURL string) string {
	trimmed := strings.TrimRight(apiURL, "/")
	for {
		switch {
		case strings.HasSuffix(trimmed, "/completions"):
			trimmed = strings.TrimSuffix(trimmed, "/completions")
		case strings.HasSuffix(trimmed, "/chat"):
			trimmed = strings.TrimSuffix(trimmed, "/chat")
		default:
			return trimmed + "/models"
		}
	}
}

// handleModels proxies a model listing for client-supplied credentials.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	var req modelsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.proxyModels(w, r, req.APIURL, req.APIKey)
}

// handleDefaultModels proxies a model listing using the server's default
// white-side credentials.
func (s *Server) handleDefaultModels(w http.ResponseWriter, r *http.Request) {
	s.proxyModels(w, r, s.cfg.DefaultWhiteEndpoint, s.cfg.DefaultWhiteCredential)
}

func (s *Server) proxyModels(w http.ResponseWriter, r *http.Request, apiURL, apiKey string) {
	if apiURL == "" || apiKey == "" {
		writeError(w, http.StatusBadRequest, "missing apiUrl or apiKey")
		return
	}

	modelsURL := deriveModelsURL(apiURL)
	client := llm.NewClient(apiURL, apiKey, nil, nil)

	models, err := s.models.Get(r.Context(), modelsURL, apiKey, func(ctx context.Context) ([]llm.Model, error) {
		return client.ListModels(ctx, modelsURL)
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	dtos := make([]modelDTO, len(models))
	for i, m := range models {
		dtos[i] = modelDTO{ID: m.ID, Name: m.ID}
	}
	writeJSON(w, http.StatusOK, modelsResponse{Models: dtos})
}
