package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeSSE frames one event per the text/event-stream wire format: an
// "event:" line naming kind and a single "data:" line carrying the
// JSON-encoded payload, terminated by a blank line.
func writeSSE(w http.ResponseWriter, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("httpapi: encode sse payload: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, data)
	return err
}

func tokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("token")
}
