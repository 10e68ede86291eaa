package llm

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/seekerror/logw"
)

// ExchangeLog appends one JSON line per completed (or failed) chat exchange
// to a fixed path. A single instance is shared across Clients so appends
// serialize on a process-local mutex in addition to the filesystem's own
// append guarantee.
type ExchangeLog struct {
	mu   sync.Mutex
	path string
}

// NewExchangeLog returns a logger appending to path, creating it if absent.
func NewExchangeLog(path string) *ExchangeLog {
	return &ExchangeLog{path: path}
}

type exchangeRecord struct {
	Timestamp time.Time         `json:"timestamp"`
	Model     string            `json:"model"`
	Endpoint  string            `json:"endpoint"`
	Messages  []Message         `json:"messages"`
	Response  *exchangeResponse `json:"response,omitempty"`
	Error     *exchangeError    `json:"error,omitempty"`
}

type exchangeResponse struct {
	Content       string `json:"content"`
	Thinking      string `json:"thinking"`
	RawChunkCount int    `json:"rawChunkCount"`
	RawFirstChunk string `json:"rawFirstChunk"`
}

type exchangeError struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// LogSuccess appends a record of a completed exchange.
func (l *ExchangeLog) LogSuccess(ctx context.Context, endpoint string, req Request, res Result, rawChunkCount int, rawFirstChunk string) {
	l.append(ctx, exchangeRecord{
		Timestamp: time.Now(),
		Model:     req.Model,
		Endpoint:  endpoint,
		Messages:  req.Messages,
		Response: &exchangeResponse{
			Content:       res.Content,
			Thinking:      res.Reasoning,
			RawChunkCount: rawChunkCount,
			RawFirstChunk: rawFirstChunk,
		},
	})
}

// LogFailure appends a record of a failed exchange.
func (l *ExchangeLog) LogFailure(ctx context.Context, endpoint string, req Request, status int, body string) {
	l.append(ctx, exchangeRecord{
		Timestamp: time.Now(),
		Model:     req.Model,
		Endpoint:  endpoint,
		Messages:  req.Messages,
		Error: &exchangeError{
			Status: status,
			Body:   body,
		},
	})
}

func (l *ExchangeLog) append(ctx context.Context, rec exchangeRecord) {
	line, err := json.Marshal(rec)
	if err != nil {
		logw.Errorf(ctx, "llm: failed to encode exchange log entry: %v", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logw.Errorf(ctx, "llm: failed to open exchange log %v: %v", l.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		logw.Errorf(ctx, "llm: failed to append exchange log entry: %v", err)
	}
}
