// Package llm talks to an OpenAI-compatible streaming chat-completions
// endpoint: the kind exposed by both hosted LLM providers and local
// inference servers. It demultiplexes the streamed delta into reasoning and
// answer text, honors a process-wide rate limit, and logs every exchange.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seekerror/logw"
)

// Message is one entry of a chat-completion request's message array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the subset of the OpenAI chat-completions request body this
// package sends. Providers that accept extra fields silently ignore what
// they don't recognize; providers that need fewer fields ignore Stream.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// DefaultTemperature and DefaultMaxTokens are applied by NewRequest.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096
)

// NewRequest builds a Request with the system/user message pair and the
// standard temperature and token budget.
func NewRequest(model, system, user string) Request {
	return Request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Delta is a fragment of assistant output classified by the demultiplexer.
type Delta struct {
	Reasoning string // model's chain-of-thought, when separable from Content
	Content   string // the move/response text proper
}

// Usage mirrors the optional usage object some providers attach to the
// final chunk of a stream.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the fully assembled outcome of a streamed completion.
type Result struct {
	Reasoning string
	Content   string
	Usage     Usage
}

// chunk mirrors the OpenAI streaming chat-completion-chunk shape. Both
// "reasoning_content" and "thinking" are accepted since providers disagree
// on the field name for separated chain-of-thought.
type chunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
			Thinking         string `json:"thinking"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Client issues streaming chat-completion requests against a single
// OpenAI-compatible endpoint, subject to a shared RateLimiter.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	log        *ExchangeLog
	endpoint   string
	credential string
}

// NewClient returns a Client bound to endpoint (the full chat/completions
// URL), authenticating with credential as a bearer token. limiter is shared
// across every Client in the process so the 3-second spacing invariant
// holds process-wide, not per-endpoint. log may be nil to disable exchange
// logging.
func NewClient(endpoint, credential string, limiter *RateLimiter, log *ExchangeLog) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		limiter:    limiter,
		log:        log,
		endpoint:   endpoint,
		credential: credential,
	}
}

// OnDelta is invoked once per classified fragment as the stream arrives,
// enabling callers to forward live progress (e.g. over SSE) before the
// completion finishes. It may be nil.
type OnDelta func(Delta)

// Complete issues req against the endpoint and streams the response,
// invoking onDelta as fragments are classified. It blocks until the stream
// ends, the context is canceled, or a hard error occurs.
func (c *Client) Complete(ctx context.Context, req Request, onDelta OnDelta) (Result, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return Result{}, fmt.Errorf("llm: rate limit wait: %w", err)
	}

	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("llm: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.credential)
	}

	logw.Debugf(ctx, "llm: posting completion to %v (model=%v)", c.endpoint, req.Model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.log != nil {
			c.log.LogFailure(ctx, c.endpoint, req, resp.StatusCode, string(b))
		}
		return Result{}, fmt.Errorf("upstream returned %v: %s", resp.StatusCode, b)
	}

	result, rawChunkCount, rawFirstChunk, err := c.consume(ctx, resp.Body, onDelta)
	if c.log != nil {
		c.log.LogSuccess(ctx, c.endpoint, req, result, rawChunkCount, rawFirstChunk)
	}
	return result, err
}

func (c *Client) consume(ctx context.Context, r io.Reader, onDelta OnDelta) (Result, int, string, error) {
	var result Result
	var rawChunkCount int
	var rawFirstChunk string
	splitter := newTagSplitter()

	emit := func(d Delta) {
		result.Reasoning += d.Reasoning
		result.Content += d.Content
		if onDelta != nil && (d.Reasoning != "" || d.Content != "") {
			onDelta(d)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return result, rawChunkCount, rawFirstChunk, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		rawChunkCount++
		if rawChunkCount == 1 {
			rawFirstChunk = data
		}

		var ch chunk
		if err := json.Unmarshal([]byte(data), &ch); err != nil {
			logw.Warningf(ctx, "llm: skipping unparsable chunk: %v", err)
			continue
		}
		if ch.Usage != nil {
			result.Usage = *ch.Usage
		}
		if len(ch.Choices) == 0 {
			continue
		}

		d := ch.Choices[0].Delta
		if d.ReasoningContent != "" {
			emit(Delta{Reasoning: d.ReasoningContent})
		}
		if d.Thinking != "" {
			emit(Delta{Reasoning: d.Thinking})
		}
		if d.Content != "" {
			think, content := splitter.Feed(d.Content)
			emit(Delta{Reasoning: think, Content: content})
		}
	}
	if err := scanner.Err(); err != nil {
		return result, rawChunkCount, rawFirstChunk, fmt.Errorf("llm: reading stream: %w", err)
	}

	think, content := splitter.Flush()
	emit(Delta{Reasoning: think, Content: content})

	result.Content = strings.TrimSpace(result.Content)
	return result, rawChunkCount, rawFirstChunk, nil
}

// Model is one entry of an OpenAI-compatible /v1/models listing.
type Model struct {
	ID string `json:"id"`
}

type modelsResponse struct {
	Data []Model `json:"data"`
}

// ListModels issues a bearer-authenticated GET against modelsURL and decodes
// its {data: [{id}, ...]} body. modelsURL is used as given; it is not derived
// from the Client's chat-completions endpoint.
func (c *Client) ListModels(ctx context.Context, modelsURL string) ([]Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("llm: build models request: %w", err)
	}
	if c.credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: models request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("llm: models endpoint %v returned %v: %s", modelsURL, resp.Status, b)
	}

	var parsed modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("llm: decode models response: %w", err)
	}
	return parsed.Data, nil
}
