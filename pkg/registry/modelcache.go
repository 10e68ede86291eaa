package registry

import (
	"context"
	"sync"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
)

// modelCacheTTL is the model-list cache lifetime (§3 "Model-list cache").
const modelCacheTTL = 5 * time.Minute

type modelCacheKey struct {
	url        string
	credential string
}

type modelCacheEntry struct {
	models    []llm.Model
	fetchedAt time.Time
}

// ModelCache memoizes ListModels calls per (models-URL, credential) pair
// for modelCacheTTL, so repeated `/api/models` requests for the same
// upstream don't each re-issue the bearer-authenticated GET.
type ModelCache struct {
	mu      sync.Mutex
	entries map[modelCacheKey]modelCacheEntry
}

// NewModelCache returns an empty ModelCache.
func NewModelCache() *ModelCache {
	return &ModelCache{entries: make(map[modelCacheKey]modelCacheEntry)}
}

// Get returns the cached model list for (url, credential) if still fresh;
// otherwise it calls fetch, caches the result on success, and returns it.
func (c *ModelCache) Get(ctx context.Context, url, credential string, fetch func(context.Context) ([]llm.Model, error)) ([]llm.Model, error) {
	key := modelCacheKey{url: url, credential: credential}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Since(e.fetchedAt) < modelCacheTTL {
		c.mu.Unlock()
		return e.models, nil
	}
	c.mu.Unlock()

	models, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = modelCacheEntry{models: models, fetchedAt: time.Now()}
	c.mu.Unlock()

	return models, nil
}
