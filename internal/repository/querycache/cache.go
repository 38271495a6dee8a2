// Package querycache caches query outputs in a key-value store.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/db"
	"github.com/skillserve/skillapi/internal/domain/query"
	"github.com/skillserve/skillapi/internal/usecase/skill"
)

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRunner caches query outputs produced by the inner runner.
type CachedRunner struct {
	inner      skill.Runner
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ skill.Runner = (*CachedRunner)(nil)

// New creates a caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner skill.Runner,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRunner {
	return &CachedRunner{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Query returns a cached output or calls the inner runner. Cached entries
// are stored in record form and rebuilt through the validating
// constructors on the way out.
func (c *CachedRunner) Query(ctx context.Context, req query.Request) (query.Output, error) {
	key := c.cacheKey(req)

	if out, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return out, nil
	}

	c.incCache("miss")

	out, err := c.inner.Query(ctx, req)
	if err != nil {
		return query.Output{}, fmt.Errorf("run query: %w", err)
	}

	c.putToCache(ctx, key, &out)
	return out, nil
}

func (c *CachedRunner) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheRequest is the canonical key material. The user id is excluded:
// outputs depend on the query content only.
type cacheRequest struct {
	Query       string    `json:"query"`
	Skill       string    `json:"skill"`
	Choices     []string  `json:"choices,omitempty"`
	ContextKind string    `json:"context_kind"`
	Context     []string  `json:"context,omitempty"`
	ScoreKind   string    `json:"score_kind"`
	Scores      []float64 `json:"scores,omitempty"`
	SharedScore float64   `json:"shared_score"`
}

func (c *CachedRunner) cacheKey(req query.Request) string {
	material, _ := json.Marshal(cacheRequest{
		Query:       req.Query(),
		Skill:       string(req.Skill()),
		Choices:     req.Choices(),
		ContextKind: string(req.Context().Kind()),
		Context:     req.Context().Passages(),
		ScoreKind:   string(req.ContextScore().Kind()),
		Scores:      req.ContextScore().Values(),
		SharedScore: req.ContextScore().Shared(),
	})
	h := sha256.Sum256(material)
	return c.keyPrefix + "query_cache:" + hex.EncodeToString(h[:])
}

func (c *CachedRunner) getFromCache(ctx context.Context, key string) (query.Output, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached output", zap.String("key", key), zap.Error(err))
		}
		return query.Output{}, false
	}

	var rec query.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Warn("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		return query.Output{}, false
	}

	out, err := query.FromRecord(rec)
	if err != nil {
		c.logger.Warn("Invalid cache entry", zap.String("key", key), zap.Error(err))
		return query.Output{}, false
	}
	return out, true
}

func (c *CachedRunner) putToCache(ctx context.Context, key string, out *query.Output) {
	data, err := json.Marshal(out.Record())
	if err != nil {
		c.logger.Warn("Failed to encode output for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to store cached output", zap.String("key", key), zap.Error(err))
	}
}
