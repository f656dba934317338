// Package orchestrator composes centrality ranking and neighbor
// suggestions behind TTL-scoped caches.
//
// A resolved response is cached under its full request signature. Ranked
// orders are cached separately so that result sets sharing their leading
// documents reuse a ranking, and medium-sized sets are ranked in the
// background by a worker pool while the request returns unsorted.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/folio/pkg/cache"
	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/worker"
)

// Config holds the orchestrator limits and TTLs.
type Config struct {
	// SyncRankLimit is the largest result set ranked on the request path.
	SyncRankLimit int

	// AsyncRankLimit is the largest result set ranked at all. Sets between
	// the two limits are ranked by the worker pool.
	AsyncRankLimit int

	// SuggestionSeeds is the number of leading ids suggestions are drawn from.
	SuggestionSeeds int

	// MaxSuggestions caps the suggestion list.
	MaxSuggestions int

	// SuggestionBudget bounds one suggestion assembly.
	SuggestionBudget time.Duration

	ResponseTTL        time.Duration
	PendingResponseTTL time.Duration
	CentralityTTL      time.Duration
	SuggestionTTL      time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		SyncRankLimit:      20,
		AsyncRankLimit:     50,
		SuggestionSeeds:    2,
		MaxSuggestions:     10,
		SuggestionBudget:   2 * time.Second,
		ResponseTTL:        time.Hour,
		PendingResponseTTL: 30 * time.Second,
		CentralityTTL:      24 * time.Hour,
		SuggestionTTL:      24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SyncRankLimit <= 0 {
		c.SyncRankLimit = d.SyncRankLimit
	}
	if c.AsyncRankLimit <= 0 {
		c.AsyncRankLimit = d.AsyncRankLimit
	}
	if c.SuggestionSeeds <= 0 {
		c.SuggestionSeeds = d.SuggestionSeeds
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = d.MaxSuggestions
	}
	if c.SuggestionBudget <= 0 {
		c.SuggestionBudget = d.SuggestionBudget
	}
	if c.ResponseTTL <= 0 {
		c.ResponseTTL = d.ResponseTTL
	}
	if c.PendingResponseTTL <= 0 {
		c.PendingResponseTTL = d.PendingResponseTTL
	}
	if c.CentralityTTL <= 0 {
		c.CentralityTTL = d.CentralityTTL
	}
	if c.SuggestionTTL <= 0 {
		c.SuggestionTTL = d.SuggestionTTL
	}
	return c
}

// Enqueuer accepts background recompute jobs. *worker.Pool implements it.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Dependencies are the collaborators of an Orchestrator. Cache defaults to
// cache.Nop. Without a Pool medium-sized result sets stay unsorted.
type Dependencies struct {
	Documents storage.DocumentStore
	Neighbors storage.NeighborStore
	Cache     cache.Cache
	Ranker    worker.Ranker
	Pool      Enqueuer
	Logger    *slog.Logger
}

// Request is one ranked lookup.
type Request struct {
	IDs   []int64
	Mode  centrality.Mode
	Order graph.Order
}

// Response is the assembled result of a Request.
type Response struct {
	Results     []document.Document `json:"results"`
	Suggestions []document.Document `json:"suggestions"`

	// Pending is set while a background ranking of Results is outstanding.
	Pending bool `json:"pending,omitempty"`
}

// Orchestrator resolves requests against the stores, the ranker and the cache.
type Orchestrator struct {
	config    Config
	documents storage.DocumentStore
	neighbors storage.NeighborStore
	cache     cache.Cache
	ranker    worker.Ranker
	pool      Enqueuer
	logger    *slog.Logger
}

// New creates an Orchestrator.
func New(config Config, deps Dependencies) (*Orchestrator, error) {
	if deps.Documents == nil {
		return nil, fmt.Errorf("orchestrator requires a document store")
	}
	if deps.Neighbors == nil {
		return nil, fmt.Errorf("orchestrator requires a neighbor store")
	}
	if deps.Ranker == nil {
		return nil, fmt.Errorf("orchestrator requires a ranker")
	}
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Orchestrator{
		config:    config.withDefaults(),
		documents: deps.Documents,
		neighbors: deps.Neighbors,
		cache:     deps.Cache,
		ranker:    deps.Ranker,
		pool:      deps.Pool,
		logger:    deps.Logger,
	}, nil
}

// Config returns the configuration in use.
func (o *Orchestrator) Config() Config {
	return o.config
}

// Resolve returns the documents of req.IDs ranked by req.Mode together with
// their suggestions. Unknown ids are skipped.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (*Response, error) {
	key := ResponseKey(req.Mode, req.Order, req.IDs)

	var cached Response
	if o.load(ctx, key, &cached) {
		o.logger.Debug("response cache hit", "key", key)
		return &cached, nil
	}

	docs, err := o.documents.GetDocuments(ctx, req.IDs)
	if err != nil {
		return nil, err
	}

	results, pending, err := o.rank(ctx, docs, req.Mode, req.Order)
	if err != nil {
		return nil, err
	}

	// The leading ranked books seed the suggestions.
	suggestions, err := o.Suggestions(ctx, document.IDs(results))
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Results:     results,
		Suggestions: suggestions,
		Pending:     pending,
	}

	ttl := o.config.ResponseTTL
	if pending {
		ttl = o.config.PendingResponseTTL
	}
	o.store(ctx, key, resp, ttl)

	return resp, nil
}

// rank orders docs by mode. pending reports that the ranking was handed to
// the worker pool and docs are returned unsorted.
func (o *Orchestrator) rank(ctx context.Context, docs []document.Document, mode centrality.Mode, order graph.Order) ([]document.Document, bool, error) {
	if mode == "" || mode == centrality.ModeNone || len(docs) <= 1 {
		return docs, false, nil
	}

	key := CentralityKey(mode, order, document.IDs(docs))

	var ranked []int64
	if o.load(ctx, key, &ranked) {
		o.logger.Debug("centrality cache hit", "key", key)
		return reorder(docs, ranked), false, nil
	}

	n := len(docs)
	switch {
	case n <= o.config.SyncRankLimit:
		sorted, _, err := o.ranker.Rank(ctx, docs, mode, order)
		if err != nil {
			return nil, false, err
		}
		o.store(ctx, key, document.IDs(sorted), o.config.CentralityTTL)
		return sorted, false, nil

	case n <= o.config.AsyncRankLimit:
		if o.pool == nil {
			return docs, false, nil
		}
		job := worker.NewJob(key, append([]document.Document(nil), docs...), mode, order, o.config.CentralityTTL)
		if !o.pool.Enqueue(job) {
			return docs, false, nil
		}
		return docs, true, nil

	default:
		o.logger.Debug("result set too large to rank",
			"mode", string(mode),
			"documents", n,
			"limit", o.config.AsyncRankLimit,
		)
		return docs, false, nil
	}
}

// reorder arranges docs by ranked. Documents missing from ranked keep
// their relative order after the ranked ones.
func reorder(docs []document.Document, ranked []int64) []document.Document {
	byID := document.Index(docs)
	out := make([]document.Document, 0, len(docs))
	placed := make(map[int64]struct{}, len(docs))

	for _, id := range ranked {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		out = append(out, doc)
	}
	for _, doc := range docs {
		if _, ok := placed[doc.ID]; !ok {
			placed[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}
	return out
}

// load decodes the cached value of key into v.
func (o *Orchestrator) load(ctx context.Context, key string, v any) bool {
	raw, ok := o.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		o.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

// store caches v under key. Cache failures are logged, never returned.
func (o *Orchestrator) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		o.logger.Warn("encoding cache entry failed", "key", key, "error", err)
		return
	}
	if err := o.cache.Set(ctx, key, raw, ttl); err != nil {
		o.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
