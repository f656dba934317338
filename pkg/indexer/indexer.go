// Package indexer runs the offline jobs that prepare a store for ranking:
// importing documents and keyword profiles, recomputing TF-IDF scores and
// rebuilding the Jaccard neighbor graph.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/papercomputeco/folio/pkg/catalog"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/eventstream/nop"
	"github.com/papercomputeco/folio/pkg/jaccard"
	"github.com/papercomputeco/folio/pkg/similarity"
	"github.com/papercomputeco/folio/pkg/storage"
)

// DefaultBatchSize is the number of documents written per TF-IDF batch.
const DefaultBatchSize = 1000

// Config configures an Indexer.
type Config struct {
	// Threshold and Workers configure the Jaccard builder.
	Threshold float64
	Workers   int

	// BatchSize is the number of documents per TF-IDF write.
	BatchSize int

	// MaxFeatures caps the TF-IDF vocabulary. Zero keeps every token.
	MaxFeatures int

	// Thresholds filter imported occurrence profiles. Defaults to
	// document.DefaultOccurrenceThresholds.
	Thresholds document.OccurrenceThresholds

	// Languages are the keyword languages processed. Defaults to
	// document.Languages.
	Languages []string

	// Publisher receives a GraphBuiltEvent per built language. Defaults to
	// a no-op publisher.
	Publisher eventstream.Publisher

	Logger *slog.Logger
}

// Indexer runs import and build jobs against one store.
type Indexer struct {
	store  storage.Driver
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Indexer.
func New(store storage.Driver, c Config) *Indexer {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Thresholds == nil {
		c.Thresholds = document.DefaultOccurrenceThresholds()
	}
	if len(c.Languages) == 0 {
		c.Languages = append([]string(nil), document.Languages...)
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return &Indexer{
		store:  store,
		config: c,
		logger: c.Logger,
		now:    time.Now,
	}
}

// ImportStats counts what an import stored.
type ImportStats struct {
	Documents int `json:"documents"`
	Profiles  int `json:"profiles"`

	// Skipped counts profiles of unknown documents, of documents outside
	// the keyword languages, or left empty by the occurrence thresholds.
	Skipped int `json:"skipped"`
}

// Seed stores docs, then imports keywords for them and any stored document.
func (ix *Indexer) Seed(ctx context.Context, docs []document.Document, keywords map[int64]document.OccurrenceProfile) (ImportStats, error) {
	if len(docs) > 0 {
		if err := ix.store.PutDocuments(ctx, docs); err != nil {
			return ImportStats{}, fmt.Errorf("storing documents: %w", err)
		}
	}

	stats, err := ix.ImportKeywords(ctx, keywords)
	stats.Documents = len(docs)
	return stats, err
}

// ImportKeywords files each profile under its document's primary language
// after dropping tokens below the occurrence thresholds.
func (ix *Indexer) ImportKeywords(ctx context.Context, keywords map[int64]document.OccurrenceProfile) (ImportStats, error) {
	var stats ImportStats
	if len(keywords) == 0 {
		return stats, nil
	}

	ids := make([]int64, 0, len(keywords))
	for id := range keywords {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs, err := ix.store.GetDocuments(ctx, ids)
	if err != nil {
		return stats, fmt.Errorf("loading documents: %w", err)
	}
	known := document.Index(docs)

	for _, id := range ids {
		doc, ok := known[id]
		lang := catalog.PrimaryLanguage(doc)
		if !ok || !ix.handles(lang) {
			stats.Skipped++
			continue
		}

		profile := document.FilterOccurrences(keywords[id], lang, ix.config.Thresholds)
		if len(profile) == 0 {
			stats.Skipped++
			continue
		}

		if err := ix.store.PutKeywords(ctx, lang, id, profile); err != nil {
			return stats, fmt.Errorf("storing keywords of %d: %w", id, err)
		}
		stats.Profiles++
	}

	ix.logger.Info("imported keywords", "profiles", stats.Profiles, "skipped", stats.Skipped)
	return stats, nil
}

// Reindex recomputes the TF-IDF scores of every document of lang and
// returns the number of documents scored.
func (ix *Indexer) Reindex(ctx context.Context, lang string) (int, error) {
	corpus, err := ix.store.OccurrenceProfiles(ctx, lang)
	if err != nil {
		return 0, fmt.Errorf("loading %s profiles: %w", lang, err)
	}
	if len(corpus) == 0 {
		return 0, nil
	}

	scores := similarity.ComputeTFIDF(corpus, ix.config.MaxFeatures)

	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for start := 0; start < len(ids); start += ix.config.BatchSize {
		end := min(start+ix.config.BatchSize, len(ids))
		batch := make(map[int64]document.TFIDFProfile, end-start)
		for _, id := range ids[start:end] {
			batch[id] = scores[id]
		}
		if err := ix.store.SetTFIDF(ctx, lang, batch); err != nil {
			return start, fmt.Errorf("storing %s scores: %w", lang, err)
		}
		ix.logger.Debug("stored tfidf batch", "language", lang, "from", start, "to", end)
	}

	ix.logger.Info("recomputed tfidf", "language", lang, "documents", len(ids))
	return len(ids), nil
}

// ReindexAll runs Reindex for every configured language.
func (ix *Indexer) ReindexAll(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(ix.config.Languages))
	for _, lang := range ix.config.Languages {
		n, err := ix.Reindex(ctx, lang)
		if err != nil {
			return out, err
		}
		out[lang] = n
	}
	return out, nil
}

// Build clears the stored neighbor graph and rebuilds it from the keyword
// profiles of every configured language. A GraphBuiltEvent is published
// per language; publish failures are logged and do not fail the build.
func (ix *Indexer) Build(ctx context.Context) ([]eventstream.GraphBuildMeta, error) {
	builder, err := jaccard.NewBuilder(jaccard.Config{
		Threshold: ix.config.Threshold,
		Workers:   ix.config.Workers,
		Logger:    ix.logger,
	}, ix.store)
	if err != nil {
		return nil, err
	}

	if err := ix.store.ClearNeighbors(ctx); err != nil {
		return nil, fmt.Errorf("clearing neighbors: %w", err)
	}

	threshold := ix.config.Threshold
	if threshold == 0 {
		threshold = jaccard.DefaultThreshold
	}

	metas := make([]eventstream.GraphBuildMeta, 0, len(ix.config.Languages))
	for _, lang := range ix.config.Languages {
		started := ix.now()

		profiles, err := ix.store.OccurrenceProfiles(ctx, lang)
		if err != nil {
			return metas, fmt.Errorf("loading %s profiles: %w", lang, err)
		}

		record, err := builder.Build(ctx, profiles)
		if err != nil {
			return metas, fmt.Errorf("building %s graph: %w", lang, err)
		}

		meta := eventstream.GraphBuildMeta{
			Language:   lang,
			Threshold:  threshold,
			Documents:  len(profiles),
			Edges:      record.EdgeCount(),
			StartedAt:  started.UTC(),
			DurationMs: ix.now().Sub(started).Milliseconds(),
		}
		metas = append(metas, meta)

		event := eventstream.NewGraphBuiltEvent(meta, ix.now())
		if err := ix.config.Publisher.PublishGraphBuilt(ctx, event); err != nil {
			ix.logger.Warn("failed to publish graph event",
				"language", lang,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}

	return metas, nil
}

// Languages returns the keyword languages processed, in order.
func (ix *Indexer) Languages() []string {
	return append([]string(nil), ix.config.Languages...)
}

func (ix *Indexer) handles(lang string) bool {
	for _, l := range ix.config.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
