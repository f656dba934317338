package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

// Suggestions returns the stored neighbors of the leading ids, excluding
// every id of ids and without repeats, capped at MaxSuggestions. When the
// suggestion budget runs out the neighbors gathered so far are returned.
// Ids without a document are skipped; a failing store is an error.
func (o *Orchestrator) Suggestions(ctx context.Context, ids []int64) ([]document.Document, error) {
	if len(ids) == 0 {
		return []document.Document{}, nil
	}

	seeds := ids
	if len(seeds) > o.config.SuggestionSeeds {
		seeds = seeds[:o.config.SuggestionSeeds]
	}

	// The aggregate only depends on seeds; ids is filtered out on every call.
	key := SuggestionsKey(seeds)
	var cached []document.Document
	if o.load(ctx, key, &cached) {
		return o.pick(cached, ids), nil
	}

	budget, cancel := context.WithTimeout(ctx, o.config.SuggestionBudget)
	defer cancel()

	var (
		mu    sync.Mutex
		lists = make([][]document.Document, len(seeds))
	)

	g, gctx := errgroup.WithContext(budget)
	for i, id := range seeds {
		g.Go(func() error {
			docs, err := o.neighborDocuments(gctx, id)
			if err != nil {
				if storage.IsNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			lists[i] = docs
			mu.Unlock()
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	partial := false
	select {
	case err := <-done:
		if err != nil {
			if budget.Err() == nil {
				return nil, err
			}
			partial = true
		}
	case <-budget.Done():
		partial = true
	}

	mu.Lock()
	merged := merge(lists, seeds)
	mu.Unlock()

	out := o.pick(merged, ids)
	if partial {
		o.logger.Warn("suggestion budget exceeded, returning partial suggestions",
			"seeds", seeds,
			"suggestions", len(out),
			"budget", o.config.SuggestionBudget,
		)
		return out, nil
	}

	o.store(ctx, key, merged, o.config.SuggestionTTL)
	return out, nil
}

// merge concatenates lists in seed order, dropping the seeds and repeats.
func merge(lists [][]document.Document, seeds []int64) []document.Document {
	seen := make(map[int64]struct{}, len(seeds))
	for _, id := range seeds {
		seen[id] = struct{}{}
	}

	out := make([]document.Document, 0)
	for _, list := range lists {
		for _, doc := range list {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}
	return out
}

// pick drops every id of ids from merged and caps it at MaxSuggestions.
func (o *Orchestrator) pick(merged []document.Document, ids []int64) []document.Document {
	exclude := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		exclude[id] = struct{}{}
	}

	out := make([]document.Document, 0, o.config.MaxSuggestions)
	for _, doc := range merged {
		if len(out) >= o.config.MaxSuggestions {
			break
		}
		if _, ok := exclude[doc.ID]; ok {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// neighborDocuments returns the neighbor documents of id, cached per id.
func (o *Orchestrator) neighborDocuments(ctx context.Context, id int64) ([]document.Document, error) {
	key := SingleSuggestionKey(id)

	var docs []document.Document
	if o.load(ctx, key, &docs) {
		return docs, nil
	}

	ids, err := o.neighbors.Neighbors(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err = o.documents.GetDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}

	o.store(ctx, key, docs, o.config.SuggestionTTL)
	return docs, nil
}
