package centrality

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
)

// Ranker orders result sets by centrality over their subject-overlap graph.
type Ranker struct {
	config Config
	logger *slog.Logger
}

// NewRanker creates a Ranker.
func NewRanker(config Config, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{
		config: config.withDefaults(),
		logger: logger,
	}
}

// Config returns the scorer configuration in use.
func (r *Ranker) Config() Config {
	return r.config
}

// Rank returns docs reordered by the centrality mode. ModeNone returns the
// input order. A truncated scoring run still yields a ranking; it is only
// logged.
func (r *Ranker) Rank(ctx context.Context, docs []document.Document, mode Mode, order graph.Order) ([]document.Document, Stats, error) {
	if len(docs) == 0 {
		return []document.Document{}, Stats{}, nil
	}

	var (
		g     *graph.Graph
		stats Stats
	)

	switch mode {
	case ModeNone, "":
		return docs, Stats{Nodes: len(docs)}, nil

	case ModeBetweenness:
		g = graph.FromSubjectOverlap(docs, false, graph.EdgeBudget(len(docs)))
		stats = Betweenness(ctx, g, r.config)

	case ModeCloseness:
		g = graph.FromSubjectOverlap(docs, true, graph.EdgeBudget(len(docs)))
		stats = Closeness(ctx, g, r.config)

	default:
		return nil, Stats{}, fmt.Errorf("unknown centrality mode: %q", mode)
	}

	if stats.Truncated {
		r.logger.Warn("centrality scoring truncated, using partial scores",
			"mode", string(mode),
			"nodes", stats.Nodes,
			"processed", stats.Processed,
			"selected", stats.Selected,
		)
	}

	g.SortByCentrality(order)

	r.logger.Debug("ranked result set",
		"mode", string(mode),
		"order", order.String(),
		"nodes", stats.Nodes,
		"edges", g.EdgeCount(),
		"approximate", stats.Approximate,
	)

	return g.Documents(), stats, nil
}
