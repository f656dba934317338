package centrality

import (
	"context"
	"sort"

	"github.com/papercomputeco/folio/pkg/graph"
)

// Closeness scores nodes with (n-1) / Σ neighbor weights, where n is the
// graph's node count. Isolated nodes score 0. For nodes with more than
// cfg.ClosenessNeighborCap neighbors only the lightest cap weights are
// summed and the sum is scaled by degree/cap. Graphs above
// cfg.ClosenessCutoff only score their highest-degree nodes.
func Closeness(ctx context.Context, g *graph.Graph, cfg Config) Stats {
	cfg = cfg.withDefaults()
	g.ResetCentrality()

	n := g.Len()
	stats := Stats{Nodes: n}
	if n == 0 {
		return stats
	}

	targets := g.Nodes()
	if n > cfg.ClosenessCutoff {
		targets = g.ByDegree()[:cfg.ClosenessCutoff]
	}
	stats.Selected = len(targets)

	until := newDeadline(cfg.Budget)
	weights := make([]float64, 0, cfg.ClosenessNeighborCap)

	for _, node := range targets {
		if ctx.Err() != nil || until.passed() {
			stats.Truncated = true
			break
		}

		neighbors := g.Neighbors(node)
		degree := len(neighbors)
		if degree == 0 {
			stats.Processed++
			continue
		}

		weights = weights[:0]
		for _, nb := range neighbors {
			w, _ := g.Weight(node, nb)
			weights = append(weights, w)
		}

		var total float64
		if degree > cfg.ClosenessNeighborCap {
			sort.Float64s(weights)
			for _, w := range weights[:cfg.ClosenessNeighborCap] {
				total += w
			}
			total *= float64(degree) / float64(cfg.ClosenessNeighborCap)
		} else {
			for _, w := range weights {
				total += w
			}
		}

		if total > 0 {
			node.Centrality = float64(n-1) / total
		}
		stats.Processed++
	}

	return stats
}
