package centrality

import (
	"context"

	"github.com/papercomputeco/folio/pkg/graph"
)

// Betweenness scores every node of g. Graphs up to cfg.BetweennessCutoff
// nodes use Brandes' algorithm over unweighted edges; larger graphs use
// ApproxBetweenness. Previous scores are reset first.
func Betweenness(ctx context.Context, g *graph.Graph, cfg Config) Stats {
	cfg = cfg.withDefaults()
	if g.Len() > cfg.BetweennessCutoff {
		return ApproxBetweenness(g, cfg)
	}
	return exactBetweenness(ctx, g, cfg)
}

func exactBetweenness(ctx context.Context, g *graph.Graph, cfg Config) Stats {
	g.ResetCentrality()

	nodes := g.Nodes()
	n := len(nodes)
	stats := Stats{Nodes: n}
	if n == 0 {
		return stats
	}

	index := make(map[*graph.Node]int, n)
	for i, node := range nodes {
		index[node] = i
	}

	sources := selectSources(g, cfg.MaxSources)
	stats.Selected = len(sources)

	scores := make([]float64, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	stack := make([]int, 0, n)
	queue := make([]int, 0, n)

	until := newDeadline(cfg.Budget)

	for _, source := range sources {
		if ctx.Err() != nil || until.passed() {
			stats.Truncated = true
			break
		}

		s := index[source]
		for i := range n {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		stack = stack[:0]
		queue = queue[:0]

		sigma[s] = 1
		dist[s] = 0
		queue = append(queue, s)

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			stack = append(stack, v)

			for _, nb := range g.Neighbors(nodes[v]) {
				w := index[nb]
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}

		stats.Processed++
	}

	for i, node := range nodes {
		node.Centrality = scores[i]
	}

	return stats
}

// selectSources returns the non-isolated nodes, capped at the max highest
// degree ones.
func selectSources(g *graph.Graph, max int) []*graph.Node {
	var connected []*graph.Node
	for _, n := range g.Nodes() {
		if g.Degree(n) > 0 {
			connected = append(connected, n)
		}
	}
	if max <= 0 || len(connected) <= max {
		return connected
	}

	sources := make([]*graph.Node, 0, max)
	for _, n := range g.ByDegree() {
		if len(sources) == max {
			break
		}
		sources = append(sources, n)
	}
	return sources
}

// ApproxBetweenness scores only the cfg.SampleSize highest-degree nodes as
// degree + 0.5 × (number of second-hop paths reaching nodes that are not
// first-hop neighbors). Every other node scores 0.
func ApproxBetweenness(g *graph.Graph, cfg Config) Stats {
	cfg = cfg.withDefaults()
	g.ResetCentrality()

	sample := g.ByDegree()
	if len(sample) > cfg.SampleSize {
		sample = sample[:cfg.SampleSize]
	}

	stats := Stats{Nodes: g.Len(), Selected: len(sample), Approximate: true}

	for _, node := range sample {
		first := g.Neighbors(node)
		direct := make(map[*graph.Node]struct{}, len(first))
		for _, nb := range first {
			direct[nb] = struct{}{}
		}

		secondHop := 0
		for _, nb := range first {
			for _, far := range g.Neighbors(nb) {
				if far == node {
					continue
				}
				if _, ok := direct[far]; ok {
					continue
				}
				secondHop++
			}
		}

		node.Centrality = float64(len(first)) + 0.5*float64(secondHop)
		stats.Processed++
	}

	return stats
}
