package graph

import "github.com/papercomputeco/folio/pkg/document"

// EdgeBudget returns the maximum number of edges built for a result set of
// n documents. Larger sets get a smaller budget.
func EdgeBudget(n int) int {
	switch {
	case n <= 30:
		return 1000
	case n <= 50:
		return 750
	default:
		return 500
	}
}

// FromSubjectOverlap builds a graph over docs where two documents are
// connected when they share at least one subject. The edge weight is the
// number of shared subjects. Edge creation stops once maxEdges is reached;
// maxEdges <= 0 means no limit.
func FromSubjectOverlap(docs []document.Document, weighted bool, maxEdges int) *Graph {
	g := New(weighted)

	subjects := make([]map[int64]struct{}, len(docs))
	nodes := make([]*Node, len(docs))
	for i, d := range docs {
		nodes[i] = g.AddNode(d)
		set := make(map[int64]struct{}, len(d.Subjects))
		for _, s := range d.Subjects {
			set[s] = struct{}{}
		}
		subjects[i] = set
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if maxEdges > 0 && g.EdgeCount() >= maxEdges {
				return g
			}
			if nodes[i] == nodes[j] {
				continue
			}

			shared := 0
			for s := range subjects[i] {
				if _, ok := subjects[j][s]; ok {
					shared++
				}
			}
			if shared == 0 {
				continue
			}

			// Both nodes belong to g and differ, and shared > 0.
			_ = g.AddEdge(nodes[i], nodes[j], float64(shared))
		}
	}

	return g
}
