// Package graph provides the in-memory document graph used for centrality
// ranking. A Graph is built per query or batch and is never mutated while it
// is being read.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/papercomputeco/folio/pkg/document"
)

var (
	// ErrSelfLoop is returned when an edge would connect a node to itself.
	ErrSelfLoop = errors.New("self-loop edges are not allowed")

	// ErrInvalidWeight is returned for negative, NaN or infinite weights.
	ErrInvalidWeight = errors.New("edge weight must be finite and non-negative")

	// ErrForeignNode is returned when an edge references a node owned by
	// another graph.
	ErrForeignNode = errors.New("node does not belong to this graph")
)

// Order is the direction of a centrality sort.
type Order int

const (
	Descending Order = iota
	Ascending
)

func (o Order) String() string {
	if o == Ascending {
		return "ascending"
	}
	return "descending"
}

// ParseOrder parses "ascending"/"asc" and "descending"/"desc".
// An empty string yields Descending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "descending", "desc":
		return Descending, nil
	case "ascending", "asc":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("unknown order: %q", s)
	}
}

// Node wraps one document for the lifetime of its Graph.
type Node struct {
	Document document.Document

	// Centrality is the last score attached by a centrality scorer.
	Centrality float64

	graph     *Graph
	seq       int
	neighbors []*Node
	weights   map[*Node]float64
}

// ID returns the wrapped document id.
func (n *Node) ID() int64 {
	return n.Document.ID
}

// Graph is an undirected document graph, weighted or unweighted.
type Graph struct {
	weighted bool
	nodes    []*Node
	byID     map[int64]*Node
	edges    int
}

// New creates an empty graph.
func New(weighted bool) *Graph {
	return &Graph{
		weighted: weighted,
		byID:     make(map[int64]*Node),
	}
}

// Weighted reports whether edges carry weights.
func (g *Graph) Weighted() bool {
	return g.weighted
}

// AddNode returns the node for doc.ID, creating it if needed.
func (g *Graph) AddNode(doc document.Document) *Node {
	if n, ok := g.byID[doc.ID]; ok {
		return n
	}

	n := &Node{
		Document: doc,
		graph:    g,
		seq:      len(g.nodes),
		weights:  make(map[*Node]float64),
	}
	g.nodes = append(g.nodes, n)
	g.byID[doc.ID] = n
	return n
}

// AddEdge connects a and b symmetrically. The unweighted variant ignores
// weight and stores 1. Adding an existing edge overwrites its weight.
func (g *Graph) AddEdge(a, b *Node, weight float64) error {
	if a == nil || b == nil || a.graph != g || b.graph != g {
		return ErrForeignNode
	}
	if a == b {
		return ErrSelfLoop
	}

	if !g.weighted {
		weight = 1
	} else if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}

	if _, exists := a.weights[b]; !exists {
		a.neighbors = append(a.neighbors, b)
		b.neighbors = append(b.neighbors, a)
		g.edges++
	}
	a.weights[b] = weight
	b.weights[a] = weight

	return nil
}

// Node returns the node for id, or nil.
func (g *Graph) Node(id int64) *Node {
	return g.byID[id]
}

// Nodes returns the nodes in their current order. The slice is shared with
// the graph and must not be modified.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Neighbors returns n's neighbors in the order their edges were added.
func (g *Graph) Neighbors(n *Node) []*Node {
	return n.neighbors
}

// Degree returns the number of neighbors of n.
func (g *Graph) Degree(n *Node) int {
	return len(n.neighbors)
}

// Weight returns the weight of the edge between a and b.
func (g *Graph) Weight(a, b *Node) (float64, bool) {
	w, ok := a.weights[b]
	return w, ok
}

// ResetCentrality sets every node's score to 0.
func (g *Graph) ResetCentrality() {
	for _, n := range g.nodes {
		n.Centrality = 0
	}
}

// SortByCentrality reorders the nodes by Centrality. Equal scores keep
// their insertion order.
func (g *Graph) SortByCentrality(order Order) {
	sort.SliceStable(g.nodes, func(i, j int) bool {
		a, b := g.nodes[i], g.nodes[j]
		if a.Centrality == b.Centrality {
			return a.seq < b.seq
		}
		if order == Ascending {
			return a.Centrality < b.Centrality
		}
		return a.Centrality > b.Centrality
	})
}

// Documents returns the wrapped documents in the current node order.
func (g *Graph) Documents() []document.Document {
	docs := make([]document.Document, len(g.nodes))
	for i, n := range g.nodes {
		docs[i] = n.Document
	}
	return docs
}

// ByDegree returns the nodes sorted by degree descending. Ties keep
// insertion order. The graph's own order is left untouched.
func (g *Graph) ByDegree() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := len(out[i].neighbors), len(out[j].neighbors)
		if di == dj {
			return out[i].seq < out[j].seq
		}
		return di > dj
	})
	return out
}
