package jaccard

import (
	"sort"
	"sync"
)

// AdjacencyRecord is a concurrent-safe symmetric neighbor relation keyed by
// document id. It only grows.
type AdjacencyRecord struct {
	mu        sync.RWMutex
	neighbors map[int64]map[int64]struct{}
	edges     int
}

// NewAdjacencyRecord creates an empty record.
func NewAdjacencyRecord() *AdjacencyRecord {
	return &AdjacencyRecord{
		neighbors: make(map[int64]map[int64]struct{}),
	}
}

// AddPair records a and b as neighbors of each other. It returns false when
// the pair was already present or a == b.
func (r *AdjacencyRecord) AddPair(a, b int64) bool {
	if a == b {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.neighbors[a][b]; ok {
		return false
	}

	r.link(a, b)
	r.link(b, a)
	r.edges++
	return true
}

func (r *AdjacencyRecord) link(from, to int64) {
	set, ok := r.neighbors[from]
	if !ok {
		set = make(map[int64]struct{})
		r.neighbors[from] = set
	}
	set[to] = struct{}{}
}

// Has reports whether a and b are recorded neighbors.
func (r *AdjacencyRecord) Has(a, b int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.neighbors[a][b]
	return ok
}

// Neighbors returns the neighbors of id sorted ascending.
func (r *AdjacencyRecord) Neighbors(id int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.neighbors[id]
	out := make([]int64, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IDs returns every id with at least one neighbor, sorted ascending.
func (r *AdjacencyRecord) IDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.neighbors))
	for id := range r.neighbors {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EdgeCount returns the number of undirected pairs.
func (r *AdjacencyRecord) EdgeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.edges
}
