// Package centrality scores graph nodes with betweenness and closeness
// centrality. Large graphs are scored approximately and every scorer runs
// under a wall-clock budget, returning partial scores rather than failing.
package centrality

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the centrality measure used to rank a result set.
type Mode string

const (
	ModeNone        Mode = "none"
	ModeCloseness   Mode = "closeness"
	ModeBetweenness Mode = "betweenness"
)

// ParseMode parses a centrality mode. An empty string yields ModeNone.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeCloseness:
		return ModeCloseness, nil
	case ModeBetweenness:
		return ModeBetweenness, nil
	default:
		return ModeNone, fmt.Errorf("unknown centrality mode: %q", s)
	}
}

// Config holds the tuning constants of the scorers.
type Config struct {
	// BetweennessCutoff is the largest node count scored with exact
	// betweenness. Larger graphs use the degree-sampled approximation.
	BetweennessCutoff int

	// SampleSize is the number of highest-degree nodes scored by the
	// approximate betweenness.
	SampleSize int

	// MaxSources caps the number of Brandes traversal sources.
	MaxSources int

	// Budget is the wall-clock budget of one scoring call. Zero disables it.
	Budget time.Duration

	// ClosenessCutoff is the largest node count where every node gets a
	// closeness score; beyond it only the highest-degree nodes are scored.
	ClosenessCutoff int

	// ClosenessNeighborCap bounds the neighbor weights summed per node.
	ClosenessNeighborCap int
}

// DefaultConfig returns the default scorer configuration.
func DefaultConfig() Config {
	return Config{
		BetweennessCutoff:    30,
		SampleSize:           20,
		MaxSources:           50,
		Budget:               2 * time.Second,
		ClosenessCutoff:      50,
		ClosenessNeighborCap: 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BetweennessCutoff <= 0 {
		c.BetweennessCutoff = d.BetweennessCutoff
	}
	if c.SampleSize <= 0 {
		c.SampleSize = d.SampleSize
	}
	if c.MaxSources <= 0 {
		c.MaxSources = d.MaxSources
	}
	if c.ClosenessCutoff <= 0 {
		c.ClosenessCutoff = d.ClosenessCutoff
	}
	if c.ClosenessNeighborCap <= 0 {
		c.ClosenessNeighborCap = d.ClosenessNeighborCap
	}
	return c
}

// Stats describes how a scoring call went.
type Stats struct {
	// Nodes is the number of nodes in the scored graph.
	Nodes int `json:"nodes"`

	// Selected is the number of sources (betweenness) or nodes (closeness)
	// chosen for scoring.
	Selected int `json:"selected"`

	// Processed is how many of the selected units were fully scored.
	Processed int `json:"processed"`

	// Truncated is set when the budget or context ended scoring early.
	Truncated bool `json:"truncated"`

	// Approximate is set when the sampled betweenness was used.
	Approximate bool `json:"approximate"`
}

// deadline reports whether the budget is spent.
type deadline struct {
	at time.Time
}

func newDeadline(budget time.Duration) deadline {
	if budget <= 0 {
		return deadline{}
	}
	return deadline{at: time.Now().Add(budget)}
}

func (d deadline) passed() bool {
	return !d.at.IsZero() && time.Now().After(d.at)
}
