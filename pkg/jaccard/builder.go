package jaccard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/folio/pkg/document"
)

const (
	// DefaultThreshold is the distance below which two documents become
	// neighbors. Lower is stricter.
	DefaultThreshold = 0.6

	// cancelCheckEvery is how many comparisons run between context checks.
	cancelCheckEvery = 256
)

// ErrInvalidThreshold is returned for thresholds outside (0, 1].
var ErrInvalidThreshold = errors.New("jaccard threshold must be in (0, 1]")

// NeighborWriter persists neighbor pairs. AddNeighbors records id and each
// of neighbors as neighbors of each other.
type NeighborWriter interface {
	AddNeighbors(ctx context.Context, id int64, neighbors []int64) error
}

// Config is the configuration of a Builder.
type Config struct {
	// Threshold is the exclusive distance bound. Defaults to DefaultThreshold.
	Threshold float64

	// Workers bounds the number of documents compared concurrently.
	// Defaults to runtime.NumCPU().
	Workers int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Builder compares every pair of keyword profiles and records the pairs
// closer than the threshold.
type Builder struct {
	config Config
	writer NeighborWriter
	logger *slog.Logger
}

// NewBuilder creates a Builder. writer may be nil, in which case pairs are
// only kept in the returned AdjacencyRecord.
func NewBuilder(c Config, writer NeighborWriter) (*Builder, error) {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Threshold)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return &Builder{
		config: c,
		writer: writer,
		logger: c.Logger,
	}, nil
}

// Build compares all unordered pairs of profiles. Empty profiles are
// skipped. Each document's comparisons run as one unit of work; a unit
// only synchronizes when it records a pair. A persistence error or context
// cancellation aborts the batch.
func (b *Builder) Build(ctx context.Context, profiles map[int64]document.OccurrenceProfile) (*AdjacencyRecord, error) {
	record := NewAdjacencyRecord()

	ids := make([]int64, 0, len(profiles))
	for id, p := range profiles {
		if len(p) == 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) < 2 {
		return record, nil
	}

	start := time.Now()
	b.logger.Info("building jaccard neighbor graph",
		"documents", len(ids),
		"skipped_empty", len(profiles)-len(ids),
		"threshold", b.config.Threshold,
		"workers", b.config.Workers,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Workers)

	for i := range ids {
		g.Go(func() error {
			return b.compare(gctx, record, ids, i, profiles)
		})
	}

	if err := g.Wait(); err != nil {
		return record, fmt.Errorf("building neighbor graph: %w", err)
	}

	b.logger.Info("jaccard neighbor graph built",
		"documents", len(ids),
		"edges", record.EdgeCount(),
		"elapsed", time.Since(start),
	)

	return record, nil
}

// compare checks ids[i] against every later id.
func (b *Builder) compare(
	ctx context.Context,
	record *AdjacencyRecord,
	ids []int64,
	i int,
	profiles map[int64]document.OccurrenceProfile,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := ids[i]
	pa := profiles[a]
	var found []int64

	for j := i + 1; j < len(ids); j++ {
		if (j-i)%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		other := ids[j]
		if record.Has(a, other) {
			continue
		}
		if Distance(pa, profiles[other]) >= b.config.Threshold {
			continue
		}
		if record.AddPair(a, other) {
			found = append(found, other)
		}
	}

	if len(found) == 0 {
		return nil
	}

	b.logger.Debug("neighbors found", "document_id", a, "count", len(found))

	if b.writer == nil {
		return nil
	}
	if err := b.writer.AddNeighbors(ctx, a, found); err != nil {
		return fmt.Errorf("persisting neighbors of %d: %w", a, err)
	}
	return nil
}
