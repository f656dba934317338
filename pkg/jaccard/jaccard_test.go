package jaccard_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/jaccard"
	"github.com/papercomputeco/folio/pkg/logger"
)

func profile(tokens ...string) document.OccurrenceProfile {
	p := make(document.OccurrenceProfile, len(tokens))
	for i, t := range tokens {
		p[t] = i + 1
	}
	return p
}

// recordingWriter collects persisted pairs as "low-high" keys.
type recordingWriter struct {
	mu    sync.Mutex
	pairs map[string]int
	err   error
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{pairs: make(map[string]int)}
}

func (w *recordingWriter) AddNeighbors(_ context.Context, id int64, neighbors []int64) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, n := range neighbors {
		lo, hi := id, n
		if lo > hi {
			lo, hi = hi, lo
		}
		w.pairs[fmt.Sprintf("%d-%d", lo, hi)]++
	}
	return nil
}

// corpus returns a deterministic corpus with overlapping vocabularies.
func corpus(n int) map[int64]document.OccurrenceProfile {
	out := make(map[int64]document.OccurrenceProfile, n)
	for i := range n {
		p := document.OccurrenceProfile{}
		for t := range 8 {
			p[fmt.Sprintf("tok%d", (i*3+t*(i%4+1))%20)] = t + 1
		}
		out[int64(i+1)] = p
	}
	return out
}

var _ = Describe("Distance", func() {
	a := profile("cat", "dog", "bird")
	b := profile("cat", "dog", "fish")
	c := profile("car", "boat")

	It("computes 1 - intersection/union over key sets", func() {
		Expect(jaccard.Distance(a, b)).To(Equal(0.5))
		Expect(jaccard.Distance(a, c)).To(Equal(1.0))
	})

	It("is symmetric", func() {
		for _, x := range []document.OccurrenceProfile{a, b, c} {
			for _, y := range []document.OccurrenceProfile{a, b, c} {
				Expect(jaccard.Distance(x, y)).To(Equal(jaccard.Distance(y, x)))
			}
		}
	})

	It("is zero for identical sets", func() {
		Expect(jaccard.Distance(a, a)).To(Equal(0.0))
		Expect(jaccard.Distance(document.OccurrenceProfile{}, document.OccurrenceProfile{})).To(Equal(0.0))
	})

	It("ignores occurrence counts", func() {
		x := document.OccurrenceProfile{"cat": 1, "dog": 100}
		y := document.OccurrenceProfile{"cat": 50, "dog": 2}
		Expect(jaccard.Distance(x, y)).To(Equal(0.0))
	})
})

var _ = Describe("AdjacencyRecord", func() {
	It("stores pairs symmetrically and only once", func() {
		r := jaccard.NewAdjacencyRecord()
		Expect(r.AddPair(1, 2)).To(BeTrue())
		Expect(r.AddPair(2, 1)).To(BeFalse())
		Expect(r.AddPair(3, 3)).To(BeFalse())

		Expect(r.Has(2, 1)).To(BeTrue())
		Expect(r.Neighbors(1)).To(Equal([]int64{2}))
		Expect(r.Neighbors(2)).To(Equal([]int64{1}))
		Expect(r.EdgeCount()).To(Equal(1))
		Expect(r.IDs()).To(Equal([]int64{1, 2}))
	})

	It("does not lose edges under concurrent inserts", func() {
		r := jaccard.NewAdjacencyRecord()
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := int64(0); i < 50; i++ {
					r.AddPair(i, i+1)
					r.AddPair(i+1, i)
				}
			}()
		}
		wg.Wait()

		Expect(r.EdgeCount()).To(Equal(50))
	})
})

var _ = Describe("Builder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newBuilder := func(threshold float64, workers int, w jaccard.NeighborWriter) *jaccard.Builder {
		b, err := jaccard.NewBuilder(jaccard.Config{
			Threshold: threshold,
			Workers:   workers,
			Logger:    logger.Nop(),
		}, w)
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	It("links close documents and leaves disjoint ones apart", func() {
		w := newRecordingWriter()
		record, err := newBuilder(0.6, 2, w).Build(ctx, map[int64]document.OccurrenceProfile{
			1: profile("cat", "dog", "bird"),
			2: profile("cat", "dog", "fish"),
			3: profile("car", "boat"),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(record.Has(1, 2)).To(BeTrue())
		Expect(record.Has(2, 1)).To(BeTrue())
		Expect(record.Has(1, 3)).To(BeFalse())
		Expect(record.Neighbors(3)).To(BeEmpty())
		Expect(w.pairs).To(Equal(map[string]int{"1-2": 1}))
	})

	It("skips empty profiles", func() {
		record, err := newBuilder(0.6, 1, nil).Build(ctx, map[int64]document.OccurrenceProfile{
			1: {},
			2: {},
			3: profile("a"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(record.EdgeCount()).To(Equal(0))
	})

	It("never lowers the edge count when the threshold grows", func() {
		profiles := corpus(60)
		previous := -1
		for _, t := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
			record, err := newBuilder(t, 4, nil).Build(ctx, profiles)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.EdgeCount()).To(BeNumerically(">=", previous))
			previous = record.EdgeCount()
		}
	})

	It("produces the same record regardless of worker count", func() {
		profiles := corpus(50)
		single, err := newBuilder(0.6, 1, nil).Build(ctx, profiles)
		Expect(err).NotTo(HaveOccurred())

		w := newRecordingWriter()
		parallel, err := newBuilder(0.6, 8, w).Build(ctx, profiles)
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel.EdgeCount()).To(Equal(single.EdgeCount()))
		for _, id := range single.IDs() {
			Expect(parallel.Neighbors(id)).To(Equal(single.Neighbors(id)))
		}
		Expect(w.pairs).To(HaveLen(single.EdgeCount()))
		for _, n := range w.pairs {
			Expect(n).To(Equal(1))
		}
	})

	It("propagates persistence failures", func() {
		w := newRecordingWriter()
		w.err = errors.New("store unavailable")

		_, err := newBuilder(0.6, 2, w).Build(ctx, map[int64]document.OccurrenceProfile{
			1: profile("a", "b"),
			2: profile("a", "b"),
		})
		Expect(err).To(MatchError(ContainSubstring("store unavailable")))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newBuilder(0.6, 2, nil).Build(cancelled, corpus(10))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects thresholds outside (0, 1]", func() {
		_, err := jaccard.NewBuilder(jaccard.Config{Threshold: 1.5}, nil)
		Expect(err).To(MatchError(jaccard.ErrInvalidThreshold))
	})
})
