package indexer_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/indexer"
	"github.com/papercomputeco/folio/pkg/logger"
	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.GraphBuiltEvent
	err    error
}

func (p *recordingPublisher) PublishGraphBuilt(_ context.Context, event *eventstream.GraphBuiltEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func norm(p document.TFIDFProfile) float64 {
	var sum float64
	for _, w := range p {
		sum += w * w
	}
	return math.Sqrt(sum)
}

var _ = Describe("Indexer", func() {
	var (
		ctx       context.Context
		driver    *testutils.FailingDriver
		publisher *recordingPublisher
		ix        *indexer.Indexer
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewFailingDriver(inmemory.NewDriver())
		publisher = &recordingPublisher{}
		ix = indexer.New(driver, indexer.Config{
			Publisher: publisher,
			Logger:    logger.Nop(),
		})
	})

	Describe("Seed", func() {
		It("stores documents and thresholded profiles under the primary language", func() {
			stats, err := ix.Seed(ctx, testutils.Catalog(), map[int64]document.OccurrenceProfile{
				1:  {"jardin": 12, "optimisme": 3},
				2:  {"paris": 2},
				3:  {"whale": 30, "ship": 5},
				4:  {"a": 1},
				99: {"ghost": 100},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(indexer.ImportStats{Documents: 5, Profiles: 2, Skipped: 3}))

			fr, err := driver.OccurrenceProfiles(ctx, document.LanguageFrench)
			Expect(err).NotTo(HaveOccurred())
			Expect(fr).To(Equal(map[int64]document.OccurrenceProfile{1: {"jardin": 12}}))

			en, err := driver.OccurrenceProfiles(ctx, document.LanguageEnglish)
			Expect(err).NotTo(HaveOccurred())
			Expect(en).To(Equal(map[int64]document.OccurrenceProfile{3: {"whale": 30}}))
		})

		It("skips languages outside the configured set", func() {
			ix = indexer.New(driver, indexer.Config{Languages: []string{"en"}, Logger: logger.Nop()})
			stats, err := ix.Seed(ctx, testutils.Catalog(), map[int64]document.OccurrenceProfile{
				1: {"jardin": 12},
				3: {"whale": 30},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Profiles).To(Equal(1))
			Expect(stats.Skipped).To(Equal(1))
		})

		It("propagates store failures", func() {
			driver.FailOn["PutDocuments"] = true
			_, err := ix.Seed(ctx, testutils.Catalog(), nil)
			Expect(err).To(MatchError(storage.ErrUnavailable))
		})
	})

	Describe("Reindex", func() {
		BeforeEach(func() {
			Expect(driver.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
			for lang, byDoc := range testutils.CatalogKeywords() {
				for id, profile := range byDoc {
					Expect(driver.PutKeywords(ctx, lang, id, profile)).To(Succeed())
				}
			}
		})

		It("stores unit-norm TF-IDF profiles in batches", func() {
			ix = indexer.New(driver, indexer.Config{BatchSize: 1, Logger: logger.Nop()})

			n, err := ix.Reindex(ctx, document.LanguageFrench)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))

			profiles, err := driver.TFIDFProfiles(ctx, document.LanguageFrench, []int64{1, 2, 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(HaveLen(3))
			for _, p := range profiles {
				Expect(norm(p)).To(BeNumerically("~", 1.0, 1e-9))
			}
		})

		It("weighs every kept token", func() {
			_, err := ix.Reindex(ctx, document.LanguageFrench)
			Expect(err).NotTo(HaveOccurred())

			profiles, err := driver.TFIDFProfiles(ctx, document.LanguageFrench, []int64{5})
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles[5]["cathedrale"]).To(BeNumerically(">", 0))
			Expect(profiles[5]["paris"]).To(BeNumerically(">", 0))
		})

		It("reindexes every language", func() {
			counts, err := ix.ReindexAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts).To(Equal(map[string]int{"en": 2, "fr": 3}))
		})

		It("scores nothing for a language without profiles", func() {
			n, err := ix.Reindex(ctx, "de")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("Build", func() {
		BeforeEach(func() {
			Expect(driver.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
			Expect(driver.PutKeywords(ctx, "fr", 1, document.OccurrenceProfile{"a": 1, "b": 1, "c": 1})).To(Succeed())
			Expect(driver.PutKeywords(ctx, "fr", 2, document.OccurrenceProfile{"a": 1, "b": 1, "c": 1, "d": 1})).To(Succeed())
			Expect(driver.PutKeywords(ctx, "fr", 5, document.OccurrenceProfile{"x": 1, "y": 1})).To(Succeed())
			Expect(driver.PutKeywords(ctx, "en", 1, document.OccurrenceProfile{"whale": 1, "sea": 1})).To(Succeed())
			Expect(driver.PutKeywords(ctx, "en", 3, document.OccurrenceProfile{"whale": 1, "sea": 1})).To(Succeed())
		})

		It("persists the neighbors of every language", func() {
			metas, err := ix.Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(metas).To(HaveLen(2))
			Expect(metas[0].Language).To(Equal("en"))
			Expect(metas[0].Edges).To(Equal(1))
			Expect(metas[1].Language).To(Equal("fr"))
			Expect(metas[1].Documents).To(Equal(3))
			Expect(metas[1].Edges).To(Equal(1))
			Expect(metas[1].Threshold).To(Equal(0.6))

			n, err := driver.Neighbors(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal([]int64{2, 3}))

			n, err = driver.Neighbors(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeEmpty())
		})

		It("publishes one event per language", func() {
			_, err := ix.Build(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.events).To(HaveLen(2))
			Expect(publisher.events[0].EventType).To(Equal(eventstream.EventTypeGraphBuilt))
			Expect(publisher.events[0].Build.Language).To(Equal("en"))
			Expect(publisher.events[1].EventID).NotTo(Equal(publisher.events[0].EventID))
		})

		It("replaces the previous graph", func() {
			Expect(driver.AddNeighbors(ctx, 3, []int64{5})).To(Succeed())

			_, err := ix.Build(ctx)
			Expect(err).NotTo(HaveOccurred())

			n, err := driver.Neighbors(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeEmpty())
		})

		It("does not fail on publish errors", func() {
			publisher.err = errors.New("broker down")
			metas, err := ix.Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(metas).To(HaveLen(2))
		})

		It("aborts on persistence errors", func() {
			driver.FailOn["AddNeighbors"] = true
			_, err := ix.Build(ctx)
			Expect(err).To(MatchError(storage.ErrUnavailable))
		})

		It("rejects invalid thresholds", func() {
			ix = indexer.New(driver, indexer.Config{Threshold: 1.5, Logger: logger.Nop()})
			_, err := ix.Build(ctx)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Watch", func() {
	It("runs once, then again after the directory changes", func() {
		dir, err := os.MkdirTemp("", "folio-watch-test-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var runs atomic.Int32
		done := make(chan error, 1)
		go func() {
			done <- indexer.Watch(ctx, dir, 20*time.Millisecond, logger.Nop(), func(context.Context) error {
				runs.Add(1)
				return nil
			})
		}()

		Eventually(runs.Load).Should(BeEquivalentTo(1))

		Expect(os.WriteFile(filepath.Join(dir, "1.json"), []byte(`{"a": 1}`), 0o644)).To(Succeed())
		Eventually(runs.Load, 2*time.Second).Should(BeNumerically(">=", 2))

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("fails for a missing directory", func() {
		err := indexer.Watch(context.Background(), "/nonexistent/folio", 0, logger.Nop(), func(context.Context) error {
			return nil
		})
		Expect(err).To(HaveOccurred())
	})
})
