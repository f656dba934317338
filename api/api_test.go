package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cacheinmemory "github.com/papercomputeco/folio/pkg/cache/inmemory"
	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/logger"
	"github.com/papercomputeco/folio/pkg/orchestrator"
	"github.com/papercomputeco/folio/pkg/similarity"
	"github.com/papercomputeco/folio/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

// get runs a GET request against the server and decodes the JSON body
// into out when out is non-nil.
func get(server *Server, path string, out any) int {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	Expect(err).NotTo(HaveOccurred())

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	if out != nil {
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}
	return resp.StatusCode
}

func resultIDs(results []similarity.Result) []int64 {
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

var _ = Describe("Server", func() {
	var (
		ctx    context.Context
		driver *testutils.FailingDriver
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewFailingDriver(inmemory.NewDriver())

		Expect(driver.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
		for lang, byDoc := range testutils.CatalogKeywords() {
			for id, profile := range byDoc {
				Expect(driver.PutKeywords(ctx, lang, id, profile)).To(Succeed())
			}
		}
		Expect(driver.SetTFIDF(ctx, document.LanguageFrench, map[int64]document.TFIDFProfile{
			1: {"jardin": 0.5, "optimisme": 0.8},
			2: {"misere": 0.9, "paris": 0.4},
			5: {"paris": 0.8, "cathedrale": 0.6},
		})).To(Succeed())
		Expect(driver.AddNeighbors(ctx, 1, []int64{2, 5})).To(Succeed())

		log := logger.Nop()
		orch, err := orchestrator.New(orchestrator.DefaultConfig(), orchestrator.Dependencies{
			Documents: driver,
			Neighbors: driver,
			Cache:     cacheinmemory.New(100),
			Ranker:    centrality.NewRanker(centrality.DefaultConfig(), log),
			Logger:    log,
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{ListenAddr: ":0"}, Dependencies{
			Store:    driver,
			Search:   similarity.NewEngine(driver, driver, similarity.DefaultConfig(), log),
			Resolver: orch,
			Logger:   log,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a store", func() {
		_, err := NewServer(Config{}, Dependencies{})
		Expect(err).To(HaveOccurred())
	})

	It("answers ping", func() {
		var body string
		Expect(get(server, "/ping", &body)).To(Equal(fiber.StatusOK))
		Expect(body).To(Equal("pong"))
	})

	It("renders unknown routes as an ErrorResponse", func() {
		var body ErrorResponse
		Expect(get(server, "/nope", &body)).To(Equal(fiber.StatusNotFound))
		Expect(body.Error).NotTo(BeEmpty())
	})

	Describe("GET /books", func() {
		It("returns the filtered books with their suggestions", func() {
			var body orchestrator.Response
			Expect(get(server, "/books?languages=en", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body.Results)).To(Equal([]int64{1, 3}))
			Expect(document.IDs(body.Suggestions)).To(Equal([]int64{2, 5}))
		})

		It("sorts by download count", func() {
			var body orchestrator.Response
			Expect(get(server, "/books?sort=download_count", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body.Results)).To(Equal([]int64{2, 3, 1, 5}))

			Expect(get(server, "/books?sort=download_count&order=ascending", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body.Results)).To(Equal([]int64{5, 1, 2, 3}))
		})

		It("ranks by centrality", func() {
			var body orchestrator.Response
			Expect(get(server, "/books?languages=fr&sort=betweenness", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body.Results)).To(ConsistOf(int64(1), int64(2), int64(5)))
		})

		It("rejects unknown sorts and orders", func() {
			Expect(get(server, "/books?sort=pagerank", nil)).To(Equal(fiber.StatusBadRequest))
			Expect(get(server, "/books?order=sideways", nil)).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects invalid patterns", func() {
			var body ErrorResponse
			Expect(get(server, "/books?title=(&title_type=pattern", &body)).To(Equal(fiber.StatusBadRequest))
			Expect(body.Error).To(ContainSubstring("invalid match pattern"))
		})

		It("maps an unavailable store to 503", func() {
			driver.FailOn["ListDocuments"] = true
			Expect(get(server, "/books", nil)).To(Equal(fiber.StatusServiceUnavailable))
		})
	})

	Describe("GET /books/similar", func() {
		It("expands keyword matches by cosine similarity", func() {
			var body []similarity.Result
			Expect(get(server, "/books/similar?keyword=paris&languages=fr", &body)).To(Equal(fiber.StatusOK))
			Expect(resultIDs(body)).To(Equal([]int64{2, 5}))
			Expect(body[0].Score).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("re-sorts by download count", func() {
			var body []similarity.Result
			Expect(get(server, "/books/similar?keyword=paris&sort=download_count&order=asc", &body)).To(Equal(fiber.StatusOK))
			Expect(resultIDs(body)).To(Equal([]int64{5, 2}))
		})

		It("returns the filtered catalog without a keyword", func() {
			var body []document.Document
			Expect(get(server, "/books/similar?languages=en", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body)).To(Equal([]int64{1, 3}))
		})

		It("returns an empty list when nothing matches", func() {
			var body []similarity.Result
			Expect(get(server, "/books/similar?keyword=zzz", &body)).To(Equal(fiber.StatusOK))
			Expect(body).To(BeEmpty())
		})

		It("validates top and min_score", func() {
			Expect(get(server, "/books/similar?keyword=paris&top=0", nil)).To(Equal(fiber.StatusBadRequest))
			Expect(get(server, "/books/similar?keyword=paris&min_score=2", nil)).To(Equal(fiber.StatusBadRequest))
		})

		It("returns 503 when search is not configured", func() {
			bare, err := NewServer(Config{}, Dependencies{Store: driver, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(get(bare, "/books/similar?keyword=paris", nil)).To(Equal(fiber.StatusServiceUnavailable))
			Expect(get(bare, "/books", nil)).To(Equal(fiber.StatusServiceUnavailable))
		})
	})

	Describe("GET /books/suggestions", func() {
		It("returns the neighbors of the leading ids", func() {
			var body []document.Document
			Expect(get(server, "/books/suggestions?ids=1", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body)).To(Equal([]int64{2, 5}))
		})

		It("excludes the requested ids", func() {
			var body []document.Document
			Expect(get(server, "/books/suggestions?ids=1,2", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body)).To(Equal([]int64{5}))
		})

		It("requires valid ids", func() {
			Expect(get(server, "/books/suggestions", nil)).To(Equal(fiber.StatusBadRequest))
			Expect(get(server, "/books/suggestions?ids=1,x", nil)).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /books/:id/neighbors", func() {
		It("returns the stored neighbors", func() {
			var body []document.Document
			Expect(get(server, "/books/1/neighbors", &body)).To(Equal(fiber.StatusOK))
			Expect(document.IDs(body)).To(Equal([]int64{2, 5}))
		})

		It("returns an empty list for a book without neighbors", func() {
			var body []document.Document
			Expect(get(server, "/books/3/neighbors", &body)).To(Equal(fiber.StatusOK))
			Expect(body).NotTo(BeNil())
			Expect(body).To(BeEmpty())
		})

		It("returns 404 for unknown books", func() {
			Expect(get(server, "/books/999/neighbors", nil)).To(Equal(fiber.StatusNotFound))
		})

		It("returns 400 for malformed ids", func() {
			Expect(get(server, "/books/x/neighbors", nil)).To(Equal(fiber.StatusBadRequest))
		})
	})
})
