package testutils

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

// DriverSpecs registers the behavior every storage.Driver shares. It must
// be called from inside a container node; newDriver is invoked before each
// spec and must return an empty store.
func DriverSpecs(newDriver func() storage.Driver) {
	var (
		ctx    context.Context
		driver storage.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	seed := func() {
		Expect(driver.PutDocuments(ctx, Catalog())).To(Succeed())
		for lang, byDoc := range CatalogKeywords() {
			for id, profile := range byDoc {
				Expect(driver.PutKeywords(ctx, lang, id, profile)).To(Succeed())
			}
		}
	}

	listIDs := func(f storage.Filter) []int64 {
		docs, err := driver.ListDocuments(ctx, f)
		Expect(err).NotTo(HaveOccurred())
		return document.IDs(docs)
	}

	Describe("documents", func() {
		BeforeEach(seed)

		It("round-trips a document with its attributes in order", func() {
			doc, err := driver.GetDocument(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("Candide"))
			Expect(doc.DownloadCount).To(Equal(300))
			Expect(doc.Languages).To(Equal([]string{"fr", "en"}))
			Expect(doc.Subjects).To(Equal([]int64{10, 20}))
			Expect(doc.Authors).To(Equal([]string{"Voltaire"}))
		})

		It("returns a NotFoundError for unknown ids", func() {
			_, err := driver.GetDocument(ctx, 999)
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("replaces a document on a second put", func() {
			Expect(driver.PutDocuments(ctx, []document.Document{
				{ID: 1, Title: "Candide, ou l'Optimisme", DownloadCount: 301, Languages: []string{"fr"}, Subjects: []int64{20}},
			})).To(Succeed())

			doc, err := driver.GetDocument(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("Candide, ou l'Optimisme"))
			Expect(doc.DownloadCount).To(Equal(301))
			Expect(doc.Languages).To(Equal([]string{"fr"}))
			Expect(doc.Subjects).To(Equal([]int64{20}))
			Expect(doc.Authors).To(BeEmpty())
		})

		It("returns documents in input order, skipping unknown and repeated ids", func() {
			docs, err := driver.GetDocuments(ctx, []int64{5, 999, 2, 5, 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(document.IDs(docs)).To(Equal([]int64{5, 2, 1}))
		})

		It("lists titled documents by id", func() {
			Expect(listIDs(storage.Filter{})).To(Equal([]int64{1, 2, 3, 5}))
		})

		It("filters by language", func() {
			Expect(listIDs(storage.Filter{Language: "en"})).To(Equal([]int64{1, 3}))
		})

		It("filters by author substring, ignoring case", func() {
			Expect(listIDs(storage.Filter{Author: "hugo"})).To(Equal([]int64{2, 5}))
		})

		It("filters by author pattern", func() {
			Expect(listIDs(storage.Filter{Author: "^Victor", AuthorMode: storage.MatchPattern})).To(Equal([]int64{2, 5}))
		})

		It("filters by title", func() {
			Expect(listIDs(storage.Filter{Title: "dick"})).To(Equal([]int64{3}))
			Expect(listIDs(storage.Filter{Title: "^Les", TitleMode: storage.MatchPattern})).To(Equal([]int64{2}))
		})

		It("filters by keyword in the requested language", func() {
			Expect(listIDs(storage.Filter{Language: "fr", Keyword: "paris"})).To(Equal([]int64{2, 5}))
		})

		It("filters by keyword across every language when none is given", func() {
			Expect(listIDs(storage.Filter{Keyword: "whale"})).To(Equal([]int64{3}))
		})

		It("sorts by downloads with ties broken by id", func() {
			Expect(listIDs(storage.Filter{SortByDownloads: true})).To(Equal([]int64{2, 3, 1, 5}))
			Expect(listIDs(storage.Filter{SortByDownloads: true, Ascending: true})).To(Equal([]int64{5, 1, 2, 3}))
		})

		It("rejects invalid patterns", func() {
			_, err := driver.ListDocuments(ctx, storage.Filter{Title: "(", TitleMode: storage.MatchPattern})
			Expect(err).To(MatchError(storage.ErrInvalidPattern))
		})
	})

	Describe("neighbors", func() {
		It("records pairs symmetrically", func() {
			Expect(driver.AddNeighbors(ctx, 1, []int64{3, 2})).To(Succeed())

			n, err := driver.Neighbors(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal([]int64{2, 3}))

			n, err = driver.Neighbors(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal([]int64{1}))
		})

		It("is idempotent and ignores self pairs", func() {
			Expect(driver.AddNeighbors(ctx, 1, []int64{2, 1})).To(Succeed())
			Expect(driver.AddNeighbors(ctx, 2, []int64{1})).To(Succeed())

			n, err := driver.Neighbors(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal([]int64{2}))
		})

		It("returns an empty slice for documents without neighbors", func() {
			n, err := driver.Neighbors(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).NotTo(BeNil())
			Expect(n).To(BeEmpty())
		})

		It("clears every pair", func() {
			Expect(driver.AddNeighbors(ctx, 1, []int64{2})).To(Succeed())
			Expect(driver.ClearNeighbors(ctx)).To(Succeed())

			n, err := driver.Neighbors(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeEmpty())
		})
	})

	Describe("keywords", func() {
		BeforeEach(seed)

		It("returns occurrence profiles per language", func() {
			profiles, err := driver.OccurrenceProfiles(ctx, "fr")
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(Equal(CatalogKeywords()["fr"]))
		})

		It("replaces a profile on a second put", func() {
			Expect(driver.PutKeywords(ctx, "en", 3, document.OccurrenceProfile{"sea": 4})).To(Succeed())

			profiles, err := driver.OccurrenceProfiles(ctx, "en")
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles[3]).To(Equal(document.OccurrenceProfile{"sea": 4}))
		})

		It("matches distinct tokens in order", func() {
			tokens, err := driver.MatchTokens(ctx, "fr", "AR", storage.MatchContains)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens).To(Equal([]string{"jardin", "paris"}))

			tokens, err = driver.MatchTokens(ctx, "fr", "^p", storage.MatchPattern)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens).To(Equal([]string{"paris"}))
		})

		It("returns an empty match for unknown tokens", func() {
			tokens, err := driver.MatchTokens(ctx, "en", "zzz", storage.MatchContains)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens).To(BeEmpty())
		})

		It("rejects invalid token patterns", func() {
			_, err := driver.MatchTokens(ctx, "fr", "(", storage.MatchPattern)
			Expect(err).To(MatchError(storage.ErrInvalidPattern))
		})

		It("stores scores and resets tokens missing from a new profile", func() {
			Expect(driver.SetTFIDF(ctx, "fr", map[int64]document.TFIDFProfile{
				2: {"misere": 0.5, "paris": 0.25},
				5: {"paris": 0.75, "cathedrale": 0.5},
			})).To(Succeed())
			Expect(driver.SetTFIDF(ctx, "fr", map[int64]document.TFIDFProfile{
				2: {"misere": 0.8},
			})).To(Succeed())

			scores, err := driver.TokenScores(ctx, "fr", []string{"paris", "misere"})
			Expect(err).NotTo(HaveOccurred())
			Expect(scores).To(HaveLen(2))
			Expect(scores[2]).To(Equal(document.TFIDFProfile{"misere": 0.8, "paris": 0}))
			Expect(scores[5]).To(Equal(document.TFIDFProfile{"paris": 0.75}))
		})

		It("returns complete profiles of the requested documents", func() {
			Expect(driver.SetTFIDF(ctx, "fr", map[int64]document.TFIDFProfile{
				5: {"paris": 0.75, "cathedrale": 0.5},
			})).To(Succeed())

			profiles, err := driver.TFIDFProfiles(ctx, "fr", []int64{5, 2, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(HaveLen(2))
			Expect(profiles[5]).To(Equal(document.TFIDFProfile{"paris": 0.75, "cathedrale": 0.5}))
			Expect(profiles[2]).To(Equal(document.TFIDFProfile{"misere": 0, "paris": 0}))
		})

		It("ignores tokens a document does not hold", func() {
			Expect(driver.SetTFIDF(ctx, "en", map[int64]document.TFIDFProfile{
				3: {"whale": 1, "ship": 1},
			})).To(Succeed())

			scores, err := driver.TokenScores(ctx, "en", []string{"ship"})
			Expect(err).NotTo(HaveOccurred())
			Expect(scores).To(BeEmpty())
		})
	})
}
