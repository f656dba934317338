package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	Describe("conformance", func() {
		testutils.DriverSpecs(func() storage.Driver {
			return inmemory.NewDriver()
		})
	})

	It("drops everything on reset", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
		Expect(d.AddNeighbors(ctx, 1, []int64{2})).To(Succeed())

		var r storage.Resetter = d
		Expect(r.Reset(ctx)).To(Succeed())

		_, err := d.GetDocument(ctx, 1)
		Expect(storage.IsNotFound(err)).To(BeTrue())
		n, err := d.Neighbors(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEmpty())
	})

	It("returns copies that callers may modify", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.PutDocuments(ctx, testutils.Catalog())).To(Succeed())

		doc, err := d.GetDocument(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		doc.Languages[0] = "de"

		again, err := d.GetDocument(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Languages).To(Equal([]string{"fr", "en"}))
	})

	It("drops scores of documents without a profile", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.SetTFIDF(ctx, "en", map[int64]document.TFIDFProfile{7: {"x": 1}})).To(Succeed())

		scores, err := d.TokenScores(ctx, "en", []string{"x"})
		Expect(err).NotTo(HaveOccurred())
		Expect(scores).To(BeEmpty())
	})
})
