package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
	"github.com/papercomputeco/folio/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	Describe("conformance", func() {
		testutils.DriverSpecs(func() storage.Driver {
			d, err := sqlite.NewDriver(context.Background(), ":memory:")
			Expect(err).NotTo(HaveOccurred())
			return d
		})
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "folio.db")

			d, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps data across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "folio.db")

			d, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
			Expect(d.AddNeighbors(ctx, 1, []int64{2})).To(Succeed())
			Expect(d.Close()).To(Succeed())

			d, err = sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			doc, err := d.GetDocument(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("Les Misérables"))

			n, err := d.Neighbors(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal([]int64{1}))
		})
	})

	Describe("large inputs", func() {
		It("chunks id lists and inserts", func() {
			ctx := context.Background()
			d, err := sqlite.NewDriver(ctx, ":memory:")
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			docs := make([]document.Document, 0, 1200)
			ids := make([]int64, 0, 1200)
			for i := int64(1); i <= 1200; i++ {
				docs = append(docs, testutils.NewTestDocument(i, "title", int(i), []string{"en"}, i%7))
				ids = append(ids, i)
			}
			Expect(d.PutDocuments(ctx, docs)).To(Succeed())

			got, err := d.GetDocuments(ctx, ids)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1200))
			Expect(got[1199].ID).To(Equal(int64(1200)))
		})
	})

	Describe("Reset", func() {
		It("empties every table", func() {
			ctx := context.Background()
			d, err := sqlite.NewDriver(ctx, ":memory:")
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			Expect(d.PutDocuments(ctx, testutils.Catalog())).To(Succeed())
			Expect(d.Reset(ctx)).To(Succeed())

			docs, err := d.ListDocuments(ctx, storage.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})
})
