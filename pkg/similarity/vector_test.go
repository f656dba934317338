package similarity_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/similarity"
)

var _ = Describe("Cosine", func() {
	It("is 1 for a vector with itself", func() {
		v := document.TFIDFProfile{"a": 0.3, "b": 0.7, "c": 0.1}
		sim, ok := similarity.Cosine(v, v)
		Expect(ok).To(BeTrue())
		Expect(sim).To(BeNumerically("~", 1, 1e-9))
	})

	It("is 0 for vectors without shared tokens", func() {
		sim, ok := similarity.Cosine(document.TFIDFProfile{"a": 1}, document.TFIDFProfile{"b": 1})
		Expect(ok).To(BeTrue())
		Expect(sim).To(BeZero())
	})

	It("is symmetric and bounded", func() {
		a := document.TFIDFProfile{"a": 0.6, "b": 0.8}
		b := document.TFIDFProfile{"b": 0.5, "c": 0.5}
		ab, ok := similarity.Cosine(a, b)
		Expect(ok).To(BeTrue())
		ba, _ := similarity.Cosine(b, a)
		Expect(ab).To(Equal(ba))
		Expect(ab).To(BeNumerically(">=", 0))
		Expect(ab).To(BeNumerically("<=", 1))
		Expect(ab).To(BeNumerically("~", 0.4/math.Sqrt(0.5), 1e-9))
	})

	It("reports zero vectors as degenerate", func() {
		_, ok := similarity.Cosine(document.TFIDFProfile{"a": 0}, document.TFIDFProfile{"a": 1})
		Expect(ok).To(BeFalse())
		_, ok = similarity.Cosine(document.TFIDFProfile{"a": 1}, document.TFIDFProfile{})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ComputeTFIDF", func() {
	corpus := map[int64]document.OccurrenceProfile{
		1: {"a": 1, "b": 1},
		2: {"a": 1, "c": 0},
	}

	It("weighs rare tokens higher and normalises each document", func() {
		scores := similarity.ComputeTFIDF(corpus, 0)

		Expect(scores[2]).To(HaveLen(1))
		Expect(scores[2]["a"]).To(BeNumerically("~", 1, 1e-12))

		idfB := math.Log(3.0/2.0) + 1
		norm := math.Sqrt(1 + idfB*idfB)
		Expect(scores[1]["a"]).To(BeNumerically("~", 1/norm, 1e-12))
		Expect(scores[1]["b"]).To(BeNumerically("~", idfB/norm, 1e-12))
		Expect(scores[1]["b"]).To(BeNumerically(">", scores[1]["a"]))
	})

	It("drops zero counts", func() {
		scores := similarity.ComputeTFIDF(corpus, 0)
		Expect(scores[2]).NotTo(HaveKey("c"))
	})

	It("keeps the most frequent features", func() {
		scores := similarity.ComputeTFIDF(corpus, 1)
		Expect(scores[1]).To(Equal(document.TFIDFProfile{"a": 1}))
	})

	It("returns an empty result for an empty corpus", func() {
		Expect(similarity.ComputeTFIDF(nil, 0)).To(BeEmpty())
	})
})
