package graph_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
)

func doc(id int64) document.Document {
	return document.Document{ID: id, Title: "book"}
}

func ids(nodes []*graph.Node) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

var _ = Describe("Graph", func() {
	Describe("AddNode", func() {
		It("is idempotent on document id", func() {
			g := graph.New(false)
			a := g.AddNode(doc(1))
			again := g.AddNode(document.Document{ID: 1, Title: "other"})

			Expect(again).To(BeIdenticalTo(a))
			Expect(again.Document.Title).To(Equal("book"))
			Expect(g.Len()).To(Equal(1))
		})
	})

	Describe("AddEdge", func() {
		var (
			g    *graph.Graph
			a, b *graph.Node
		)

		BeforeEach(func() {
			g = graph.New(true)
			a = g.AddNode(doc(1))
			b = g.AddNode(doc(2))
		})

		It("stores symmetric edges with equal weight", func() {
			Expect(g.AddEdge(a, b, 2.5)).To(Succeed())

			Expect(ids(g.Neighbors(a))).To(Equal([]int64{2}))
			Expect(ids(g.Neighbors(b))).To(Equal([]int64{1}))

			wab, ok := g.Weight(a, b)
			Expect(ok).To(BeTrue())
			wba, _ := g.Weight(b, a)
			Expect(wab).To(Equal(wba))
		})

		It("overwrites instead of duplicating", func() {
			Expect(g.AddEdge(a, b, 1)).To(Succeed())
			Expect(g.AddEdge(b, a, 4)).To(Succeed())

			Expect(g.EdgeCount()).To(Equal(1))
			Expect(g.Degree(a)).To(Equal(1))
			w, _ := g.Weight(a, b)
			Expect(w).To(Equal(4.0))
		})

		It("rejects self-loops", func() {
			Expect(g.AddEdge(a, a, 1)).To(MatchError(graph.ErrSelfLoop))
		})

		It("rejects invalid weights", func() {
			Expect(g.AddEdge(a, b, -1)).To(MatchError(graph.ErrInvalidWeight))
			Expect(g.AddEdge(a, b, math.NaN())).To(MatchError(graph.ErrInvalidWeight))
			Expect(g.AddEdge(a, b, math.Inf(1))).To(MatchError(graph.ErrInvalidWeight))
		})

		It("rejects nodes from another graph", func() {
			other := graph.New(true).AddNode(doc(3))
			Expect(g.AddEdge(a, other, 1)).To(MatchError(graph.ErrForeignNode))
		})

		It("ignores the weight in the unweighted variant", func() {
			u := graph.New(false)
			x, y := u.AddNode(doc(1)), u.AddNode(doc(2))
			Expect(u.AddEdge(x, y, -7)).To(Succeed())

			w, _ := u.Weight(x, y)
			Expect(w).To(Equal(1.0))
		})
	})

	Describe("SortByCentrality", func() {
		var g *graph.Graph

		BeforeEach(func() {
			g = graph.New(false)
			for i := int64(1); i <= 5; i++ {
				g.AddNode(doc(i))
			}
			g.Node(2).Centrality = 3
			g.Node(4).Centrality = 3
			g.Node(5).Centrality = 1
		})

		It("sorts descending keeping insertion order on ties", func() {
			g.SortByCentrality(graph.Descending)
			Expect(ids(g.Nodes())).To(Equal([]int64{2, 4, 5, 1, 3}))
		})

		It("sorts ascending keeping insertion order on ties", func() {
			g.SortByCentrality(graph.Ascending)
			Expect(ids(g.Nodes())).To(Equal([]int64{1, 3, 5, 2, 4}))
		})

		It("defaults never-scored nodes to 0", func() {
			g.ResetCentrality()
			g.SortByCentrality(graph.Descending)
			Expect(ids(g.Nodes())).To(Equal([]int64{1, 2, 3, 4, 5}))
		})
	})

	Describe("ByDegree", func() {
		It("orders by degree without touching the graph order", func() {
			g := graph.New(false)
			a, b, c := g.AddNode(doc(1)), g.AddNode(doc(2)), g.AddNode(doc(3))
			Expect(g.AddEdge(b, a, 1)).To(Succeed())
			Expect(g.AddEdge(b, c, 1)).To(Succeed())

			Expect(ids(g.ByDegree())).To(Equal([]int64{2, 1, 3}))
			Expect(ids(g.Nodes())).To(Equal([]int64{1, 2, 3}))
		})
	})

	DescribeTable("ParseOrder",
		func(in string, want graph.Order, ok bool) {
			got, err := graph.ParseOrder(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("empty", "", graph.Descending, true),
		Entry("asc", "asc", graph.Ascending, true),
		Entry("ascending", "Ascending", graph.Ascending, true),
		Entry("descending", "descending", graph.Descending, true),
		Entry("bogus", "sideways", graph.Descending, false),
	)
})

var _ = Describe("FromSubjectOverlap", func() {
	docs := []document.Document{
		{ID: 1, Subjects: []int64{10, 11}},
		{ID: 2, Subjects: []int64{10, 11, 12}},
		{ID: 3, Subjects: []int64{12}},
		{ID: 4, Subjects: []int64{99}},
	}

	It("weights edges by shared subjects", func() {
		g := graph.FromSubjectOverlap(docs, true, 0)

		Expect(g.EdgeCount()).To(Equal(2))
		w, ok := g.Weight(g.Node(1), g.Node(2))
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(2.0))
		Expect(g.Degree(g.Node(4))).To(Equal(0))
	})

	It("stops at the edge budget", func() {
		g := graph.FromSubjectOverlap(docs, false, 1)
		Expect(g.EdgeCount()).To(Equal(1))
		Expect(g.Len()).To(Equal(4))
	})

	DescribeTable("shrinks the edge budget as the result set grows",
		func(n, budget int) {
			Expect(graph.EdgeBudget(n)).To(Equal(budget))
		},
		Entry("small set", 10, 1000),
		Entry("at the small bound", 30, 1000),
		Entry("medium set", 31, 750),
		Entry("at the medium bound", 50, 750),
		Entry("large set", 51, 500),
		Entry("full catalog", 5000, 500),
	)
})
