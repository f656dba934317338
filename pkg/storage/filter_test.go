package storage_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/storage"
)

var _ = Describe("ParseMatchMode", func() {
	DescribeTable("accepts aliases",
		func(input string, expected storage.MatchMode) {
			mode, err := storage.ParseMatchMode(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(mode).To(Equal(expected))
		},
		Entry("empty", "", storage.MatchContains),
		Entry("classique", "classique", storage.MatchContains),
		Entry("substring", "Substring", storage.MatchContains),
		Entry("regex", "regex", storage.MatchPattern),
		Entry("pattern", "pattern", storage.MatchPattern),
	)

	It("rejects unknown modes", func() {
		_, err := storage.ParseMatchMode("fuzzy")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Matcher", func() {
	It("matches substrings ignoring case", func() {
		match, err := storage.Matcher("HUGO", storage.MatchContains)
		Expect(err).NotTo(HaveOccurred())
		Expect(match("Victor Hugo")).To(BeTrue())
		Expect(match("Voltaire")).To(BeFalse())
	})

	It("treats contains queries literally", func() {
		match, err := storage.Matcher("a.c", storage.MatchContains)
		Expect(err).NotTo(HaveOccurred())
		Expect(match("abc")).To(BeFalse())
		Expect(match("xa.cx")).To(BeTrue())
	})

	It("compiles patterns", func() {
		match, err := storage.Matcher("^par", storage.MatchPattern)
		Expect(err).NotTo(HaveOccurred())
		Expect(match("paris")).To(BeTrue())
		Expect(match("sparse")).To(BeFalse())
	})

	It("reports invalid patterns", func() {
		_, err := storage.Matcher("[", storage.MatchPattern)
		Expect(err).To(MatchError(storage.ErrInvalidPattern))
	})
})

var _ = Describe("Filter", func() {
	It("validates only pattern criteria", func() {
		Expect(storage.Filter{Title: "(", TitleMode: storage.MatchContains}.Validate()).To(Succeed())
		Expect(storage.Filter{Author: "(", AuthorMode: storage.MatchPattern}.Validate()).To(MatchError(storage.ErrInvalidPattern))
	})

	It("searches every keyword language for unknown languages", func() {
		Expect(storage.Filter{Language: "fr"}.KeywordLanguages()).To(Equal([]string{"fr"}))
		Expect(storage.Filter{Language: "de"}.KeywordLanguages()).To(Equal([]string{"en", "fr"}))
		Expect(storage.Filter{}.KeywordLanguages()).To(Equal([]string{"en", "fr"}))
	})
})

var _ = Describe("errors", func() {
	It("detects wrapped not found errors", func() {
		err := errors.Join(errors.New("ctx"), storage.NotFoundError{ID: 7})
		Expect(storage.IsNotFound(err)).To(BeTrue())
		Expect(storage.NotFoundError{ID: 7}.Error()).To(Equal("document not found: 7"))
	})

	It("wraps backend failures as unavailable", func() {
		cause := errors.New("disk full")
		err := storage.Unavailable("put documents", cause)
		Expect(err).To(MatchError(storage.ErrUnavailable))
		Expect(err).To(MatchError(cause))
		Expect(err.Error()).To(ContainSubstring("put documents"))
		Expect(storage.IsNotFound(err)).To(BeFalse())
	})
})
