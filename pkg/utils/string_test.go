package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("cuts with an ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a…"))
	})

	It("counts runes rather than bytes", func() {
		Expect(Truncate("Les Misérables", 14)).To(Equal("Les Misérables"))
		Expect(Truncate("Misérables", 5)).To(Equal("Misé…"))
	})

	It("returns an empty string for a non-positive limit", func() {
		Expect(Truncate("abc", 0)).To(BeEmpty())
	})
})
