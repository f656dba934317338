package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses one decimal of seconds above", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("picks the mark from the error", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("returns the error of fn and prints the final line", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")

			err := cliui.Step(&buf, "building graph", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("building graph"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})

		It("writes a single line without spinner frames off a terminal", func() {
			var buf bytes.Buffer
			Expect(cliui.Step(&buf, "importing catalog", func() error {
				time.Sleep(200 * time.Millisecond)
				return nil
			})).To(Succeed())

			Expect(strings.Count(buf.String(), "importing catalog")).To(Equal(1))
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
			Expect(buf.String()).NotTo(ContainSubstring("⣾"))
		})
	})

	Describe("KeyValue", func() {
		It("contains key and value", func() {
			out := cliui.KeyValue("documents", "42")
			Expect(out).To(ContainSubstring("documents:"))
			Expect(out).To(ContainSubstring("42"))
		})
	})

	Describe("Table", func() {
		It("renders headers and cells", func() {
			out := cliui.Table([]string{"ID", "TITLE"}, [][]string{
				{"1", "Candide"},
				{"3", "Moby Dick"},
			})
			Expect(out).To(ContainSubstring("TITLE"))
			Expect(out).To(ContainSubstring("Candide"))
			Expect(out).To(ContainSubstring("Moby Dick"))
		})

		It("renders a placeholder without rows", func() {
			Expect(cliui.Table([]string{"ID"}, nil)).To(ContainSubstring("(none)"))
		})
	})
})
