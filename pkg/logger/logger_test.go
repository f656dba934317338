package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/logger"
)

// records decodes every JSON line of buf.
func records(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
		out = append(out, rec)
	}
	return out
}

var _ = Describe("New", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes text records at info level by default", func() {
		l := logger.New(logger.WithWriter(&buf))
		l.Info("graph built", "edges", 7)
		l.Debug("pair compared")

		Expect(buf.String()).To(ContainSubstring("graph built"))
		Expect(buf.String()).To(ContainSubstring("edges=7"))
		Expect(buf.String()).NotTo(ContainSubstring("pair compared"))
	})

	DescribeTable("debug level across handlers",
		func(jsonOut, pretty bool) {
			l := logger.New(
				logger.WithWriter(&buf),
				logger.WithJSON(jsonOut),
				logger.WithPretty(pretty),
				logger.WithDebug(true),
			)
			l.Debug("source truncated", "processed", 3)
			Expect(buf.String()).To(ContainSubstring("source truncated"))
		},
		Entry("text", false, false),
		Entry("json", true, false),
		Entry("pretty", false, true),
	)

	It("hides debug records on the pretty handler without WithDebug", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
		l.Debug("source truncated")
		Expect(buf.String()).To(BeEmpty())
	})

	It("writes one JSON object per record", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("similarity search", "keyword", "whale", "results", 2)
		l.Warn("suggestions truncated", "seed", int64(4))

		recs := records(&buf)
		Expect(recs).To(HaveLen(2))
		Expect(recs[0]["msg"]).To(Equal("similarity search"))
		Expect(recs[0]["keyword"]).To(Equal("whale"))
		Expect(recs[0]["results"]).To(BeNumerically("==", 2))
		Expect(recs[1]["level"]).To(Equal("WARN"))
	})

	It("prefers the pretty handler over JSON", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true))
		l.Info("serving", "listen", ":8081")
		Expect(buf.String()).NotTo(HavePrefix("{"))
		Expect(buf.String()).To(ContainSubstring("serving"))
	})

	It("adds the call site with WithSource", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("located")
		Expect(records(&buf)[0]).To(HaveKey(slog.SourceKey))
	})

	It("copies records to every writer", func() {
		var other bytes.Buffer
		l := logger.New(logger.WithWriters(&buf, &other))
		l.Info("seeded")

		Expect(buf.String()).To(ContainSubstring("seeded"))
		Expect(other.String()).To(Equal(buf.String()))
	})

	It("nests group attributes and keeps bound ones", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).
			With("component", "orchestrator").
			WithGroup("request")
		l.Info("resolved", "mode", "closeness")

		rec := records(&buf)[0]
		Expect(rec["component"]).To(Equal("orchestrator"))
		Expect(rec["request"]).To(HaveKeyWithValue("mode", "closeness"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(h.Enabled(context.Background(), level)).To(BeFalse())
		}
	})
})

var _ = Describe("ForCLI", func() {
	It("enables debug records when asked", func() {
		Expect(logger.ForCLI(true).Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		Expect(logger.ForCLI(false).Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
	})
})

var _ = Describe("Multi", func() {
	It("writes to every logger", func() {
		var text, js bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
		)
		multi.Info("context done, shutting down")

		Expect(text.String()).To(ContainSubstring("context done, shutting down"))
		Expect(records(&js)[0]["msg"]).To(Equal("context done, shutting down"))
	})

	It("honors the level of each logger", func() {
		var quiet, verbose bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&quiet)),
			logger.New(logger.WithWriter(&verbose), logger.WithDebug(true)),
		)

		Expect(multi.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		multi.Debug("pair compared")

		Expect(quiet.String()).To(BeEmpty())
		Expect(verbose.String()).To(ContainSubstring("pair compared"))
	})

	It("carries With and WithGroup to every logger", func() {
		var a, b bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		).With("job", "rank").WithGroup("stats")
		multi.Info("ranked", "sources", 5)

		for _, buf := range []*bytes.Buffer{&a, &b} {
			rec := records(buf)[0]
			Expect(rec["job"]).To(Equal("rank"))
			Expect(rec["stats"]).To(HaveKeyWithValue("sources", BeNumerically("==", 5)))
		}
	})

	It("keeps writing after a failing writer", func() {
		var ok bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(failingWriter{}), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&ok), logger.WithJSON(true)),
		)
		err := multi.Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "kept", 0))

		Expect(err).To(MatchError(errDiskFull))
		Expect(ok.String()).To(ContainSubstring("kept"))
	})
})

var errDiskFull = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }
