// Package buildcmder provides the build command rebuilding the Jaccard
// neighbor graph, once or on every keyword file change.
package buildcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/catalog"
	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/indexer"
)

const buildLongDesc string = `Rebuild the Jaccard neighbor graph.

Two books become neighbors when the Jaccard distance of their keyword token
sets is below the threshold. The stored graph is cleared and rebuilt per
keyword language, and a graph.built event is published per language when an
event stream is configured.

With --watch the keywords directory is watched: on every change the keyword
files are re-imported, TF-IDF scores recomputed and the graph rebuilt.

Examples:
  folio build
  folio build --threshold 0.5 --workers 8
  folio build --eventstream kafka --brokers localhost:9092
  folio build --watch --keywords-dir ./keywords`

const buildShortDesc string = "Rebuild the neighbor graph"

type buildCommander struct {
	storage     config.StorageConfig
	eventstream config.EventStreamConfig
	brokers     string
	threshold   float64
	workers     uint

	watch       bool
	keywordsDir string
	debounce    time.Duration
	thresholds  stack.Thresholds
}

var buildFlags = []string{
	config.FlagStorage, config.FlagSQLite, config.FlagPostgres,
	config.FlagThreshold, config.FlagWorkers,
	config.FlagEventStream, config.FlagBrokers, config.FlagTopic,
}

func NewBuildCmd() *cobra.Command {
	cmder := &buildCommander{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: buildShortDesc,
		Long:  buildLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.storage.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.storage.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.storage.PostgresDSN)
	config.AddFloatFlag(cmd, config.FolioFlags, config.FlagThreshold, &cmder.threshold)
	config.AddUintFlag(cmd, config.FolioFlags, config.FlagWorkers, &cmder.workers)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagEventStream, &cmder.eventstream.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagTopic, &cmder.eventstream.Topic)

	cmd.Flags().BoolVar(&cmder.watch, "watch", false, "Rebuild whenever the keywords directory changes")
	cmd.Flags().StringVarP(&cmder.keywordsDir, "keywords-dir", "k", "", "Directory of <id>.json keyword files to re-import on change")
	cmd.Flags().DurationVar(&cmder.debounce, "debounce", indexer.DefaultDebounce, "Quiet period before a watched change triggers a rebuild")
	cmder.thresholds.AddFlags(cmd)

	return cmd
}

func (c *buildCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := stack.Logger(cmd)

	if c.watch && c.keywordsDir == "" {
		return errors.New("--watch requires --keywords-dir")
	}

	cfg, configDir, err := stack.Resolve(cmd, buildFlags)
	if err != nil {
		return err
	}

	driver, err := stack.OpenDriver(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := stack.NewPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	ix := indexer.New(driver, indexer.Config{
		Threshold:  cfg.Jaccard.Threshold,
		Workers:    int(cfg.Jaccard.Workers),
		Thresholds: c.thresholds.Occurrences(),
		Publisher:  publisher,
		Logger:     log,
	})

	if !c.watch {
		return build(ctx, out, ix)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Watching"), cliui.DimStyle.Render(c.keywordsDir))

	err = indexer.Watch(ctx, c.keywordsDir, c.debounce, log, func(ctx context.Context) error {
		return c.refresh(ctx, out, ix)
	})
	if errors.Is(err, context.Canceled) {
		log.Info("stopped watching", "dir", c.keywordsDir)
		return nil
	}
	return err
}

// refresh re-imports the keyword files, recomputes TF-IDF and rebuilds.
func (c *buildCommander) refresh(ctx context.Context, out io.Writer, ix *indexer.Indexer) error {
	keywords, err := catalog.ReadKeywords(c.keywordsDir)
	if err != nil {
		return err
	}
	if err := cliui.Step(out, "Importing keywords", func() error {
		_, importErr := ix.ImportKeywords(ctx, keywords)
		return importErr
	}); err != nil {
		return err
	}
	if err := cliui.Step(out, "Recomputing TF-IDF", func() error {
		_, reindexErr := ix.ReindexAll(ctx)
		return reindexErr
	}); err != nil {
		return err
	}
	return build(ctx, out, ix)
}

func build(ctx context.Context, out io.Writer, ix *indexer.Indexer) error {
	var metas []eventstream.GraphBuildMeta
	if err := cliui.Step(out, "Building neighbor graph", func() error {
		var buildErr error
		metas, buildErr = ix.Build(ctx)
		return buildErr
	}); err != nil {
		return err
	}

	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		rows = append(rows, []string{
			m.Language,
			strconv.Itoa(m.Documents),
			strconv.Itoa(m.Edges),
			cliui.FormatDuration(time.Duration(m.DurationMs) * time.Millisecond),
		})
	}
	fmt.Fprintf(out, "\n%s\n\n", cliui.Table([]string{"LANGUAGE", "DOCUMENTS", "EDGES", "TOOK"}, rows))
	return nil
}
