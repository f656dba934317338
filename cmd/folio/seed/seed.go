// Package seedcmder provides the seed command importing a book catalog and
// its keyword files into the configured store.
package seedcmder

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/catalog"
	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/indexer"
	"github.com/papercomputeco/folio/pkg/storage"
)

const seedLongDesc string = `Import a book catalog into the configured store.

The catalog is a Gutendex JSON page ({"results": [...]}) or a bare array of
books. Keyword files are <id>.json token occurrence maps, filed under the
book's primary language and filtered by the per-language minimum occurrence.

Run folio tfidf and folio build afterwards to prepare ranking.

Examples:
  folio seed --catalog books.json
  folio seed --catalog books.json --keywords-dir ./keywords
  folio seed --catalog books.json --reset --storage postgres`

const seedShortDesc string = "Import a book catalog"

// ErrNoReset is returned by --reset on a store that cannot be emptied.
var ErrNoReset = errors.New("storage provider does not support --reset")

type seedCommander struct {
	flags config.StorageConfig

	catalogPath string
	keywordsDir string
	reset       bool
	thresholds  stack.Thresholds
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.flags.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.flags.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.flags.PostgresDSN)

	cmd.Flags().StringVarP(&cmder.catalogPath, "catalog", "c", "", "Path to the catalog JSON file")
	cmd.Flags().StringVarP(&cmder.keywordsDir, "keywords-dir", "k", "", "Directory of <id>.json keyword files")
	cmd.Flags().BoolVarP(&cmder.reset, "reset", "f", false, "Empty the store before seeding")
	cmder.thresholds.AddFlags(cmd)
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func (c *seedCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := stack.Logger(cmd)

	cfg, configDir, err := stack.Resolve(cmd, config.StorageFlags)
	if err != nil {
		return err
	}

	docs, err := catalog.ReadFile(c.catalogPath)
	if err != nil {
		return err
	}

	var keywords map[int64]document.OccurrenceProfile
	if c.keywordsDir != "" {
		if keywords, err = catalog.ReadKeywords(c.keywordsDir); err != nil {
			return err
		}
	}

	driver, err := stack.OpenDriver(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	if c.reset {
		resetter, ok := driver.(storage.Resetter)
		if !ok {
			return ErrNoReset
		}
		if err := cliui.Step(out, "Resetting store", func() error {
			return resetter.Reset(ctx)
		}); err != nil {
			return err
		}
	}

	ix := indexer.New(driver, indexer.Config{
		Thresholds: c.thresholds.Occurrences(),
		Logger: log,
	})

	var stats indexer.ImportStats
	if err := cliui.Step(out, "Importing catalog", func() error {
		var seedErr error
		stats, seedErr = ix.Seed(ctx, docs, keywords)
		return seedErr
	}); err != nil {
		return err
	}

	printStats(out, stats)
	return nil
}

func printStats(out io.Writer, stats indexer.ImportStats) {
	fmt.Fprintf(out, "\n  %s Seeded %s books %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(stats.Documents)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d keyword profiles, %d skipped)", stats.Profiles, stats.Skipped)),
	)
}
