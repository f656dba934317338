// Package tfidfcmder provides the tfidf command recomputing the TF-IDF
// scores of every stored keyword profile.
package tfidfcmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/indexer"
)

const tfidfLongDesc string = `Recompute TF-IDF scores for every keyword language.

Scores are smoothed TF-IDF weights normalized per document, computed over
the stored occurrence profiles of each language and written in batches.

Examples:
  folio tfidf
  folio tfidf --batch-size 500 --max-features 20000`

const tfidfShortDesc string = "Recompute TF-IDF scores"

type tfidfCommander struct {
	flags config.StorageConfig

	batchSize   int
	maxFeatures int
}

func NewTFIDFCmd() *cobra.Command {
	cmder := &tfidfCommander{}

	cmd := &cobra.Command{
		Use:   "tfidf",
		Short: tfidfShortDesc,
		Long:  tfidfLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.flags.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.flags.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.flags.PostgresDSN)

	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", indexer.DefaultBatchSize, "Documents written per batch")
	cmd.Flags().IntVar(&cmder.maxFeatures, "max-features", 0, "Cap on the vocabulary size (0 keeps every token)")

	return cmd
}

func (c *tfidfCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := stack.Logger(cmd)

	if c.batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", c.batchSize)
	}
	if c.maxFeatures < 0 {
		return fmt.Errorf("--max-features must not be negative, got %d", c.maxFeatures)
	}

	cfg, configDir, err := stack.Resolve(cmd, config.StorageFlags)
	if err != nil {
		return err
	}

	driver, err := stack.OpenDriver(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	ix := indexer.New(driver, indexer.Config{
		BatchSize:   c.batchSize,
		MaxFeatures: c.maxFeatures,
		Logger:      log,
	})

	var scored map[string]int
	if err := cliui.Step(out, "Recomputing TF-IDF", func() error {
		var reindexErr error
		scored, reindexErr = ix.ReindexAll(ctx)
		return reindexErr
	}); err != nil {
		return err
	}

	rows := make([][]string, 0, len(scored))
	for _, lang := range ix.Languages() {
		rows = append(rows, []string{lang, strconv.Itoa(scored[lang])})
	}
	fmt.Fprintf(out, "\n%s\n\n", cliui.Table([]string{"LANGUAGE", "DOCUMENTS"}, rows))
	return nil
}
