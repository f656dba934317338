// Package searchcmder provides the search command finding books similar to
// the ones whose keywords match a query.
package searchcmder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
	"github.com/papercomputeco/folio/pkg/similarity"
)

const searchLongDesc string = `Find books similar to the ones matching a keyword.

Books of the filtered catalog holding a matching keyword token seed the
search; every candidate whose TF-IDF vector reaches --min-score cosine
similarity with a seed is returned, best first. Seeds score 1.

Examples:
  folio search --keyword paris --language fr
  folio search --keyword '^whal' --keyword-type pattern --top 5
  folio search --keyword paris --sort-downloads --order ascending`

const searchShortDesc string = "Find books similar to a keyword"

type searchCommander struct {
	storage  config.StorageConfig
	filter   stack.FilterFlags
	minScore float64

	top           int
	sortDownloads bool
	order         string
}

var searchFlags = []string{config.FlagStorage, config.FlagSQLite, config.FlagPostgres, config.FlagMinScore}

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.storage.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.storage.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.storage.PostgresDSN)
	config.AddFloatFlag(cmd, config.FolioFlags, config.FlagMinScore, &cmder.minScore)
	cmder.filter.AddFlags(cmd)

	cmd.Flags().IntVarP(&cmder.top, "top", "n", 0, "Number of results (default: similarity.top_n)")
	cmd.Flags().BoolVar(&cmder.sortDownloads, "sort-downloads", false, "Re-sort the results by download count")
	cmd.Flags().StringVarP(&cmder.order, "order", "o", graph.Descending.String(), "Download sort order (descending, ascending)")

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := stack.Logger(cmd)

	filter, err := c.filter.Filter()
	if err != nil {
		return err
	}
	if filter.Keyword == "" {
		return errors.New("--keyword is required")
	}
	if c.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", c.top)
	}
	order, err := graph.ParseOrder(c.order)
	if err != nil {
		return err
	}

	cfg, configDir, err := stack.Resolve(cmd, searchFlags)
	if err != nil {
		return err
	}
	if cfg.Similarity.MinScore <= 0 || cfg.Similarity.MinScore > 1 {
		return fmt.Errorf("--min-score must be in (0, 1], got %v", cfg.Similarity.MinScore)
	}

	driver, err := stack.OpenDriver(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	keyword, mode := filter.Keyword, filter.KeywordMode
	filter.Keyword = ""

	candidates, err := driver.ListDocuments(ctx, filter)
	if err != nil {
		return err
	}

	engine := similarity.NewEngine(driver, driver, stack.SimilarityConfig(cfg), log)

	var results []similarity.Result
	if err := cliui.Step(out, fmt.Sprintf("Searching %d books for %q", len(candidates), keyword), func() error {
		var searchErr error
		results, searchErr = engine.Search(ctx, similarity.Query{
			CandidateIDs:    document.IDs(candidates),
			Keyword:         keyword,
			Mode:            mode,
			Languages:       filter.KeywordLanguages(),
			TopN:            c.top,
			SortByDownloads: c.sortDownloads,
			Ascending:       order == graph.Ascending,
		})
		return searchErr
	}); err != nil {
		return err
	}

	headers := append(stack.BookHeaders(), "SCORE")
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, append(stack.BookRow(r.Document), strconv.FormatFloat(r.Score, 'f', 3, 64)))
	}
	fmt.Fprintf(out, "\n%s\n\n", cliui.Table(headers, rows))
	return nil
}
