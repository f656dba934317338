// Package rankcmder provides the rank command ordering a set of books by
// their centrality in the neighbor graph.
package rankcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
)

const rankLongDesc string = `Rank books by closeness or betweenness centrality.

The result set is either the listed --ids or the catalog filtered by the
filter flags. It is ranked over the neighbor graph restricted to the set,
and neighbor suggestions are printed after it.

Unlike the API, the CLI always ranks synchronously, whatever the size of
the result set.

Examples:
  folio rank --language fr
  folio rank --ids 1,2,5 --mode betweenness
  folio rank --author hugo --order ascending`

const rankShortDesc string = "Rank books by centrality"

type rankCommander struct {
	storage config.StorageConfig
	filter  stack.FilterFlags

	ids   string
	mode  string
	order string
	limit int
}

func NewRankCmd() *cobra.Command {
	cmder := &rankCommander{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: rankShortDesc,
		Long:  rankLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.storage.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.storage.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.storage.PostgresDSN)
	cmder.filter.AddFlags(cmd)

	cmd.Flags().StringVar(&cmder.ids, "ids", "", "Comma separated book ids (overrides the filter flags)")
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", string(centrality.ModeCloseness), "Centrality measure (closeness, betweenness)")
	cmd.Flags().StringVarP(&cmder.order, "order", "o", graph.Descending.String(), "Rank order (descending, ascending)")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Print at most n books (0 prints all)")

	return cmd
}

func (c *rankCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := stack.Logger(cmd)

	mode, err := centrality.ParseMode(c.mode)
	if err != nil {
		return err
	}
	order, err := graph.ParseOrder(c.order)
	if err != nil {
		return err
	}
	filter, err := c.filter.Filter()
	if err != nil {
		return err
	}
	ids, err := document.ParseIDs(c.ids)
	if err != nil {
		return err
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

	engines, err := stack.NewEngines(driver, cfg, log)
	if err != nil {
		return err
	}
	defer engines.Close()

	var docs []document.Document
	if len(ids) > 0 {
		docs, err = driver.GetDocuments(ctx, ids)
	} else {
		docs, err = driver.ListDocuments(ctx, filter)
	}
	if err != nil {
		return err
	}

	var (
		ranked []document.Document
		stats  centrality.Stats
	)
	if err := cliui.Step(out, fmt.Sprintf("Ranking %d books by %s", len(docs), mode), func() error {
		var rankErr error
		ranked, stats, rankErr = engines.Ranker.Rank(ctx, docs, mode, order)
		return rankErr
	}); err != nil {
		return err
	}

	suggestions, err := engines.Orchestrator.Suggestions(ctx, document.IDs(ranked))
	if err != nil {
		return err
	}

	if c.limit > 0 && len(ranked) > c.limit {
		ranked = ranked[:c.limit]
	}

	fmt.Fprintf(out, "\n%s\n", stack.BookTable(ranked))
	fmt.Fprintf(out, "  %s  %s  %s\n",
		cliui.KeyValue("nodes", fmt.Sprint(stats.Nodes)),
		cliui.KeyValue("processed", fmt.Sprintf("%d/%d", stats.Processed, stats.Selected)),
		cliui.KeyValue("approximate", fmt.Sprint(stats.Approximate || stats.Truncated)),
	)
	fmt.Fprintf(out, "\n  %s\n%s\n\n", cliui.KeyStyle.Render("Suggestions"), stack.BookTable(suggestions))
	return nil
}
