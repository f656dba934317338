// Package suggestcmder provides the suggest command listing the neighbor
// suggestions of a set of books.
package suggestcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/document"
)

const suggestLongDesc string = `Suggest books neighboring a set of books.

Suggestions are the stored Jaccard neighbors of the leading books, in the
order the books are given, without repeats and excluding the given books.
The list is capped at orchestrator.max_suggestions.

With --remote the suggestions come from a running folio API server at
client.api_target (or --api-target) instead of the local store.

Examples:
  folio suggest --ids 1
  folio suggest --ids 1,2,5
  folio suggest --ids 1,2 --remote --api-target http://localhost:8081`

const suggestShortDesc string = "Suggest neighbors of a set of books"

type suggestCommander struct {
	storage   config.StorageConfig
	apiTarget string
	remote    bool
	ids       string
}

func NewSuggestCmd() *cobra.Command {
	cmder := &suggestCommander{}

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: suggestShortDesc,
		Long:  suggestLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.storage.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.storage.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.storage.PostgresDSN)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVar(&cmder.ids, "ids", "", "Comma separated book ids")
	cmd.Flags().BoolVar(&cmder.remote, "remote", false, "Ask the folio API server instead of the local store")

	return cmd
}

func (c *suggestCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := stack.Logger(cmd)

	ids, err := document.ParseIDs(c.ids)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("--ids is required")
	}

	cfg, configDir, err := stack.Resolve(cmd, append([]string{config.FlagAPITarget}, config.StorageFlags...))
	if err != nil {
		return err
	}

	if c.remote {
		log.Debug("fetching remote suggestions", "api_target", cfg.Client.APITarget)
		suggestions, err := stack.FetchSuggestions(ctx, cfg.Client.APITarget, ids)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", stack.BookTable(suggestions))
		return nil
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

	suggestions, err := engines.Orchestrator.Suggestions(ctx, ids)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", stack.BookTable(suggestions))
	return nil
}
