// Package foliocmder assembles the folio command tree.
package foliocmder

import (
	"github.com/spf13/cobra"

	buildcmder "github.com/papercomputeco/folio/cmd/folio/build"
	configcmder "github.com/papercomputeco/folio/cmd/folio/config"
	initcmder "github.com/papercomputeco/folio/cmd/folio/init"
	rankcmder "github.com/papercomputeco/folio/cmd/folio/rank"
	searchcmder "github.com/papercomputeco/folio/cmd/folio/search"
	seedcmder "github.com/papercomputeco/folio/cmd/folio/seed"
	servecmder "github.com/papercomputeco/folio/cmd/folio/serve"
	suggestcmder "github.com/papercomputeco/folio/cmd/folio/suggest"
	tfidfcmder "github.com/papercomputeco/folio/cmd/folio/tfidf"
	versioncmder "github.com/papercomputeco/folio/cmd/version"
)

const folioLongDesc string = `Folio ranks a book catalog by its subject graph.

Prepare a store, then query it:
  folio seed       Import a catalog and its keyword files
  folio tfidf      Recompute TF-IDF scores
  folio build      Rebuild the Jaccard neighbor graph
  folio rank       Rank books by closeness or betweenness
  folio search     Find books similar to a keyword
  folio suggest    Suggest neighbors of a set of books
  folio serve      Run the HTTP API`

const folioShortDesc string = "Folio - catalog ranking and discovery"

func NewFolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "folio",
		Short:        folioShortDesc,
		Long:         folioLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .folio/ directory holding config.toml")

	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(tfidfcmder.NewTFIDFCmd())
	cmd.AddCommand(buildcmder.NewBuildCmd())
	cmd.AddCommand(rankcmder.NewRankCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(suggestcmder.NewSuggestCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
