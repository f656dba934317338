package stack

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/pkg/storage"
)

// FilterFlags holds the catalog filter flags shared by the query commands.
// The *Type fields take contains (default) or pattern.
type FilterFlags struct {
	Language    string
	Author      string
	AuthorType  string
	Title       string
	TitleType   string
	Keyword     string
	KeywordType string
}

// AddFlags registers the filter flags on cmd.
func (f *FilterFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Language, "language", "", "Language code (e.g. en, fr)")
	cmd.Flags().StringVar(&f.Author, "author", "", "Author name criterion")
	cmd.Flags().StringVar(&f.AuthorType, "author-type", "", "Author match mode (contains, pattern)")
	cmd.Flags().StringVar(&f.Title, "title", "", "Title criterion")
	cmd.Flags().StringVar(&f.TitleType, "title-type", "", "Title match mode (contains, pattern)")
	cmd.Flags().StringVar(&f.Keyword, "keyword", "", "Keyword token criterion")
	cmd.Flags().StringVar(&f.KeywordType, "keyword-type", "", "Keyword match mode (contains, pattern)")
}

// Filter returns the validated storage filter.
func (f FilterFlags) Filter() (storage.Filter, error) {
	out := storage.Filter{
		Language: f.Language,
		Author:   f.Author,
		Title:    f.Title,
		Keyword:  f.Keyword,
	}

	var err error
	if out.AuthorMode, err = storage.ParseMatchMode(f.AuthorType); err != nil {
		return out, err
	}
	if out.TitleMode, err = storage.ParseMatchMode(f.TitleType); err != nil {
		return out, err
	}
	if out.KeywordMode, err = storage.ParseMatchMode(f.KeywordType); err != nil {
		return out, err
	}
	return out, out.Validate()
}
