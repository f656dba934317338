package stack

import (
	"strconv"
	"strings"

	"github.com/papercomputeco/folio/pkg/cliui"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/utils"
)

// maxTitle is the display width a title is cut to.
const maxTitle = 48

// BookTable renders docs as a table.
func BookTable(docs []document.Document) string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, BookRow(d))
	}
	return cliui.Table(BookHeaders(), rows)
}

// BookHeaders are the column names of BookRow.
func BookHeaders() []string {
	return []string{"ID", "TITLE", "AUTHORS", "LANG", "DOWNLOADS"}
}

// BookRow is the table row of one document.
func BookRow(d document.Document) []string {
	return []string{
		strconv.FormatInt(d.ID, 10),
		utils.Truncate(d.Title, maxTitle),
		strings.Join(d.Authors, ", "),
		strings.Join(d.Languages, ","),
		strconv.Itoa(d.DownloadCount),
	}
}
