package testutils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
)

// catalogPage is CatalogFiles' Gutendex page. Subjects are headings; the
// French titles share the "France" heading.
const catalogPage = `{
  "count": 5,
  "results": [
    {"id": 1, "title": "Candide", "download_count": 300, "languages": ["fr", "en"],
     "subjects": ["Satire", "France"], "authors": [{"name": "Voltaire"}]},
    {"id": 2, "title": "Les Misérables", "download_count": 500, "languages": ["fr"],
     "subjects": ["France", "Poverty"], "authors": [{"name": "Victor Hugo"}]},
    {"id": 3, "title": "Moby Dick", "download_count": 500, "languages": ["en"],
     "subjects": ["Whales"], "authors": [{"name": "Herman Melville"}]},
    {"id": 4, "title": "", "download_count": 50, "languages": ["en"], "subjects": [], "authors": []},
    {"id": 5, "title": "Notre-Dame de Paris", "download_count": 100, "languages": ["fr"],
     "subjects": ["France"], "authors": [{"name": "Victor Hugo"}]}
  ]
}`

// CatalogFileKeywords are the keyword files CatalogFiles writes. With a
// minimum occurrence of 1 and the default threshold, the graph links 2-5
// in French and 3-4 in English.
func CatalogFileKeywords() map[int64]map[string]int {
	return map[int64]map[string]int{
		1: {"jardin": 3, "optimisme": 5, "paris": 1},
		2: {"misere": 7, "paris": 2, "cathedrale": 1},
		3: {"whale": 12, "sea": 4},
		4: {"whale": 2, "sea": 1, "ship": 3},
		5: {"paris": 9, "cathedrale": 4},
	}
}

// CatalogFiles writes a catalog page and a keywords directory under dir.
func CatalogFiles(dir string) (catalogPath, keywordsDir string) {
	catalogPath = filepath.Join(dir, "catalog.json")
	ExpectWithOffset(1, os.WriteFile(catalogPath, []byte(catalogPage), 0o600)).To(Succeed())

	keywordsDir = filepath.Join(dir, "keywords")
	ExpectWithOffset(1, os.MkdirAll(keywordsDir, 0o755)).To(Succeed())
	for id, profile := range CatalogFileKeywords() {
		data, err := json.Marshal(profile)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		name := filepath.Join(keywordsDir, strconv.FormatInt(id, 10)+".json")
		ExpectWithOffset(1, os.WriteFile(name, data, 0o600)).To(Succeed())
	}
	return catalogPath, keywordsDir
}

// RunCommand executes cmd under a bare root carrying the global folio
// flags and returns everything it printed.
func RunCommand(cmd *cobra.Command, args ...string) (string, error) {
	root := &cobra.Command{Use: "folio", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("debug", "d", false, "")
	root.PersistentFlags().String("config-dir", "", "")
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.Execute()
	return out.String(), err
}
