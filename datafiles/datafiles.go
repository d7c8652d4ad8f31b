// Package datafiles locates data files, such as impulse responses or
// preset banks, across a list of search roots.
package datafiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Search scans each root directory, in order, for regular files whose
// name ends with ext (matched case-insensitively, e.g. ".wav"). The
// scan is not recursive. Results from each root are sorted before
// being appended, so earlier roots take precedence in the combined
// list. Unreadable roots are skipped.
func Search(ext string, roots ...string) []string {
	var results []string

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}

		var found []string

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			if len(name) < len(ext) {
				continue
			}

			if strings.EqualFold(name[len(name)-len(ext):], ext) {
				found = append(found, filepath.Join(root, name))
			}
		}

		sort.Strings(found)
		results = append(results, found...)
	}

	return results
}
