package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// yamlFiles returns the sorted paths of all .yaml/.yml files directly in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returned paths are lexically sorted; subdirectories are skipped.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
