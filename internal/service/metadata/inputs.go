package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"parquet-meta/internal/storage"
)

// ExpandInputs resolves command-line arguments into input files. A
// directory contributes its *.parquet files in name order; files and
// s3:// URIs are kept as given.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if storage.IsS3Path(arg) {
			out = append(out, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && IsParquetName(e.Name()) {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}

// IsParquetName reports whether name has a .parquet extension, in any case.
func IsParquetName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".parquet")
}
