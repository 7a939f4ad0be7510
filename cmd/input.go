package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/dataset"
)

// loadDataset reads a tabular file by extension. CSV files may use ';' as
// delimiter, which is what the CNPJ open-data exports ship with.
func loadDataset(ctx context.Context, path, delimiter string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()

		opts := dataset.CSVOptions{TrimSpace: true}
		if delimiter != "" {
			opts.Delimiter = rune(delimiter[0])
		}
		return dataset.ReadCSV(ctx, f, opts)
	case ".xlsx":
		return dataset.ReadXLSX(path, dataset.XLSXOptions{})
	default:
		return nil, eris.Errorf("unsupported input format: %s", path)
	}
}
