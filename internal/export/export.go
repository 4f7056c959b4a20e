// internal/export/export.go
// Package export serializes cleaned datasets to downstream formats.
package export

import (
	"fmt"
	"io"

	"github.com/verakocha/veriflow/pkg/types"
)

// Writer serializes one dataset to a destination format.
type Writer interface {
	Write(w io.Writer, dataset *types.Dataset) error
	Format() string
}

// NewWriter returns the writer for a format name.
func NewWriter(format string) (Writer, error) {
	switch format {
	case "csv":
		return &CSVWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// columnNames returns the dataset's column order. Writers keep this
// order instead of sorting so exports mirror the analyzed schema.
func columnNames(dataset *types.Dataset) []string {
	names := make([]string, len(dataset.Columns))
	for i, column := range dataset.Columns {
		names[i] = column.Name
	}
	return names
}

func cellString(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
