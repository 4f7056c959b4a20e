// internal/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/verakocha/veriflow/pkg/types"
)

// CSVWriter writes a dataset as CSV with a header row.
type CSVWriter struct{}

// Format implements Writer.
func (cw *CSVWriter) Format() string { return "csv" }

// Write implements Writer.
func (cw *CSVWriter) Write(w io.Writer, dataset *types.Dataset) error {
	writer := csv.NewWriter(w)
	names := columnNames(dataset)

	if err := writer.Write(names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(names))
	for i, row := range dataset.Rows {
		for j, name := range names {
			record[j] = cellString(row[name])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
