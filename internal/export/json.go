// internal/export/json.go
package export

import (
	"encoding/json"
	"io"

	"github.com/verakocha/veriflow/pkg/types"
)

// JSONWriter writes a dataset as a JSON document carrying the schema,
// rows and assigned category.
type JSONWriter struct {
	// Compact disables indentation.
	Compact bool
}

type jsonDocument struct {
	Columns  []types.ColumnInfo `json:"columns"`
	Rows     []types.Row        `json:"rows"`
	Category types.DataCategory `json:"category,omitempty"`
}

// Format implements Writer.
func (jw *JSONWriter) Format() string { return "json" }

// Write implements Writer.
func (jw *JSONWriter) Write(w io.Writer, dataset *types.Dataset) error {
	encoder := json.NewEncoder(w)
	if !jw.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(jsonDocument{
		Columns:  dataset.Columns,
		Rows:     dataset.Rows,
		Category: dataset.Category,
	})
}
