// internal/export/excel.go
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/verakocha/veriflow/pkg/types"
)

const exportSheetName = "Data"

// ExcelWriter writes a dataset as an xlsx workbook with one sheet.
type ExcelWriter struct{}

// Format implements Writer.
func (ew *ExcelWriter) Format() string { return "excel" }

// Write implements Writer.
func (ew *ExcelWriter) Write(w io.Writer, dataset *types.Dataset) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	index, err := workbook.NewSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	names := columnNames(dataset)
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := workbook.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range dataset.Rows {
		cells := make([]interface{}, len(names))
		for j, name := range names {
			cells[j] = row[name]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := workbook.SetSheetRow(exportSheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if _, err := workbook.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
