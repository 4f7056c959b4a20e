// internal/fileparser/excel.go
package fileparser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/verakocha/veriflow/pkg/types"
)

// parseExcel loads a workbook, selects the configured or first sheet
// and converts it to row records. Short rows are null-filled to the
// header width; the reported total is the sheet's full data row count.
func (p *Parser) parseExcel(data []byte, opts ParseOptions, limit int) ([]string, []types.Row, int, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, 0, fmt.Errorf("workbook contains no sheets")
	}

	sheet := opts.SheetName
	if sheet == "" {
		sheet = sheets[0]
	} else {
		found := false
		for _, name := range sheets {
			if name == sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, 0, fmt.Errorf("sheet %q not found in workbook", sheet)
		}
	}

	cells, err := file.GetRows(sheet)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(cells) {
			cells = nil
		} else {
			cells = cells[opts.SkipRows:]
		}
	}
	if len(cells) == 0 {
		return nil, nil, 0, fmt.Errorf("sheet %q contains no data", sheet)
	}

	var headers []string
	dataCells := cells
	if opts.HasHeader {
		headers = make([]string, len(cells[0]))
		copy(headers, cells[0])
		for i, header := range headers {
			if header == "" {
				headers[i] = fmt.Sprintf("Column_%d", i+1)
			}
		}
		dataCells = cells[1:]
	} else {
		headers = synthesizeHeaders(len(cells[0]))
	}

	total := len(dataCells)
	if limit < len(dataCells) {
		dataCells = dataCells[:limit]
	}

	rows := make([]types.Row, 0, len(dataCells))
	for _, record := range dataCells {
		row := make(types.Row, len(headers))
		for i, header := range headers {
			if i < len(record) && record[i] != "" {
				row[header] = record[i]
			} else {
				row[header] = nil
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, total, nil
}
