// internal/fileparser/json.go
package fileparser

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/verakocha/veriflow/pkg/types"
)

// parseJSON decodes the whole file as JSON. A non-array top-level value
// is wrapped in a single-element array; invalid JSON is a hard failure.
func (p *Parser) parseJSON(data []byte, opts ParseOptions, limit int) ([]string, []types.Row, int, error) {
	text, err := decodeText(data, opts.Encoding)
	if err != nil {
		return nil, nil, 0, err
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, nil, 0, fmt.Errorf("invalid JSON: %w", err)
	}

	items, ok := decoded.([]interface{})
	if !ok {
		items = []interface{}{decoded}
	}

	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(items) {
			items = nil
		} else {
			items = items[opts.SkipRows:]
		}
	}

	total := len(items)
	if limit < len(items) {
		items = items[:limit]
	}

	// Collect the union of keys so every row carries every column.
	keySet := make(map[string]struct{})
	rows := make([]types.Row, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			// Scalar array elements become single-column records.
			obj = map[string]interface{}{"value": item}
		}
		for key := range obj {
			keySet[key] = struct{}{}
		}
		rows = append(rows, types.Row(obj))
	}

	headers := make([]string, 0, len(keySet))
	for key := range keySet {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	for _, row := range rows {
		for _, header := range headers {
			if _, ok := row[header]; !ok {
				row[header] = nil
			}
		}
	}

	return headers, rows, total, nil
}
