// internal/scraper/extract.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/verakocha/veriflow/pkg/types"
)

// extractRecords applies the selector set to one document. A selector
// marked Multiple defines the record boundary: one record per matched
// element with the remaining selectors scoped inside it. Without a
// Multiple selector the document yields a single aggregate record.
func extractRecords(doc *goquery.Document, selectors []types.SelectorConfig) []types.Row {
	boundary := boundarySelector(selectors)
	if boundary == nil {
		return []types.Row{aggregateRecord(doc, selectors)}
	}

	var rows []types.Row
	doc.Find(boundary.Selector).Each(func(_ int, element *goquery.Selection) {
		row := make(types.Row, len(selectors))
		for _, selector := range selectors {
			var scope *goquery.Selection
			if selector.Multiple {
				scope = element
			} else {
				scope = element.Find(selector.Selector).First()
			}
			row[selector.Name] = extractField(scope, selector)
		}
		rows = append(rows, row)
	})
	return rows
}

func boundarySelector(selectors []types.SelectorConfig) *types.SelectorConfig {
	for i := range selectors {
		if selectors[i].Multiple {
			return &selectors[i]
		}
	}
	return nil
}

func aggregateRecord(doc *goquery.Document, selectors []types.SelectorConfig) types.Row {
	row := make(types.Row, len(selectors))
	for _, selector := range selectors {
		row[selector.Name] = extractField(doc.Find(selector.Selector).First(), selector)
	}
	return row
}

// extractField reads the configured attribute or the trimmed text of
// the selection, then applies the selector's transform.
func extractField(selection *goquery.Selection, selector types.SelectorConfig) interface{} {
	if selection == nil || selection.Length() == 0 {
		return nil
	}

	var raw string
	if selector.Attribute != "" {
		raw, _ = selection.Attr(selector.Attribute)
	} else {
		raw = strings.TrimSpace(selection.Text())
	}

	return applyTransform(raw, selector.Transform)
}
