// internal/scraper/transform.go
package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	transformText      = "text"
	transformHTML      = "html"
	transformNumber    = "number"
	transformDate      = "date"
	transformTrim      = "trim"
	transformLowercase = "lowercase"
	transformUppercase = "uppercase"
)

var nonNumericChars = regexp.MustCompile(`[^0-9.\-]`)

// fieldDateLayouts are the layouts tried when normalizing a scraped
// date field.
var fieldDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"January 2, 2006",
	"2 January 2006",
}

func validTransform(transform string) bool {
	switch transform {
	case "", transformText, transformHTML, transformNumber,
		transformDate, transformTrim, transformLowercase, transformUppercase:
		return true
	default:
		return false
	}
}

// applyTransform converts a raw extracted string per the declared
// transform. Number yields a float64 or nil; date yields an ISO-8601
// date string or the original value when unparseable.
func applyTransform(raw, transform string) interface{} {
	switch transform {
	case transformNumber:
		stripped := nonNumericChars.ReplaceAllString(raw, "")
		number, err := strconv.ParseFloat(stripped, 64)
		if err != nil {
			return nil
		}
		return number

	case transformDate:
		trimmed := strings.TrimSpace(raw)
		for _, layout := range fieldDateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.Format("2006-01-02")
			}
		}
		return raw

	case transformTrim:
		return strings.TrimSpace(raw)

	case transformLowercase:
		return strings.ToLower(raw)

	case transformUppercase:
		return strings.ToUpper(raw)

	default:
		// text and html are identity over the extracted value
		return raw
	}
}
