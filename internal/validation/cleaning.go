// internal/validation/cleaning.go
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

// dateParseLayouts are the layouts tried when reparsing a date cell for
// standardization, most specific first.
var dateParseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
}

// clean runs the enabled cleaning stages in their fixed order and
// returns the cleaned copy. Issues and summary counters for cleaning
// actions are appended in place.
func clean(data []types.Row, columns []types.ColumnInfo, opts types.CleaningOptions, issues *[]types.ValidationIssue, summary *types.ValidationSummary) []types.Row {
	cleaned := cloneRows(data)

	if opts.TrimStrings {
		applyToStrings(cleaned, strings.TrimSpace)
	}
	if opts.RemoveExtraSpaces {
		applyToStrings(cleaned, collapseSpaces)
	}
	if opts.RemoveDuplicates {
		before := len(cleaned)
		cleaned = removeDuplicates(cleaned, columns, opts.DuplicateColumns, opts.KeepDuplicate)
		if removed := before - len(cleaned); removed > 0 {
			summary.AutoFixed += removed
			*issues = append(*issues, types.ValidationIssue{
				Rule:     types.RuleUnique,
				Severity: types.SeverityInfo,
				Message:  fmt.Sprintf("removed %d duplicate rows", removed),
				Fixed:    true,
			})
		}
	}
	if opts.StandardizeDates {
		standardizeDates(cleaned, columns, opts.TargetDateFormat)
	}
	cleaned = handleNulls(cleaned, columns, opts, summary)
	if opts.RemoveOutliers {
		flagOutliers(cleaned, columns, opts, issues)
	}

	return cleaned
}

func cloneRows(data []types.Row) []types.Row {
	cloned := make([]types.Row, len(data))
	for i, row := range data {
		copied := make(types.Row, len(row))
		for key, value := range row {
			copied[key] = value
		}
		cloned[i] = copied
	}
	return cloned
}

func applyToStrings(data []types.Row, transform func(string) string) {
	for _, row := range data {
		for key, value := range row {
			if s, ok := value.(string); ok {
				row[key] = transform(s)
			}
		}
	}
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// removeDuplicates dedupes by a composite key over the selected columns.
// keep=last is implemented by reversing before and after the scan so the
// scan itself always keeps the first occurrence it sees.
func removeDuplicates(data []types.Row, columns []types.ColumnInfo, keyColumns []string, keep types.KeepDuplicate) []types.Row {
	if len(keyColumns) == 0 {
		keyColumns = make([]string, len(columns))
		for i, column := range columns {
			keyColumns[i] = column.Name
		}
	}

	rows := data
	if keep == types.KeepLast {
		rows = reverseRows(rows)
	}

	seen := make(map[string]struct{}, len(rows))
	result := make([]types.Row, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(keyColumns))
		for i, column := range keyColumns {
			parts[i] = fmt.Sprintf("%v", row[column])
		}
		key := strings.Join(parts, "|")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, row)
	}

	if keep == types.KeepLast {
		result = reverseRows(result)
	}
	return result
}

func reverseRows(data []types.Row) []types.Row {
	reversed := make([]types.Row, len(data))
	for i, row := range data {
		reversed[len(data)-1-i] = row
	}
	return reversed
}

// standardizeDates reformats every parseable value in date columns using
// a token substitution formatter over the target format.
func standardizeDates(data []types.Row, columns []types.ColumnInfo, targetFormat string) {
	if targetFormat == "" {
		targetFormat = "YYYY-MM-DD"
	}

	for _, column := range columns {
		if column.InferredType != types.TypeDate {
			continue
		}
		for _, row := range data {
			switch v := row[column.Name].(type) {
			case time.Time:
				row[column.Name] = formatDateTokens(v, targetFormat)
			case string:
				if parsed, ok := parseDateValue(v); ok {
					row[column.Name] = formatDateTokens(parsed, targetFormat)
				}
			}
		}
	}
}

func parseDateValue(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateParseLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// formatDateTokens supports the YYYY, MM, DD, HH, mm and ss tokens.
func formatDateTokens(t time.Time, format string) string {
	replacer := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", t.Year()),
		"MM", fmt.Sprintf("%02d", int(t.Month())),
		"DD", fmt.Sprintf("%02d", t.Day()),
		"HH", fmt.Sprintf("%02d", t.Hour()),
		"mm", fmt.Sprintf("%02d", t.Minute()),
		"ss", fmt.Sprintf("%02d", t.Second()),
	)
	return replacer.Replace(format)
}

// handleNulls applies the configured strategy. Every substitution
// increments the autoFixed counter; remove_row drops whole rows instead.
func handleNulls(data []types.Row, columns []types.ColumnInfo, opts types.CleaningOptions, summary *types.ValidationSummary) []types.Row {
	switch opts.HandleNulls {
	case types.NullRemoveRow:
		kept := make([]types.Row, 0, len(data))
		for _, row := range data {
			if rowHasEmptyCell(row, columns) {
				continue
			}
			kept = append(kept, row)
		}
		return kept

	case types.NullFillDefault:
		for _, row := range data {
			for _, column := range columns {
				if !isEmptyCell(row[column.Name]) {
					continue
				}
				fallback, ok := opts.NullDefaults[column.Name]
				if !ok {
					continue
				}
				row[column.Name] = fallback
				summary.AutoFixed++
			}
		}
		return data

	case types.NullFillPrevious:
		carry := make(map[string]interface{}, len(columns))
		for _, row := range data {
			for _, column := range columns {
				value := row[column.Name]
				if isEmptyCell(value) {
					if previous, ok := carry[column.Name]; ok {
						row[column.Name] = previous
						summary.AutoFixed++
					}
					continue
				}
				carry[column.Name] = value
			}
		}
		return data

	case types.NullFillMean:
		means := columnMeans(data, columns)
		for _, row := range data {
			for _, column := range columns {
				if !isEmptyCell(row[column.Name]) {
					continue
				}
				mean, ok := means[column.Name]
				if !ok {
					continue
				}
				row[column.Name] = mean
				summary.AutoFixed++
			}
		}
		return data

	default:
		return data
	}
}

func rowHasEmptyCell(row types.Row, columns []types.ColumnInfo) bool {
	for _, column := range columns {
		if isEmptyCell(row[column.Name]) {
			return true
		}
	}
	return false
}

func columnMeans(data []types.Row, columns []types.ColumnInfo) map[string]float64 {
	means := make(map[string]float64)
	for _, column := range columns {
		if column.InferredType != types.TypeNumber {
			continue
		}
		sum, count := 0.0, 0
		for _, row := range data {
			if number, ok := toFloat(row[column.Name]); ok {
				sum += number
				count++
			}
		}
		if count > 0 {
			means[column.Name] = sum / float64(count)
		}
	}
	return means
}

// flagOutliers computes per-column bounds and reports one aggregate
// warning with the number of rows holding at least one out-of-bounds
// value. Rows are never removed.
func flagOutliers(data []types.Row, columns []types.ColumnInfo, opts types.CleaningOptions, issues *[]types.ValidationIssue) {
	threshold := opts.OutlierThreshold
	if threshold == 0 {
		threshold = 1.5
	}

	flagged := make(map[int]struct{})
	for _, column := range columns {
		if column.InferredType != types.TypeNumber {
			continue
		}

		values := make([]float64, 0, len(data))
		for _, row := range data {
			if number, ok := toFloat(row[column.Name]); ok {
				values = append(values, number)
			}
		}
		if len(values) < 4 {
			continue
		}

		lower, upper, ok := outlierBounds(values, opts.OutlierMethod, threshold)
		if !ok {
			continue
		}

		for i, row := range data {
			if number, numeric := toFloat(row[column.Name]); numeric {
				if number < lower || number > upper {
					flagged[i] = struct{}{}
				}
			}
		}
	}

	if len(flagged) > 0 {
		*issues = append(*issues, types.ValidationIssue{
			Rule:     types.RuleRange,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("flagged %d rows with outlier values (%s)", len(flagged), opts.OutlierMethod),
		})
	}
}

func outlierBounds(values []float64, method types.OutlierMethod, k float64) (float64, float64, bool) {
	switch method {
	case types.OutlierZScore:
		mean, stddev := meanStddev(values)
		if stddev == 0 {
			return 0, 0, false
		}
		return mean - k*stddev, mean + k*stddev, true

	case types.OutlierPercentile:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		return quantile(sorted, k/100), quantile(sorted, 1-k/100), true

	default: // iqr
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		return q1 - k*iqr, q3 + k*iqr, true
	}
}

func meanStddev(values []float64) (float64, float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}

// quantile picks the order statistic at position p over a sorted slice.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(p * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
