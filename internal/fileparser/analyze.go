// internal/fileparser/analyze.go
package fileparser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

// typeMajorityThreshold is the share of sampled values a type must
// reach for the column to adopt it; below that the column is mixed.
const typeMajorityThreshold = 0.8

// maxSampleValues caps ColumnInfo.SampleValues.
const maxSampleValues = 5

var (
	numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

	booleanTokens = map[string]bool{
		"true": true, "false": true,
		"yes": true, "no": true,
		"evet": true, "hayır": true,
		"1": true, "0": true,
	}
)

// dateLayouts are the accepted date shapes, checked by pattern and then
// cross-validated by an actual parse.
var dateLayouts = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02"},
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), "02/01/2006"},
	{regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`), "02.01.2006"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`), "2006-01-02T15:04:05"},
}

// AnalyzeColumns computes per-column statistics and infers each
// column's type from the given rows. extraDateFormats supplements the
// built-in date layouts with caller-supplied Go reference layouts.
func (p *Parser) AnalyzeColumns(headers []string, rows []types.Row, extraDateFormats []string) []types.ColumnInfo {
	columns := make([]types.ColumnInfo, 0, len(headers))

	for _, header := range headers {
		info := types.ColumnInfo{Name: header}
		seen := make(map[string]struct{})
		typeCounts := make(map[types.InferredType]int)
		nonNull := 0

		for _, row := range rows {
			value := row[header]
			if isNullValue(value) {
				info.NullCount++
				continue
			}
			nonNull++

			seen[fmt.Sprintf("%v", value)] = struct{}{}
			if len(info.SampleValues) < maxSampleValues {
				info.SampleValues = append(info.SampleValues, value)
			}
			typeCounts[inferValueType(value, extraDateFormats)]++
		}

		info.UniqueCount = len(seen)
		info.InferredType = resolveColumnType(typeCounts, nonNull)
		columns = append(columns, info)
	}

	return columns
}

// resolveColumnType picks the plurality type when it covers at least
// the majority threshold of values; otherwise the column is mixed.
func resolveColumnType(counts map[types.InferredType]int, total int) types.InferredType {
	if total == 0 {
		return types.TypeString
	}

	var best types.InferredType
	bestCount := -1
	for inferredType, count := range counts {
		if count > bestCount || (count == bestCount && inferredType < best) {
			best = inferredType
			bestCount = count
		}
	}

	if float64(bestCount)/float64(total) >= typeMajorityThreshold {
		return best
	}
	return types.TypeMixed
}

// inferValueType classifies one non-null value. Native Go types win;
// strings fall through token, numeric and date pattern checks.
func inferValueType(value interface{}, extraDateFormats []string) types.InferredType {
	switch v := value.(type) {
	case bool:
		return types.TypeBoolean
	case int, int32, int64, float32, float64:
		return types.TypeNumber
	case time.Time:
		return types.TypeDate
	case map[string]interface{}, []interface{}:
		return types.TypeJSON
	case string:
		return inferStringType(v, extraDateFormats)
	default:
		return types.TypeString
	}
}

func inferStringType(value string, extraDateFormats []string) types.InferredType {
	trimmed := strings.TrimSpace(value)

	if booleanTokens[strings.ToLower(trimmed)] {
		return types.TypeBoolean
	}
	if numberPattern.MatchString(trimmed) {
		return types.TypeNumber
	}
	if isDateString(trimmed, extraDateFormats) {
		return types.TypeDate
	}
	return types.TypeString
}

// isDateString reports whether the value matches one of the accepted
// date shapes and actually parses as a date.
func isDateString(value string, extraFormats []string) bool {
	for _, candidate := range dateLayouts {
		if !candidate.pattern.MatchString(value) {
			continue
		}
		if candidate.layout == "2006-01-02T15:04:05" {
			if _, err := time.Parse(time.RFC3339, value); err == nil {
				return true
			}
			normalized := strings.Replace(value, " ", "T", 1)
			if len(normalized) > 16 {
				if _, err := time.Parse("2006-01-02T15:04:05", normalized[:19]); err == nil {
					return true
				}
			}
			if _, err := time.Parse("2006-01-02T15:04", normalized[:16]); err == nil {
				return true
			}
			continue
		}
		if _, err := time.Parse(candidate.layout, value); err == nil {
			return true
		}
	}

	for _, layout := range extraFormats {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// isNullValue reports whether a cell counts as null for analysis:
// nil, empty string or whitespace-only string.
func isNullValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
