// internal/validation/rules.go
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

var (
	numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	nonNumericRuns = regexp.MustCompile(`[^0-9.\-]`)

	booleanTokens = map[string]bool{
		"true": true, "yes": true, "evet": true, "1": true,
		"false": false, "no": false, "hayır": false, "0": false,
	}
)

// AutoRules derives a rule set from column statistics: one type rule per
// column, plus a required rule for columns that had no nulls in the
// sample.
func AutoRules(columns []types.ColumnInfo) []types.ValidationRule {
	rules := make([]types.ValidationRule, 0, len(columns)*2)

	for _, column := range columns {
		rules = append(rules, types.ValidationRule{
			Column:   column.Name,
			Type:     types.RuleTypeOf,
			Params:   map[string]interface{}{"expected": string(column.InferredType)},
			Severity: types.SeverityWarning,
			AutoFix:  true,
		})

		if column.NullCount == 0 {
			rules = append(rules, types.ValidationRule{
				Column:   column.Name,
				Type:     types.RuleRequired,
				Severity: types.SeverityError,
			})
		}
	}

	return rules
}

// evaluateRule checks one rule against one row and returns at most one
// issue. Unique and custom rules are not evaluated here.
func evaluateRule(rowIndex int, row types.Row, rule types.ValidationRule) *types.ValidationIssue {
	value := row[rule.Column]

	switch rule.Type {
	case types.RuleRequired:
		if !isEmptyCell(value) {
			return nil
		}
		return newIssue(rowIndex, rule, value,
			fmt.Sprintf("column %q is required but empty", rule.Column), nil)

	case types.RuleTypeOf:
		if isEmptyCell(value) {
			return nil
		}
		expected := types.InferredType(stringParam(rule.Params, "expected"))
		if satisfiesType(value, expected) {
			return nil
		}
		return newIssue(rowIndex, rule, value,
			fmt.Sprintf("column %q: value %v does not look like %s", rule.Column, value, expected),
			suggestCoercion(value, expected))

	case types.RuleRange:
		number, ok := toFloat(value)
		if !ok {
			return nil
		}
		if min, has := floatParam(rule.Params, "min"); has && number < min {
			return newIssue(rowIndex, rule, value,
				fmt.Sprintf("column %q: %v below minimum %v", rule.Column, value, min), nil)
		}
		if max, has := floatParam(rule.Params, "max"); has && number > max {
			return newIssue(rowIndex, rule, value,
				fmt.Sprintf("column %q: %v above maximum %v", rule.Column, value, max), nil)
		}
		return nil

	case types.RuleFormat:
		text, ok := value.(string)
		if !ok || text == "" {
			return nil
		}
		pattern := stringParam(rule.Params, "pattern")
		if pattern == "" {
			return nil
		}
		matched, err := regexp.MatchString(pattern, text)
		if err != nil || matched {
			return nil
		}
		return newIssue(rowIndex, rule, value,
			fmt.Sprintf("column %q: %q does not match pattern %s", rule.Column, text, pattern), nil)
	}

	return nil
}

func newIssue(rowIndex int, rule types.ValidationRule, value interface{}, message string, fix interface{}) *types.ValidationIssue {
	row := rowIndex
	if rule.Message != "" {
		message = rule.Message
	}
	return &types.ValidationIssue{
		Row:          &row,
		Column:       rule.Column,
		Value:        value,
		Rule:         rule.Type,
		Severity:     rule.Severity,
		Message:      message,
		SuggestedFix: fix,
	}
}

// satisfiesType applies a loose coercion check: stringly-typed values
// count as a type when they would coerce to it.
func satisfiesType(value interface{}, expected types.InferredType) bool {
	switch expected {
	case types.TypeNumber:
		_, ok := toFloat(value)
		return ok
	case types.TypeBoolean:
		if _, ok := value.(bool); ok {
			return true
		}
		if s, ok := value.(string); ok {
			_, known := booleanTokens[strings.ToLower(strings.TrimSpace(s))]
			return known
		}
		return false
	case types.TypeDate:
		if _, ok := value.(time.Time); ok {
			return true
		}
		if s, ok := value.(string); ok {
			_, parsed := parseDateValue(s)
			return parsed
		}
		return false
	default:
		// string, json and mixed accept anything
		return true
	}
}

// suggestCoercion builds an advisory fix; it is never applied during
// validation.
func suggestCoercion(value interface{}, expected types.InferredType) interface{} {
	text, ok := value.(string)
	if !ok {
		return nil
	}

	switch expected {
	case types.TypeNumber:
		stripped := nonNumericRuns.ReplaceAllString(text, "")
		if number, err := strconv.ParseFloat(stripped, 64); err == nil {
			return number
		}
	case types.TypeBoolean:
		if b, known := booleanTokens[strings.ToLower(strings.TrimSpace(text))]; known {
			return b
		}
	case types.TypeDate:
		if parsed, ok := parseDateValue(text); ok {
			return parsed.Format("2006-01-02")
		}
	}
	return nil
}

// isEmptyCell mirrors the parser's null semantics: nil, empty string or
// whitespace-only string.
func isEmptyCell(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if !numericPattern.MatchString(trimmed) {
			return 0, false
		}
		number, err := strconv.ParseFloat(trimmed, 64)
		return number, err == nil
	default:
		return 0, false
	}
}

func stringParam(params map[string]interface{}, key string) string {
	if params == nil {
		return ""
	}
	if s, ok := params[key].(string); ok {
		return s
	}
	return ""
}

func floatParam(params map[string]interface{}, key string) (float64, bool) {
	if params == nil {
		return 0, false
	}
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
