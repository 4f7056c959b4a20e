// internal/validation/validation.go
// Package validation applies declarative data quality rules per cell and
// optionally produces a cleaned copy of the dataset. Single rule or cell
// failures never abort a pass; they accumulate as issues.
package validation

import (
	"go.uber.org/zap"

	"github.com/verakocha/veriflow/pkg/types"
)

// Pipeline is a stateless validator. Instances are cheap; create one per
// use or share freely.
type Pipeline struct {
	logger *zap.Logger
}

// NewPipeline creates a validation pipeline.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger}
}

// Validate evaluates the rules row by row, then runs the cleaning stages
// when options are given. When rules is nil a rule set is auto-generated
// from the column statistics. Type-fix suggestions are advisory and
// never applied here; autoFixed counts come from de-duplication and
// null filling only.
func (p *Pipeline) Validate(data []types.Row, columns []types.ColumnInfo, rules []types.ValidationRule, opts *types.CleaningOptions) *types.ValidationResult {
	if rules == nil {
		rules = AutoRules(columns)
	}

	result := &types.ValidationResult{
		TotalRows: len(data),
		Issues:    []types.ValidationIssue{},
	}

	for rowIndex, row := range data {
		for _, rule := range rules {
			if issue := evaluateRule(rowIndex, row, rule); issue != nil {
				result.Issues = append(result.Issues, *issue)
			}
		}
	}

	if opts != nil {
		result.CleanedData = clean(data, columns, *opts, &result.Issues, &result.Summary)
	}

	errorRows := map[int]struct{}{}
	for _, issue := range result.Issues {
		switch issue.Severity {
		case types.SeverityError:
			result.Summary.Errors++
			if issue.Row != nil {
				errorRows[*issue.Row] = struct{}{}
			}
		case types.SeverityWarning:
			result.Summary.Warnings++
		case types.SeverityInfo:
			result.Summary.Infos++
		}
	}

	result.IsValid = result.Summary.Errors == 0
	result.ValidRows = result.TotalRows - len(errorRows)

	p.logger.Debug("validation pass finished",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("valid_rows", result.ValidRows),
		zap.Int("errors", result.Summary.Errors),
		zap.Int("warnings", result.Summary.Warnings),
		zap.Int("auto_fixed", result.Summary.AutoFixed),
	)

	return result
}

// QuickValidate tallies required and type violations without building
// the issue list or cleaning anything.
func (p *Pipeline) QuickValidate(data []types.Row, columns []types.ColumnInfo) (errors, warnings int) {
	rules := AutoRules(columns)

	for rowIndex, row := range data {
		for _, rule := range rules {
			if rule.Type != types.RuleRequired && rule.Type != types.RuleTypeOf {
				continue
			}
			issue := evaluateRule(rowIndex, row, rule)
			if issue == nil {
				continue
			}
			switch issue.Severity {
			case types.SeverityError:
				errors++
			case types.SeverityWarning:
				warnings++
			}
		}
	}
	return errors, warnings
}
