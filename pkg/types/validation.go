// pkg/types/validation.go
package types

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// RuleType identifies what a validation rule checks.
type RuleType string

const (
	RuleRequired RuleType = "required"
	RuleTypeOf   RuleType = "type"
	RuleRange    RuleType = "range"
	RuleFormat   RuleType = "format"
	RuleUnique   RuleType = "unique"
	RuleCustom   RuleType = "custom"
)

// ValidRuleTypes returns all valid rule type values
func ValidRuleTypes() []RuleType {
	return []RuleType{
		RuleRequired, RuleTypeOf, RuleRange,
		RuleFormat, RuleUnique, RuleCustom,
	}
}

// IsValid checks if the rule type is a valid value
func (rt RuleType) IsValid() bool {
	for _, valid := range ValidRuleTypes() {
		if rt == valid {
			return true
		}
	}
	return false
}

// Severity classifies how serious a validation issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationRule is a single declarative check applied per cell. Rules
// are either supplied by the caller or auto-generated from ColumnInfo.
type ValidationRule struct {
	Column   string                 `json:"column" yaml:"column"`
	Type     RuleType               `json:"type" yaml:"type"`
	Params   map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	Severity Severity               `json:"severity" yaml:"severity"`
	AutoFix  bool                   `json:"auto_fix" yaml:"auto_fix"`
	Message  string                 `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidationIssue reports one rule violation or cleaning action. Row is
// nil for dataset-level issues such as duplicate or outlier summaries.
type ValidationIssue struct {
	Row          *int        `json:"row,omitempty"`
	Column       string      `json:"column,omitempty"`
	Value        interface{} `json:"value,omitempty"`
	Rule         RuleType    `json:"rule"`
	Severity     Severity    `json:"severity"`
	Message      string      `json:"message"`
	SuggestedFix interface{} `json:"suggested_fix,omitempty"`
	Fixed        bool        `json:"fixed,omitempty"`
}

// ValidationSummary tallies issues by severity plus automatic fixes.
type ValidationSummary struct {
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Infos     int `json:"infos"`
	AutoFixed int `json:"auto_fixed"`
}

// ValidationResult is the aggregate output of a validation pass.
type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	Issues      []ValidationIssue `json:"issues"`
	Summary     ValidationSummary `json:"summary"`
	CleanedData []Row             `json:"cleaned_data,omitempty"`
}

// NullStrategy selects how empty cells are handled during cleaning.
type NullStrategy string

const (
	NullKeep         NullStrategy = "keep"
	NullRemoveRow    NullStrategy = "remove_row"
	NullFillDefault  NullStrategy = "fill_default"
	NullFillPrevious NullStrategy = "fill_previous"
	NullFillMean     NullStrategy = "fill_mean"
)

// OutlierMethod selects how numeric outlier bounds are computed.
type OutlierMethod string

const (
	OutlierIQR        OutlierMethod = "iqr"
	OutlierZScore     OutlierMethod = "zscore"
	OutlierPercentile OutlierMethod = "percentile"
)

// KeepDuplicate selects which occurrence survives de-duplication.
type KeepDuplicate string

const (
	KeepFirst KeepDuplicate = "first"
	KeepLast  KeepDuplicate = "last"
)

// CleaningOptions configures the cleaning stages of a validation pass.
type CleaningOptions struct {
	TrimStrings       bool                   `json:"trim_strings" yaml:"trim_strings"`
	RemoveExtraSpaces bool                   `json:"remove_extra_spaces" yaml:"remove_extra_spaces"`
	RemoveDuplicates  bool                   `json:"remove_duplicates" yaml:"remove_duplicates"`
	DuplicateColumns  []string               `json:"duplicate_columns,omitempty" yaml:"duplicate_columns,omitempty"`
	KeepDuplicate     KeepDuplicate          `json:"keep_duplicate" yaml:"keep_duplicate"`
	StandardizeDates  bool                   `json:"standardize_dates" yaml:"standardize_dates"`
	TargetDateFormat  string                 `json:"target_date_format" yaml:"target_date_format"`
	HandleNulls       NullStrategy           `json:"handle_nulls" yaml:"handle_nulls"`
	NullDefaults      map[string]interface{} `json:"null_defaults,omitempty" yaml:"null_defaults,omitempty"`

	// RemoveOutliers only flags and counts out-of-bounds rows; it never
	// deletes them. The row count of the cleaned data is unchanged.
	RemoveOutliers   bool          `json:"remove_outliers" yaml:"remove_outliers"`
	OutlierMethod    OutlierMethod `json:"outlier_method" yaml:"outlier_method"`
	OutlierThreshold float64       `json:"outlier_threshold" yaml:"outlier_threshold"`
}

// UnmarshalJSON implements json.Unmarshaler interface. Decoding starts
// from DefaultCleaningOptions so a partial object only overrides the
// fields it names instead of zeroing the default-on stages.
func (c *CleaningOptions) UnmarshalJSON(data []byte) error {
	type plain CleaningOptions
	merged := plain(DefaultCleaningOptions())
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	*c = CleaningOptions(merged)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface, with the same
// merge-over-defaults behavior as UnmarshalJSON.
func (c *CleaningOptions) UnmarshalYAML(value *yaml.Node) error {
	type plain CleaningOptions
	merged := plain(DefaultCleaningOptions())
	if err := value.Decode(&merged); err != nil {
		return err
	}
	*c = CleaningOptions(merged)
	return nil
}

// DefaultCleaningOptions returns the cleaning defaults: trim and space
// collapsing on, date standardization to ISO dates, nulls kept as-is.
func DefaultCleaningOptions() CleaningOptions {
	return CleaningOptions{
		TrimStrings:       true,
		RemoveExtraSpaces: true,
		RemoveDuplicates:  false,
		KeepDuplicate:     KeepFirst,
		StandardizeDates:  true,
		TargetDateFormat:  "YYYY-MM-DD",
		HandleNulls:       NullKeep,
		RemoveOutliers:    false,
		OutlierMethod:     OutlierIQR,
		OutlierThreshold:  1.5,
	}
}
