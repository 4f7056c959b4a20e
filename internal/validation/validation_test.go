// internal/validation/validation_test.go
package validation

import (
	"encoding/json"
	"testing"

	"github.com/verakocha/veriflow/pkg/types"
)

func numberColumn(name string) types.ColumnInfo {
	return types.ColumnInfo{Name: name, InferredType: types.TypeNumber, NullCount: 1}
}

func stringColumn(name string) types.ColumnInfo {
	return types.ColumnInfo{Name: name, InferredType: types.TypeString, NullCount: 1}
}

func TestAutoRules(t *testing.T) {
	columns := []types.ColumnInfo{
		{Name: "id", InferredType: types.TypeNumber, NullCount: 0},
		{Name: "note", InferredType: types.TypeString, NullCount: 3},
	}

	rules := AutoRules(columns)

	if len(rules) != 3 {
		t.Fatalf("expected 3 rules (2 type + 1 required), got %d", len(rules))
	}

	var requiredCols []string
	for _, rule := range rules {
		if rule.Type == types.RuleRequired {
			requiredCols = append(requiredCols, rule.Column)
			if rule.Severity != types.SeverityError {
				t.Errorf("required rule should be error severity, got %s", rule.Severity)
			}
		}
		if rule.Type == types.RuleTypeOf && rule.Severity != types.SeverityWarning {
			t.Errorf("type rule should be warning severity, got %s", rule.Severity)
		}
	}
	if len(requiredCols) != 1 || requiredCols[0] != "id" {
		t.Errorf("expected required rule only for id, got %v", requiredCols)
	}
}

func TestRequiredAndTypeIssues(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{
		{Name: "name", InferredType: types.TypeString, NullCount: 0},
		{Name: "price", InferredType: types.TypeNumber, NullCount: 1},
	}
	data := []types.Row{
		{"name": "Widget", "price": "19.99"},
		{"name": "  ", "price": "abc"},
	}

	result := p.Validate(data, columns, nil, nil)

	if result.IsValid {
		t.Error("expected invalid result")
	}
	if result.Summary.Errors != 1 {
		t.Errorf("expected 1 error (missing name), got %d", result.Summary.Errors)
	}
	if result.Summary.Warnings != 1 {
		t.Errorf("expected 1 warning (bad price), got %d", result.Summary.Warnings)
	}
	if result.ValidRows != 1 {
		t.Errorf("expected 1 valid row, got %d", result.ValidRows)
	}
	if result.CleanedData != nil {
		t.Error("no cleaning options given, cleanedData should be nil")
	}
}

func TestValidRowsCountsDistinctRows(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{
		{Name: "id", InferredType: types.TypeString, NullCount: 0},
		{Name: "name", InferredType: types.TypeString, NullCount: 0},
	}
	data := []types.Row{{"id": "", "name": ""}}

	result := p.Validate(data, columns, nil, nil)

	if result.Summary.Errors != 2 {
		t.Fatalf("expected 2 required errors, got %d", result.Summary.Errors)
	}
	if result.ValidRows != 0 {
		t.Errorf("one failing row should leave 0 valid rows, got %d", result.ValidRows)
	}
	if result.ValidRows < 0 || result.ValidRows > result.TotalRows {
		t.Errorf("validRows out of range: %d of %d total", result.ValidRows, result.TotalRows)
	}
}

func TestTypeRuleSuggestedFix(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{numberColumn("price")}
	data := []types.Row{{"price": "$1,250.50"}}

	result := p.Validate(data, columns, nil, nil)

	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(result.Issues))
	}
	fix, ok := result.Issues[0].SuggestedFix.(float64)
	if !ok || fix != 1250.50 {
		t.Errorf("expected suggested fix 1250.50, got %v", result.Issues[0].SuggestedFix)
	}
	if result.Summary.AutoFixed != 0 {
		t.Errorf("type suggestions must not count as auto fixes, got %d", result.Summary.AutoFixed)
	}
}

func TestRangeAndFormatRules(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{numberColumn("age"), stringColumn("code")}
	rules := []types.ValidationRule{
		{Column: "age", Type: types.RuleRange, Severity: types.SeverityError,
			Params: map[string]interface{}{"min": 0.0, "max": 120.0}},
		{Column: "code", Type: types.RuleFormat, Severity: types.SeverityWarning,
			Params: map[string]interface{}{"pattern": `^[A-Z]{3}-\d+$`}},
	}
	data := []types.Row{
		{"age": "42", "code": "ABC-17"},
		{"age": "150", "code": "bad code"},
		{"age": "not a number", "code": ""},
	}

	result := p.Validate(data, columns, rules, nil)

	if result.Summary.Errors != 1 {
		t.Errorf("expected 1 range error, got %d", result.Summary.Errors)
	}
	if result.Summary.Warnings != 1 {
		t.Errorf("expected 1 format warning, got %d", result.Summary.Warnings)
	}
}

func TestCleaningTrimAndSpaces(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{stringColumn("name")}
	data := []types.Row{{"name": "  Ada   Lovelace  "}}
	opts := types.DefaultCleaningOptions()

	result := p.Validate(data, columns, nil, &opts)

	if got := result.CleanedData[0]["name"]; got != "Ada Lovelace" {
		t.Errorf("expected collapsed string, got %q", got)
	}
	if data[0]["name"] != "  Ada   Lovelace  " {
		t.Error("input rows must not be mutated")
	}
}

func TestCleaningDecodedPartialOptionsKeepDefaults(t *testing.T) {
	p := NewPipeline(nil)

	var opts types.CleaningOptions
	if err := json.Unmarshal([]byte(`{"handle_nulls":"keep"}`), &opts); err != nil {
		t.Fatalf("decode options: %v", err)
	}

	columns := []types.ColumnInfo{stringColumn("name")}
	data := []types.Row{{"name": "  padded   value  "}}

	result := p.Validate(data, columns, nil, &opts)

	if got := result.CleanedData[0]["name"]; got != "padded value" {
		t.Errorf("default trim and space collapse must survive a partial decode, got %q", got)
	}
}

func TestRemoveRowConservation(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{stringColumn("a"), stringColumn("b")}
	data := []types.Row{
		{"a": "1", "b": "x"},
		{"a": "", "b": "y"},
		{"a": "3", "b": ""},
		{"a": "4", "b": "w"},
	}
	opts := types.DefaultCleaningOptions()
	opts.HandleNulls = types.NullRemoveRow

	result := p.Validate(data, columns, nil, &opts)

	removed := len(data) - len(result.CleanedData)
	if len(result.CleanedData)+removed != len(data) {
		t.Errorf("row conservation broken: %d cleaned + %d removed != %d input",
			len(result.CleanedData), removed, len(data))
	}
	if len(result.CleanedData) != 2 {
		t.Errorf("expected 2 surviving rows, got %d", len(result.CleanedData))
	}
}

func TestDeduplicateKeepFirstAndLast(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{stringColumn("id"), stringColumn("v")}
	data := []types.Row{
		{"id": "a", "v": "first"},
		{"id": "b", "v": "only"},
		{"id": "a", "v": "last"},
	}

	opts := types.DefaultCleaningOptions()
	opts.RemoveDuplicates = true
	opts.DuplicateColumns = []string{"id"}

	opts.KeepDuplicate = types.KeepFirst
	result := p.Validate(data, columns, nil, &opts)
	if len(result.CleanedData) != 2 || result.CleanedData[0]["v"] != "first" {
		t.Errorf("keep=first: expected first occurrence kept, got %v", result.CleanedData)
	}
	if result.Summary.AutoFixed != 1 {
		t.Errorf("expected 1 auto fix for removed duplicate, got %d", result.Summary.AutoFixed)
	}

	opts.KeepDuplicate = types.KeepLast
	result = p.Validate(data, columns, nil, &opts)
	if len(result.CleanedData) != 2 {
		t.Fatalf("keep=last: expected 2 rows, got %d", len(result.CleanedData))
	}
	var kept string
	for _, row := range result.CleanedData {
		if row["id"] == "a" {
			kept, _ = row["v"].(string)
		}
	}
	if kept != "last" {
		t.Errorf("keep=last: expected last occurrence kept, got %q", kept)
	}
}

func TestStandardizeDates(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{{Name: "signup", InferredType: types.TypeDate, NullCount: 1}}
	data := []types.Row{
		{"signup": "15/03/2024"},
		{"signup": "2024-03-16"},
		{"signup": "not a date"},
	}
	opts := types.DefaultCleaningOptions()

	result := p.Validate(data, columns, nil, &opts)

	if got := result.CleanedData[0]["signup"]; got != "2024-03-15" {
		t.Errorf("expected 2024-03-15, got %v", got)
	}
	if got := result.CleanedData[1]["signup"]; got != "2024-03-16" {
		t.Errorf("expected 2024-03-16, got %v", got)
	}
	if got := result.CleanedData[2]["signup"]; got != "not a date" {
		t.Errorf("unparseable values must pass through, got %v", got)
	}
}

func TestDateTokenFormatter(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{{Name: "d", InferredType: types.TypeDate, NullCount: 1}}
	data := []types.Row{{"d": "2024-03-15"}}
	opts := types.DefaultCleaningOptions()
	opts.TargetDateFormat = "DD.MM.YYYY"

	result := p.Validate(data, columns, nil, &opts)

	if got := result.CleanedData[0]["d"]; got != "15.03.2024" {
		t.Errorf("expected 15.03.2024, got %v", got)
	}
}

func TestFillPrevious(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{stringColumn("region")}
	data := []types.Row{
		{"region": "EU"},
		{"region": ""},
		{"region": ""},
		{"region": "US"},
		{"region": ""},
	}
	opts := types.DefaultCleaningOptions()
	opts.HandleNulls = types.NullFillPrevious

	result := p.Validate(data, columns, nil, &opts)

	expected := []string{"EU", "EU", "EU", "US", "US"}
	for i, want := range expected {
		if got := result.CleanedData[i]["region"]; got != want {
			t.Errorf("row %d: expected %q, got %v", i, want, got)
		}
	}
	if result.Summary.AutoFixed != 3 {
		t.Errorf("expected 3 auto fixes, got %d", result.Summary.AutoFixed)
	}
}

func TestFillMean(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{numberColumn("score")}
	data := []types.Row{
		{"score": "10"},
		{"score": nil},
		{"score": "20"},
	}
	opts := types.DefaultCleaningOptions()
	opts.HandleNulls = types.NullFillMean

	result := p.Validate(data, columns, nil, &opts)

	filled, ok := result.CleanedData[1]["score"].(float64)
	if !ok || filled != 15 {
		t.Errorf("expected mean 15, got %v", result.CleanedData[1]["score"])
	}
}

func TestFillDefault(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{stringColumn("status")}
	data := []types.Row{{"status": ""}, {"status": "active"}}
	opts := types.DefaultCleaningOptions()
	opts.HandleNulls = types.NullFillDefault
	opts.NullDefaults = map[string]interface{}{"status": "unknown"}

	result := p.Validate(data, columns, nil, &opts)

	if got := result.CleanedData[0]["status"]; got != "unknown" {
		t.Errorf("expected default fill, got %v", got)
	}
}

func TestOutlierFlaggingKeepsRowCount(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{numberColumn("amount")}
	data := []types.Row{
		{"amount": "10"}, {"amount": "11"}, {"amount": "12"},
		{"amount": "9"}, {"amount": "10"}, {"amount": "5000"},
	}
	opts := types.DefaultCleaningOptions()
	opts.RemoveOutliers = true

	result := p.Validate(data, columns, nil, &opts)

	if len(result.CleanedData) != len(data) {
		t.Errorf("outlier handling must not remove rows: %d != %d",
			len(result.CleanedData), len(data))
	}

	var found bool
	for _, issue := range result.Issues {
		if issue.Severity == types.SeverityWarning && issue.Row == nil {
			found = true
		}
	}
	if !found {
		t.Error("expected aggregate outlier warning")
	}
}

func TestOutlierZScoreMethod(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{numberColumn("v")}
	data := []types.Row{
		{"v": "10"}, {"v": "12"}, {"v": "11"}, {"v": "9"}, {"v": "800"},
	}
	opts := types.DefaultCleaningOptions()
	opts.RemoveOutliers = true
	opts.OutlierMethod = types.OutlierZScore
	opts.OutlierThreshold = 1.5

	result := p.Validate(data, columns, nil, &opts)

	if len(result.CleanedData) != 5 {
		t.Errorf("expected unchanged row count, got %d", len(result.CleanedData))
	}
}

func TestQuickValidate(t *testing.T) {
	p := NewPipeline(nil)

	columns := []types.ColumnInfo{
		{Name: "id", InferredType: types.TypeNumber, NullCount: 0},
		{Name: "name", InferredType: types.TypeString, NullCount: 2},
	}
	data := []types.Row{
		{"id": "1", "name": "a"},
		{"id": "", "name": "b"},
		{"id": "oops", "name": ""},
	}

	errors, warnings := p.QuickValidate(data, columns)

	if errors != 1 {
		t.Errorf("expected 1 error (empty id), got %d", errors)
	}
	if warnings != 1 {
		t.Errorf("expected 1 warning (non-numeric id), got %d", warnings)
	}
}
