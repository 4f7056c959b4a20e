// pkg/types/validation_test.go
package types

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCleaningOptionsUnmarshalJSONMergesDefaults(t *testing.T) {
	var opts CleaningOptions
	if err := json.Unmarshal([]byte(`{"handle_nulls":"fill_previous"}`), &opts); err != nil {
		t.Fatalf("CleaningOptions.UnmarshalJSON() error = %v", err)
	}

	if opts.HandleNulls != NullFillPrevious {
		t.Errorf("HandleNulls = %q, want %q", opts.HandleNulls, NullFillPrevious)
	}
	if !opts.TrimStrings || !opts.RemoveExtraSpaces || !opts.StandardizeDates {
		t.Errorf("default-on stages disabled by partial decode: trim=%v spaces=%v dates=%v",
			opts.TrimStrings, opts.RemoveExtraSpaces, opts.StandardizeDates)
	}
	if opts.TargetDateFormat != "YYYY-MM-DD" {
		t.Errorf("TargetDateFormat = %q, want default", opts.TargetDateFormat)
	}
}

func TestCleaningOptionsUnmarshalJSONExplicitFalse(t *testing.T) {
	var opts CleaningOptions
	if err := json.Unmarshal([]byte(`{"trim_strings":false}`), &opts); err != nil {
		t.Fatalf("CleaningOptions.UnmarshalJSON() error = %v", err)
	}

	if opts.TrimStrings {
		t.Error("explicit trim_strings:false must override the default")
	}
	if !opts.RemoveExtraSpaces {
		t.Error("unrelated defaults must be preserved")
	}
}

func TestCleaningOptionsUnmarshalYAMLMergesDefaults(t *testing.T) {
	var opts CleaningOptions
	if err := yaml.Unmarshal([]byte("remove_duplicates: true\nkeep_duplicate: last\n"), &opts); err != nil {
		t.Fatalf("CleaningOptions.UnmarshalYAML() error = %v", err)
	}

	if !opts.RemoveDuplicates || opts.KeepDuplicate != KeepLast {
		t.Errorf("decoded fields lost: dedupe=%v keep=%q", opts.RemoveDuplicates, opts.KeepDuplicate)
	}
	if !opts.TrimStrings || !opts.StandardizeDates {
		t.Error("default-on stages disabled by partial yaml decode")
	}
	if opts.HandleNulls != NullKeep {
		t.Errorf("HandleNulls = %q, want default %q", opts.HandleNulls, NullKeep)
	}
}
