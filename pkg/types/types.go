// pkg/types/types.go

// Package types defines the shared data model for the veriflow ingestion
// pipeline: parsed column descriptions, semantic classification results,
// validation reports and the request/config envelopes exchanged with
// callers at the upload, scrape and API boundaries.
package types

import "time"

// Row is a single parsed record keyed by column name. Every row in a
// dataset carries a value (possibly nil) for each column named in the
// schema; rows never introduce columns of their own after parsing.
type Row map[string]interface{}

// InferredType is the storage-level type inferred for a column from its
// sampled values.
type InferredType string

const (
	TypeString  InferredType = "string"
	TypeNumber  InferredType = "number"
	TypeBoolean InferredType = "boolean"
	TypeDate    InferredType = "date"
	TypeJSON    InferredType = "json"
	TypeMixed   InferredType = "mixed"
)

// ValidInferredTypes returns all valid inferred type values
func ValidInferredTypes() []InferredType {
	return []InferredType{
		TypeString, TypeNumber, TypeBoolean,
		TypeDate, TypeJSON, TypeMixed,
	}
}

// IsValid checks if the inferred type is a valid value
func (it InferredType) IsValid() bool {
	for _, valid := range ValidInferredTypes() {
		if it == valid {
			return true
		}
	}
	return false
}

// ColumnInfo describes one column of a parsed dataset. It is produced
// once per parse pass and is immutable afterwards.
type ColumnInfo struct {
	Name         string        `json:"name" yaml:"name"`
	InferredType InferredType  `json:"inferred_type" yaml:"inferred_type"`
	SampleValues []interface{} `json:"sample_values" yaml:"sample_values"`
	NullCount    int           `json:"null_count" yaml:"null_count"`
	UniqueCount  int           `json:"unique_count" yaml:"unique_count"`
}

// SemanticType is the fine-grained meaning assigned to a column beyond
// its storage type (for example a string column meaning "email").
type SemanticType string

const (
	SemanticDate       SemanticType = "date"
	SemanticDatetime   SemanticType = "datetime"
	SemanticTime       SemanticType = "time"
	SemanticYear       SemanticType = "year"
	SemanticMonth      SemanticType = "month"
	SemanticQuarter    SemanticType = "quarter"
	SemanticCurrency   SemanticType = "currency"
	SemanticPercentage SemanticType = "percentage"
	SemanticRevenue    SemanticType = "revenue"
	SemanticCost       SemanticType = "cost"
	SemanticPrice      SemanticType = "price"
	SemanticCount      SemanticType = "count"
	SemanticQuantity   SemanticType = "quantity"
	SemanticRating     SemanticType = "rating"
	SemanticScore      SemanticType = "score"
	SemanticUserID     SemanticType = "user_id"
	SemanticSessionID  SemanticType = "session_id"
	SemanticEmail      SemanticType = "email"
	SemanticPhone      SemanticType = "phone"
	SemanticCountry    SemanticType = "country"
	SemanticCity       SemanticType = "city"
	SemanticURL        SemanticType = "url"
	SemanticIPAddress  SemanticType = "ip_address"
	SemanticDevice     SemanticType = "device"
	SemanticBrowser    SemanticType = "browser"
	SemanticOS         SemanticType = "os"
	SemanticAppVersion SemanticType = "app_version"
	SemanticCategory   SemanticType = "category"
	SemanticStatus     SemanticType = "status"
	SemanticBoolean    SemanticType = "boolean"
	SemanticText       SemanticType = "text"
	SemanticUnknown    SemanticType = "unknown"
)

// DataCategory is the dataset-level classification used to recommend
// visualizations downstream.
type DataCategory string

const (
	CategoryTimeSeries    DataCategory = "time_series"
	CategoryBehavioral    DataCategory = "behavioral"
	CategoryTechnological DataCategory = "technological"
	CategoryFinancial     DataCategory = "financial"
	CategoryOther         DataCategory = "other"
)

// ValidCategories returns all valid data category values
func ValidCategories() []DataCategory {
	return []DataCategory{
		CategoryTimeSeries, CategoryBehavioral,
		CategoryTechnological, CategoryFinancial, CategoryOther,
	}
}

// IsValid checks if the category is a valid value
func (c DataCategory) IsValid() bool {
	for _, valid := range ValidCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// PatternKind groups classified columns into broad structural buckets.
type PatternKind string

const (
	PatternTemporal    PatternKind = "temporal"
	PatternCategorical PatternKind = "categorical"
	PatternNumerical   PatternKind = "numerical"
	PatternIdentifier  PatternKind = "identifier"
)

// DetectedPattern names a group of columns that share a structural role
// in the dataset, such as its temporal axis or its identifier columns.
type DetectedPattern struct {
	Kind        PatternKind `json:"kind"`
	Columns     []string    `json:"columns"`
	Description string      `json:"description"`
}

// ColumnClassification is the per-column output of the semantic
// classifier.
type ColumnClassification struct {
	Column       string       `json:"column"`
	SemanticType SemanticType `json:"semantic_type"`
	Confidence   float64      `json:"confidence"`
	Patterns     []string     `json:"patterns,omitempty"`
}

// ClassificationResult is the dataset-level output of the classifier.
// It is derived on demand and never persisted.
type ClassificationResult struct {
	Category            DataCategory           `json:"category"`
	Confidence          float64                `json:"confidence"`
	Reasoning           []string               `json:"reasoning"`
	SuggestedChartTypes []string               `json:"suggested_chart_types"`
	DetectedPatterns    []DetectedPattern      `json:"detected_patterns"`
	Columns             []ColumnClassification `json:"columns,omitempty"`
}

// FilePreviewResult is returned from the upload boundary: the analyzed
// schema, a bounded preview of rows and the true total row count.
type FilePreviewResult struct {
	Success   bool         `json:"success"`
	Columns   []ColumnInfo `json:"columns,omitempty"`
	Preview   []Row        `json:"preview,omitempty"`
	TotalRows int          `json:"total_rows"`
	Error     string       `json:"error,omitempty"`
}

// Dataset is the triple handed to the external persistence collaborator
// once parsing, classification and cleaning are complete.
type Dataset struct {
	Columns  []ColumnInfo `json:"columns"`
	Rows     []Row        `json:"rows"`
	Category DataCategory `json:"category"`
}

// IngestResult bundles the full pipeline output for one source.
type IngestResult struct {
	Success        bool                  `json:"success"`
	Dataset        *Dataset              `json:"dataset,omitempty"`
	Classification *ClassificationResult `json:"classification,omitempty"`
	Validation     *ValidationResult     `json:"validation,omitempty"`
	Duration       time.Duration         `json:"duration"`
	Error          string                `json:"error,omitempty"`
}
