// internal/classifier/classifier.go

// Package classifier assigns semantic types to columns and a data
// category to whole datasets, with an explainable confidence score.
// Three independent heuristics are evaluated per column (name pattern,
// declared type, value shape) and the most confident one wins.
package classifier

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/verakocha/veriflow/pkg/types"
)

// Declared-type heuristic confidences
const (
	declaredDateConfidence    = 0.8
	declaredBooleanConfidence = 0.9
	declaredTextConfidence    = 0.3

	ratingConfidence     = 0.6
	countConfidence      = 0.5
	percentageConfidence = 0.4
	quantityConfidence   = 0.3
)

// valueAdoptionRatio: a value-shape detection is considered at all only
// when its confidence reaches this share of the current best.
const valueAdoptionRatio = 0.8

// Classifier is stateless; construct one per use.
type Classifier struct{}

// NewClassifier creates a new classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// ClassifyColumn assigns a semantic type to a single column. When
// sampleValues is non-empty the value-shape heuristic participates.
func (c *Classifier) ClassifyColumn(column types.ColumnInfo, sampleValues []interface{}) types.ColumnClassification {
	result := types.ColumnClassification{
		Column:       column.Name,
		SemanticType: types.SemanticUnknown,
	}

	// Heuristic 1: column-name pattern.
	for _, candidate := range namePatterns {
		if candidate.pattern.MatchString(column.Name) {
			result.SemanticType = candidate.semantic
			result.Confidence = nameMatchConfidence
			result.Patterns = append(result.Patterns,
				fmt.Sprintf("column name matches %s pattern", candidate.semantic))
			break
		}
	}

	// Heuristic 2: declared type, refined by sampled numbers.
	declaredType, declaredConfidence, note := classifyByDeclaredType(column)
	if declaredConfidence > result.Confidence {
		result.SemanticType = declaredType
		result.Confidence = declaredConfidence
	}
	if note != "" && declaredConfidence >= valueAdoptionRatio*result.Confidence {
		result.Patterns = append(result.Patterns, note)
	}

	// Heuristic 3: value shapes, when samples are available.
	if len(sampleValues) > 0 {
		valueType, valueConfidence, valueNote := classifyByValues(sampleValues, result.SemanticType)
		if valueConfidence >= valueAdoptionRatio*result.Confidence && valueNote != "" {
			result.Patterns = append(result.Patterns, valueNote)
		}
		if valueConfidence > result.Confidence {
			result.SemanticType = valueType
			result.Confidence = valueConfidence
		}
	}

	return result
}

// classifyByDeclaredType maps a column's inferred storage type to a
// semantic type. Numeric columns are refined by their sampled values.
func classifyByDeclaredType(column types.ColumnInfo) (types.SemanticType, float64, string) {
	switch column.InferredType {
	case types.TypeDate:
		return types.SemanticDate, declaredDateConfidence, "values parse as dates"
	case types.TypeBoolean:
		return types.SemanticBoolean, declaredBooleanConfidence, "values are boolean tokens"
	case types.TypeString:
		return types.SemanticText, declaredTextConfidence, ""
	case types.TypeNumber:
		return refineNumeric(column.SampleValues)
	default:
		return types.SemanticUnknown, 0, ""
	}
}

// refineNumeric narrows a numeric column using the range and shape of
// its sampled values.
func refineNumeric(samples []interface{}) (types.SemanticType, float64, string) {
	numbers := numericSamples(samples)
	if len(numbers) == 0 {
		return types.SemanticQuantity, quantityConfidence, ""
	}

	allInteger := true
	allPositive := true
	min, max := numbers[0], numbers[0]
	for _, n := range numbers {
		if n != float64(int64(n)) {
			allInteger = false
		}
		if n <= 0 {
			allPositive = false
		}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}

	switch {
	case allInteger && allPositive && min >= 1 && max <= 5:
		return types.SemanticRating, ratingConfidence, "integer values bounded to [1,5]"
	case allInteger && allPositive:
		return types.SemanticCount, countConfidence, "positive integer values"
	case min >= 0 && max <= 100:
		return types.SemanticPercentage, percentageConfidence, "values bounded to [0,100]"
	default:
		return types.SemanticQuantity, quantityConfidence, ""
	}
}

// numericSamples extracts the parseable numbers from raw sample values.
func numericSamples(samples []interface{}) []float64 {
	numbers := make([]float64, 0, len(samples))
	for _, sample := range samples {
		switch v := sample.(type) {
		case int:
			numbers = append(numbers, float64(v))
		case int64:
			numbers = append(numbers, float64(v))
		case float32:
			numbers = append(numbers, float64(v))
		case float64:
			numbers = append(numbers, v)
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				numbers = append(numbers, n)
			}
		}
	}
	return numbers
}

// classifyByValues inspects raw sample values for recognizable shapes:
// emails, URLs, IPv4 addresses, phone numbers, then keyword and
// cardinality heuristics.
func classifyByValues(values []interface{}, current types.SemanticType) (types.SemanticType, float64, string) {
	strValues := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprintf("%v", value))
		if s != "" {
			strValues = append(strValues, s)
		}
	}
	if len(strValues) == 0 {
		return types.SemanticUnknown, 0, ""
	}

	total := float64(len(strValues))
	matchRatio := func(match func(string) bool) float64 {
		hits := 0
		for _, v := range strValues {
			if match(v) {
				hits++
			}
		}
		return float64(hits) / total
	}

	if ratio := matchRatio(emailValuePattern.MatchString); ratio >= valueMatchThreshold {
		return types.SemanticEmail, ratio, fmt.Sprintf("%.0f%% of values look like emails", ratio*100)
	}
	if ratio := matchRatio(urlValuePattern.MatchString); ratio >= valueMatchThreshold {
		return types.SemanticURL, ratio, fmt.Sprintf("%.0f%% of values look like URLs", ratio*100)
	}
	if ratio := matchRatio(ipValuePattern.MatchString); ratio >= valueMatchThreshold {
		return types.SemanticIPAddress, ratio, fmt.Sprintf("%.0f%% of values look like IPv4 addresses", ratio*100)
	}
	if ratio := matchRatio(phoneValuePattern.MatchString); ratio >= phoneMatchThreshold {
		return types.SemanticPhone, ratio, fmt.Sprintf("%.0f%% of values look like phone numbers", ratio*100)
	}

	// Keywords only refine columns nothing else could place.
	if current == types.SemanticUnknown {
		for _, group := range keywordGroups {
			ratio := matchRatio(func(v string) bool {
				lower := strings.ToLower(v)
				for _, token := range group.tokens {
					if strings.Contains(lower, token) {
						return true
					}
				}
				return false
			})
			if ratio >= keywordMatchThreshold {
				return group.semantic, keywordConfidence,
					fmt.Sprintf("values contain %s keywords", group.semantic)
			}
		}
	}

	// Cardinality heuristics: near-unique long values look like
	// identifiers; low-cardinality columns look like categories.
	unique := make(map[string]struct{}, len(strValues))
	totalLength := 0
	for _, v := range strValues {
		unique[v] = struct{}{}
		totalLength += len(v)
	}
	uniqueRatio := float64(len(unique)) / total
	avgLength := float64(totalLength) / total

	if uniqueRatio > identifierUniqueRatio && avgLength > identifierMinLength {
		return types.SemanticUserID, identifierConfidence,
			fmt.Sprintf("%.0f%% unique values suggest an identifier", uniqueRatio*100)
	}
	if uniqueRatio < categoryUniqueRatio && len(strValues) > categoryMinSamples {
		return types.SemanticCategory, lowCardinalityConfid,
			fmt.Sprintf("only %d distinct values among %d samples", len(unique), len(strValues))
	}

	return types.SemanticUnknown, 0, ""
}

// Classify assigns a category to the whole dataset by scoring every
// column's semantic type against the category weight table.
func (c *Classifier) Classify(columns []types.ColumnInfo, sampleData []types.Row) *types.ClassificationResult {
	classified := make([]types.ColumnClassification, 0, len(columns))
	for _, column := range columns {
		classified = append(classified, c.ClassifyColumn(column, columnValues(column.Name, sampleData)))
	}

	scores := make(map[types.DataCategory]float64, len(categoryWeights))
	for _, col := range classified {
		for category, weights := range categoryWeights {
			if weight, ok := weights[col.SemanticType]; ok {
				scores[category] += float64(weight) * col.Confidence
			}
		}
	}

	category, confidence := pickCategory(scores)

	result := &types.ClassificationResult{
		Category:            category,
		Confidence:          confidence,
		SuggestedChartTypes: chartSuggestions[category],
		DetectedPatterns:    detectPatterns(classified),
		Columns:             classified,
	}
	result.Reasoning = buildReasoning(result, classified)

	return result
}

// QuickClassify returns just the category, without sample-value
// refinement.
func (c *Classifier) QuickClassify(columns []types.ColumnInfo) types.DataCategory {
	return c.Classify(columns, nil).Category
}

// pickCategory selects the highest-scoring category. The all-zero case
// is an explicit branch: it yields other with zero confidence rather
// than depending on map iteration order.
func pickCategory(scores map[types.DataCategory]float64) (types.DataCategory, float64) {
	var total float64
	for _, score := range scores {
		total += score
	}
	if total == 0 {
		return types.CategoryOther, 0
	}

	categories := make([]types.DataCategory, 0, len(scores))
	for category := range scores {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	best := categories[0]
	for _, category := range categories[1:] {
		if scores[category] > scores[best] {
			best = category
		}
	}
	return best, scores[best] / total
}

// detectPatterns groups classified columns into the structural buckets;
// only non-empty buckets are reported.
func detectPatterns(classified []types.ColumnClassification) []types.DetectedPattern {
	kinds := []types.PatternKind{
		types.PatternTemporal, types.PatternCategorical,
		types.PatternNumerical, types.PatternIdentifier,
	}
	descriptions := map[types.PatternKind]string{
		types.PatternTemporal:    "temporal columns usable as a time axis",
		types.PatternCategorical: "categorical columns usable for grouping",
		types.PatternNumerical:   "numerical columns usable as measures",
		types.PatternIdentifier:  "identifier columns referencing entities",
	}

	var patterns []types.DetectedPattern
	for _, kind := range kinds {
		members := map[types.SemanticType]struct{}{}
		for _, semantic := range patternBuckets[kind] {
			members[semantic] = struct{}{}
		}

		var bucket []string
		for _, col := range classified {
			if _, ok := members[col.SemanticType]; ok {
				bucket = append(bucket, col.Column)
			}
		}
		if len(bucket) > 0 {
			patterns = append(patterns, types.DetectedPattern{
				Kind:        kind,
				Columns:     bucket,
				Description: descriptions[kind],
			})
		}
	}
	return patterns
}

// buildReasoning produces the ordered human-readable explanation: the
// headline, the strongest columns, then the chart suggestions.
func buildReasoning(result *types.ClassificationResult, classified []types.ColumnClassification) []string {
	reasoning := []string{
		fmt.Sprintf("Dataset classified as %s with %.0f%% confidence",
			result.Category, result.Confidence*100),
	}
	if result.Confidence == 0 {
		reasoning = append(reasoning, "No column matched any category signal; defaulting to other")
	}

	strong := make([]types.ColumnClassification, 0, len(classified))
	for _, col := range classified {
		if col.Confidence > 0.5 {
			strong = append(strong, col)
		}
	}
	sort.Slice(strong, func(i, j int) bool { return strong[i].Confidence > strong[j].Confidence })
	if len(strong) > 5 {
		strong = strong[:5]
	}
	for _, col := range strong {
		reasoning = append(reasoning, fmt.Sprintf("Column %q recognized as %s (%.0f%%)",
			col.Column, col.SemanticType, col.Confidence*100))
	}

	reasoning = append(reasoning, fmt.Sprintf("Suggested chart types: %s",
		strings.Join(result.SuggestedChartTypes, ", ")))

	return reasoning
}

// columnValues collects a column's values from the sample rows.
func columnValues(name string, sampleData []types.Row) []interface{} {
	if len(sampleData) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(sampleData))
	for _, row := range sampleData {
		values = append(values, row[name])
	}
	return values
}
