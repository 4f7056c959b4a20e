// internal/classifier/weights.go
package classifier

import "github.com/verakocha/veriflow/pkg/types"

// categoryWeights scores each (category, semantic type) pair. Category
// scores accumulate weight * column confidence; the table is data so it
// can be unit-tested and tuned independently of the scoring code.
var categoryWeights = map[types.DataCategory]map[types.SemanticType]int{
	types.CategoryTimeSeries: {
		types.SemanticDate:     10,
		types.SemanticDatetime: 10,
		types.SemanticTime:     8,
		types.SemanticYear:     9,
		types.SemanticMonth:    9,
		types.SemanticQuarter:  9,
		types.SemanticCount:    3,
		types.SemanticQuantity: 3,
		types.SemanticScore:    2,
	},
	types.CategoryFinancial: {
		types.SemanticCurrency:   10,
		types.SemanticRevenue:    10,
		types.SemanticCost:       9,
		types.SemanticPrice:      9,
		types.SemanticPercentage: 6,
		types.SemanticQuantity:   4,
		types.SemanticCount:      3,
		types.SemanticDate:       2,
		types.SemanticCategory:   2,
	},
	types.CategoryBehavioral: {
		types.SemanticSessionID: 10,
		types.SemanticUserID:    9,
		types.SemanticRating:    7,
		types.SemanticScore:     7,
		types.SemanticEmail:     6,
		types.SemanticPhone:     5,
		types.SemanticCategory:  5,
		types.SemanticStatus:    5,
		types.SemanticCount:     4,
		types.SemanticCity:      3,
		types.SemanticCountry:   3,
	},
	types.CategoryTechnological: {
		types.SemanticDevice:     10,
		types.SemanticBrowser:    10,
		types.SemanticOS:         10,
		types.SemanticAppVersion: 9,
		types.SemanticIPAddress:  9,
		types.SemanticURL:        7,
		types.SemanticSessionID:  5,
		types.SemanticUserID:     3,
	},
	types.CategoryOther: {
		types.SemanticText:     2,
		types.SemanticCategory: 2,
		types.SemanticBoolean:  1,
		types.SemanticUnknown:  1,
	},
}

// chartSuggestions maps each category to its recommended chart tags,
// consumed by visualization pickers downstream. Advisory only.
var chartSuggestions = map[types.DataCategory][]string{
	types.CategoryTimeSeries:    {"line", "area", "bar", "combo"},
	types.CategoryFinancial:     {"bar", "line", "pie", "waterfall"},
	types.CategoryBehavioral:    {"funnel", "bar", "heatmap", "scatter"},
	types.CategoryTechnological: {"pie", "donut", "bar", "treemap"},
	types.CategoryOther:         {"bar", "table"},
}

// patternBuckets group semantic types into the structural pattern kinds
// reported alongside a classification.
var patternBuckets = map[types.PatternKind][]types.SemanticType{
	types.PatternTemporal: {
		types.SemanticDate, types.SemanticDatetime, types.SemanticTime,
		types.SemanticYear, types.SemanticMonth, types.SemanticQuarter,
	},
	types.PatternCategorical: {
		types.SemanticCategory, types.SemanticStatus, types.SemanticBoolean,
	},
	types.PatternNumerical: {
		types.SemanticCount, types.SemanticQuantity, types.SemanticPrice,
		types.SemanticRevenue, types.SemanticCost, types.SemanticRating,
		types.SemanticScore, types.SemanticPercentage, types.SemanticCurrency,
	},
	types.PatternIdentifier: {
		types.SemanticUserID, types.SemanticSessionID,
		types.SemanticEmail, types.SemanticPhone,
	},
}
