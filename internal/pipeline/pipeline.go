// internal/pipeline/pipeline.go
// Package pipeline orchestrates ingestion end to end: fetch or parse a
// source, infer the schema, classify the dataset, validate and clean
// it.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/internal/apiclient"
	"github.com/verakocha/veriflow/internal/classifier"
	"github.com/verakocha/veriflow/internal/fileparser"
	"github.com/verakocha/veriflow/internal/monitoring"
	"github.com/verakocha/veriflow/internal/scraper"
	"github.com/verakocha/veriflow/internal/validation"
	"github.com/verakocha/veriflow/pkg/types"
)

// Pipeline wires the ingestion stages together. All stages run
// sequentially; one call processes one dataset to completion.
type Pipeline struct {
	parser     *fileparser.Parser
	classifier *classifier.Classifier
	validator  *validation.Pipeline
	scraper    *scraper.Service
	api        *apiclient.Client
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// New creates a pipeline from its stage implementations. Metrics may be
// nil, in which case stage observations are dropped.
func New(parser *fileparser.Parser, scrapeService *scraper.Service, api *apiclient.Client, metrics *monitoring.Metrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		parser:     parser,
		classifier: classifier.NewClassifier(),
		validator:  validation.NewPipeline(logger),
		scraper:    scrapeService,
		api:        api,
		metrics:    metrics,
		logger:     logger,
	}
}

// IngestFile parses a file and runs the downstream stages on it.
func (p *Pipeline) IngestFile(ctx context.Context, filename string, data []byte, opts fileparser.ParseOptions, rules []types.ValidationRule, cleaning *types.CleaningOptions) *types.IngestResult {
	start := time.Now()

	parseStart := time.Now()
	parsed := p.parser.ParseFile(filename, data, opts)
	p.observeStage("parse", parseStart)

	if !parsed.Success {
		return p.fail(start, "file", fmt.Sprintf("parse %s: %s", filename, parsed.Error))
	}

	return p.finish(ctx, start, "file", parsed.Columns, parsed.Preview, rules, cleaning)
}

// IngestScrape scrapes a source and runs the downstream stages on the
// extracted records.
func (p *Pipeline) IngestScrape(ctx context.Context, cfg *types.ScrapingConfig, rules []types.ValidationRule, cleaning *types.CleaningOptions) *types.IngestResult {
	start := time.Now()

	fetchStart := time.Now()
	scraped := p.scraper.Scrape(ctx, cfg)
	p.observeStage("scrape", fetchStart)

	if !scraped.Success {
		return p.fail(start, "scrape", scraped.Error)
	}
	if p.metrics != nil {
		p.metrics.ObservePages(string(cfg.Engine), scraped.PagesScraped)
	}

	columns := p.parser.AnalyzeColumns(rowKeys(scraped.Data), scraped.Data, nil)
	return p.finish(ctx, start, "scrape", columns, scraped.Data, rules, cleaning)
}

// IngestAPI pulls rows from a paginated API and runs the downstream
// stages on them.
func (p *Pipeline) IngestAPI(ctx context.Context, cfg types.APIRequestConfig, pagination apiclient.PaginationOptions, rules []types.ValidationRule, cleaning *types.CleaningOptions) *types.IngestResult {
	start := time.Now()

	fetchStart := time.Now()
	response := p.api.FetchPaginated(ctx, cfg, pagination)
	p.observeStage("fetch", fetchStart)
	if p.metrics != nil {
		p.metrics.ObserveRequest("api", response.Success)
	}

	if !response.Success {
		return p.fail(start, "api", response.Error)
	}

	rows, ok := response.Data.([]types.Row)
	if !ok {
		return p.fail(start, "api", "paginated response did not produce rows")
	}

	columns := p.parser.AnalyzeColumns(rowKeys(rows), rows, nil)
	return p.finish(ctx, start, "api", columns, rows, rules, cleaning)
}

// finish runs classification and validation over parsed rows and builds
// the result envelope.
func (p *Pipeline) finish(ctx context.Context, start time.Time, source string, columns []types.ColumnInfo, rows []types.Row, rules []types.ValidationRule, cleaning *types.CleaningOptions) *types.IngestResult {
	classifyStart := time.Now()
	classification := p.classifier.Classify(columns, rows)
	p.observeStage("classify", classifyStart)

	validateStart := time.Now()
	validated := p.validator.Validate(rows, columns, rules, cleaning)
	p.observeStage("validate", validateStart)

	finalRows := rows
	if validated.CleanedData != nil {
		finalRows = validated.CleanedData
	}

	if p.metrics != nil {
		p.metrics.ObserveRows(source, len(finalRows))
		p.metrics.ObserveIssues(validated.Summary.Errors, validated.Summary.Warnings, validated.Summary.Infos)
		p.metrics.ObserveCategory(string(classification.Category))
	}

	result := &types.IngestResult{
		Success: true,
		Dataset: &types.Dataset{
			Columns:  columns,
			Rows:     finalRows,
			Category: classification.Category,
		},
		Classification: classification,
		Validation:     validated,
		Duration:       time.Since(start),
	}

	p.logger.Info("ingestion finished",
		zap.String("source", source),
		zap.Int("rows", len(finalRows)),
		zap.String("category", string(classification.Category)),
		zap.Bool("valid", validated.IsValid),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func (p *Pipeline) fail(start time.Time, source, message string) *types.IngestResult {
	p.logger.Warn("ingestion failed",
		zap.String("source", source),
		zap.String("error", message),
	)
	return &types.IngestResult{
		Success:  false,
		Error:    message,
		Duration: time.Since(start),
	}
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, time.Since(start))
	}
}

// rowKeys derives a sorted header list from the union of record keys.
func rowKeys(rows []types.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for key := range row {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
