// cmd/veriflow/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/internal/apiclient"
	"github.com/verakocha/veriflow/internal/browser"
	"github.com/verakocha/veriflow/internal/config"
	"github.com/verakocha/veriflow/internal/export"
	"github.com/verakocha/veriflow/internal/fileparser"
	"github.com/verakocha/veriflow/internal/monitoring"
	"github.com/verakocha/veriflow/internal/pipeline"
	"github.com/verakocha/veriflow/internal/scraper"
	"github.com/verakocha/veriflow/pkg/logging"
	"github.com/verakocha/veriflow/pkg/types"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: job file required\n")
			fmt.Fprintf(os.Stderr, "Usage: veriflow run <job.yaml>\n")
			os.Exit(1)
		}
		if err := runJob(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "preview":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: data file required\n")
			fmt.Fprintf(os.Stderr, "Usage: veriflow preview <file> [rows]\n")
			os.Exit(1)
		}
		rows := 10
		if len(os.Args) > 3 {
			if n, err := strconv.Atoi(os.Args[3]); err == nil && n > 0 {
				rows = n
			}
		}
		if err := previewFile(os.Args[2], rows); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "probe":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: URL required\n")
			fmt.Fprintf(os.Stderr, "Usage: veriflow probe <url>\n")
			os.Exit(1)
		}
		if err := probeURL(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: job file required\n")
			fmt.Fprintf(os.Stderr, "Usage: veriflow validate <job.yaml>\n")
			os.Exit(1)
		}
		if _, err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Job file '%s' is valid\n", os.Args[2])

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

func buildPipeline(logger *zap.Logger) *pipeline.Pipeline {
	metrics := monitoring.NewMetrics()
	return pipeline.New(
		fileparser.NewParser(logger),
		scraper.NewService(browser.NewRegistry(), logger),
		apiclient.NewClient(apiclient.Options{Logger: logger, Metrics: metrics}),
		metrics,
		logger,
	)
}

func runJob(jobFile string) error {
	cfg, err := config.LoadFromFile(jobFile)
	if err != nil {
		return err
	}

	logger := logging.New(true)
	defer logger.Sync()

	p := buildPipeline(logger)
	ctx := context.Background()

	var result *types.IngestResult
	switch cfg.Source.Kind {
	case config.SourceFile:
		data, err := os.ReadFile(cfg.Source.File.Path)
		if err != nil {
			return fmt.Errorf("read source file: %w", err)
		}
		result = p.IngestFile(ctx, filepath.Base(cfg.Source.File.Path), data,
			parseOptions(cfg.Source.File), cfg.Rules, cfg.Cleaning)
	case config.SourceScrape:
		result = p.IngestScrape(ctx, cfg.Source.Scrape, cfg.Rules, cfg.Cleaning)
	case config.SourceAPI:
		result = p.IngestAPI(ctx, *cfg.Source.API, apiclient.PaginationOptions{}, cfg.Rules, cfg.Cleaning)
	}

	if !result.Success {
		return fmt.Errorf("job %q failed: %s", cfg.Name, result.Error)
	}

	fmt.Printf("Job %q finished: %d rows, category %s (%.0f%% confidence)\n",
		cfg.Name, len(result.Dataset.Rows), result.Dataset.Category,
		result.Classification.Confidence*100)
	printValidationSummary(result.Validation)

	if cfg.Export != nil {
		if err := exportDataset(result.Dataset, cfg.Export); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", cfg.Export.Path)
	}
	return nil
}

func parseOptions(src *config.FileSource) fileparser.ParseOptions {
	opts := fileparser.DefaultParseOptions()
	if src.Encoding != "" {
		opts.Encoding = src.Encoding
	}
	if src.Delimiter != "" {
		opts.Delimiter = src.Delimiter
	}
	if src.HasHeader != nil {
		opts.HasHeader = *src.HasHeader
	}
	opts.SkipRows = src.SkipRows
	opts.MaxRows = src.MaxRows
	opts.SheetName = src.SheetName
	opts.DateFormats = src.Formats
	return opts
}

func previewFile(path string, rows int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parser := fileparser.NewParser(nil)
	result := parser.Preview(filepath.Base(path), data, fileparser.DefaultParseOptions(), rows)
	if !result.Success {
		return fmt.Errorf("preview failed: %s", result.Error)
	}

	fmt.Printf("%d total rows, %d columns\n\n", result.TotalRows, len(result.Columns))
	for _, column := range result.Columns {
		fmt.Printf("  %-24s %-8s nulls=%d unique=%d\n",
			column.Name, column.InferredType, column.NullCount, column.UniqueCount)
	}

	fmt.Println()
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Preview)
}

func probeURL(rawURL string) error {
	s := scraper.NewService(browser.NewRegistry(), nil)
	probe, err := s.TestURL(context.Background(), rawURL)
	if err != nil {
		return err
	}

	if probe.Error != "" {
		return fmt.Errorf("probe failed: %s", probe.Error)
	}

	fmt.Printf("Status:      %d\n", probe.StatusCode)
	fmt.Printf("Size:        %d bytes\n", probe.ContentLength)
	fmt.Printf("JavaScript:  %t\n", probe.RequiresJavaScript)
	fmt.Printf("Recommended: %s engine\n", probe.RecommendedEngine)
	return nil
}

func printValidationSummary(v *types.ValidationResult) {
	if v == nil {
		return
	}
	fmt.Printf("Validation: %d/%d rows valid, %d errors, %d warnings, %d auto-fixed\n",
		v.ValidRows, v.TotalRows, v.Summary.Errors, v.Summary.Warnings, v.Summary.AutoFixed)
}

func exportDataset(dataset *types.Dataset, spec *config.ExportSpec) error {
	writer, err := export.NewWriter(spec.Format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(spec.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(spec.Path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	return writer.Write(file, dataset)
}

// printUsage displays help information
func printUsage() {
	fmt.Println("VeriFlow - Data Ingestion and Classification Pipeline")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  veriflow run <job.yaml>        Run an ingestion job")
	fmt.Println("  veriflow preview <file> [rows] Preview a data file's schema and rows")
	fmt.Println("  veriflow probe <url>           Probe a URL and recommend a scrape engine")
	fmt.Println("  veriflow validate <job.yaml>   Validate a job file")
	fmt.Println("  veriflow version               Show version information")
	fmt.Println("  veriflow help                  Show this help message")
}

// printVersion displays version information
func printVersion() {
	fmt.Printf("VeriFlow %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
