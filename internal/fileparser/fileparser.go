// internal/fileparser/fileparser.go

// Package fileparser turns uploaded CSV, Excel and JSON files into row
// records with per-column type analysis. Parsing is sample-friendly: a
// bounded preview pass and a full parse share the same code paths.
package fileparser

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/pkg/types"
)

// FileType identifies the supported upload formats.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypeJSON FileType = "json"
)

// UnsupportedTypeError reports a file extension the parser cannot map to
// a known format when strict detection is requested.
type UnsupportedTypeError struct {
	Extension string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Extension)
}

// ParseOptions configures a parse pass.
type ParseOptions struct {
	Encoding    string   `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Delimiter   string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	HasHeader   bool     `json:"has_header" yaml:"has_header"`
	SkipRows    int      `json:"skip_rows" yaml:"skip_rows"`
	MaxRows     int      `json:"max_rows,omitempty" yaml:"max_rows,omitempty"`
	SheetName   string   `json:"sheet_name,omitempty" yaml:"sheet_name,omitempty"`
	DateFormats []string `json:"date_formats,omitempty" yaml:"date_formats,omitempty"`
}

// DefaultParseOptions returns the standard options: comma-delimited
// UTF-8 input with a header row.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Delimiter: ",",
		HasHeader: true,
	}
}

// Parser converts raw file bytes into analyzed tabular previews.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new file parser.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// DetectFileType maps a filename to a format by extension. Unknown
// extensions fall back to CSV, which tolerates most delimited text.
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FileTypeXLSX
	case ".xls":
		return FileTypeXLS
	case ".json":
		return FileTypeJSON
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV
	default:
		return FileTypeCSV
	}
}

// Preview parses up to previewRows data rows from the file and analyzes
// the resulting columns. Configuration problems and undecodable content
// are reported inside the result envelope.
func (p *Parser) Preview(filename string, data []byte, opts ParseOptions, previewRows int) *types.FilePreviewResult {
	if previewRows <= 0 {
		previewRows = 10
	}
	return p.parse(filename, data, opts, previewRows)
}

// ParseFile parses the entire file, honoring opts.MaxRows when set.
func (p *Parser) ParseFile(filename string, data []byte, opts ParseOptions) *types.FilePreviewResult {
	limit := opts.MaxRows
	if limit <= 0 {
		limit = int(^uint(0) >> 1)
	}
	return p.parse(filename, data, opts, limit)
}

func (p *Parser) parse(filename string, data []byte, opts ParseOptions, limit int) *types.FilePreviewResult {
	fileType := DetectFileType(filename)

	var (
		headers []string
		rows    []types.Row
		total   int
		err     error
	)

	switch fileType {
	case FileTypeCSV:
		headers, rows, total, err = p.parseCSV(data, opts, limit)
	case FileTypeXLSX, FileTypeXLS:
		headers, rows, total, err = p.parseExcel(data, opts, limit)
	case FileTypeJSON:
		headers, rows, total, err = p.parseJSON(data, opts, limit)
	}
	if err != nil {
		p.logger.Warn("file parse failed",
			zap.String("file", filename),
			zap.String("type", string(fileType)),
			zap.Error(err))
		return &types.FilePreviewResult{Success: false, Error: err.Error()}
	}

	columns := p.AnalyzeColumns(headers, rows, opts.DateFormats)

	return &types.FilePreviewResult{
		Success:   true,
		Columns:   columns,
		Preview:   rows,
		TotalRows: total,
	}
}

// synthesizeHeaders builds Column_1..N names for headerless files.
func synthesizeHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return headers
}
