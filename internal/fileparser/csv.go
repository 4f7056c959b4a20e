// internal/fileparser/csv.go
package fileparser

import (
	"fmt"
	"strings"

	"github.com/verakocha/veriflow/pkg/types"
)

// candidateDelimiters are tried during delimiter auto-detection.
var candidateDelimiters = []string{",", ";", "\t", "|"}

// parseCSV splits the decoded text into lines, detects the delimiter
// from the first data line, and parses up to limit data rows. The
// reported total is the full data row count regardless of limit.
func (p *Parser) parseCSV(data []byte, opts ParseOptions, limit int) ([]string, []types.Row, int, error) {
	text, err := decodeText(data, opts.Encoding)
	if err != nil {
		return nil, nil, 0, err
	}

	lines := splitLines(text)
	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(lines) {
			lines = nil
		} else {
			lines = lines[opts.SkipRows:]
		}
	}
	if len(lines) == 0 {
		return nil, nil, 0, fmt.Errorf("file contains no data")
	}

	delimiter := detectDelimiter(lines[0], opts.Delimiter)

	var headers []string
	dataLines := lines
	if opts.HasHeader {
		headers = parseCSVLine(lines[0], delimiter)
		dataLines = lines[1:]
	} else {
		headers = synthesizeHeaders(len(parseCSVLine(lines[0], delimiter)))
	}

	total := len(dataLines)
	if limit < len(dataLines) {
		dataLines = dataLines[:limit]
	}

	rows := make([]types.Row, 0, len(dataLines))
	for _, line := range dataLines {
		fields := parseCSVLine(line, delimiter)
		row := make(types.Row, len(headers))
		for i, header := range headers {
			if i < len(fields) {
				row[header] = fields[i]
			} else {
				row[header] = nil
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, total, nil
}

// detectDelimiter counts candidate occurrences in the first data line
// and picks the most frequent one. Ties keep the caller's default.
func detectDelimiter(firstLine, fallback string) string {
	if fallback == "" {
		fallback = ","
	}

	best := fallback
	bestCount := strings.Count(firstLine, fallback)
	for _, candidate := range candidateDelimiters {
		if candidate == fallback {
			continue
		}
		if count := strings.Count(firstLine, candidate); count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// parseCSVLine splits one line on the delimiter, honoring double-quoted
// fields. A doubled quote inside a quoted field is a literal quote.
func parseCSVLine(line, delimiter string) []string {
	delim := []rune(delimiter)[0]
	runes := []rune(line)

	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))

	return fields
}

// splitLines normalizes line endings and drops blank lines.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
