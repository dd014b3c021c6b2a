// Package importer parses delimited text files into a tabular preview and
// reconciles the rows into recorded expenses with per-row failure isolation.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PreviewLimit bounds how many data rows a preview loads.
const PreviewLimit = 200

// Delimiters recognized in import files.
var Delimiters = []rune{',', ';', '\t'}

// Table is a parsed tabular preview of a delimited text file.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Preview parses up to PreviewLimit data rows from the file. When hasHeader
// is set the first line is promoted to column names; otherwise positional
// names are synthesized.
func Preview(filePath string, delimiter rune, hasHeader bool) (*Table, error) {
	if !validDelimiter(delimiter) {
		return nil, fmt.Errorf("unsupported delimiter %q", delimiter)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseTable(f, delimiter, hasHeader, PreviewLimit)
}

// Load parses the whole file with no row cap.
func Load(filePath string, delimiter rune, hasHeader bool) (*Table, error) {
	if !validDelimiter(delimiter) {
		return nil, fmt.Errorf("unsupported delimiter %q", delimiter)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseTable(f, delimiter, hasHeader, 0)
}

// DetectDelimiter guesses the delimiter by counting candidates in the first
// line. The guess is advisory; callers may override it.
func DetectDelimiter(firstLine string) rune {
	best := Delimiters[0]
	bestCount := 0
	for _, d := range Delimiters {
		if n := strings.Count(firstLine, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func validDelimiter(delimiter rune) bool {
	for _, d := range Delimiters {
		if d == delimiter {
			return true
		}
	}
	return false
}

func parseTable(r io.Reader, delimiter rune, hasHeader bool, limit int) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	table := &Table{}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitLine(line, delimiter)
		if table.Columns == nil {
			if hasHeader {
				for i := range fields {
					fields[i] = strings.TrimSpace(fields[i])
				}
				table.Columns = fields
				continue
			}
			table.Columns = make([]string, len(fields))
			for i := range fields {
				table.Columns[i] = fmt.Sprintf("Column%d", i+1)
			}
		}

		table.Rows = append(table.Rows, fields)
		if limit > 0 && len(table.Rows) >= limit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return table, nil
}

// splitLine splits one line on the delimiter, honoring quoted fields that
// contain the delimiter or embedded quotes (doubled-quote escaping).
func splitLine(line string, delimiter rune) []string {
	var (
		fields   []string
		sb       strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Doubled quote inside a quoted field is a literal quote.
				sb.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == delimiter && !inQuotes:
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(ch)
		}
	}
	fields = append(fields, sb.String())
	return fields
}
