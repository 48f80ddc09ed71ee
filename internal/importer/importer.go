// Package importer turns external part lists (CSV and Excel) into Parts.
// Column layout is discovered from the header row; files without one fall
// back to a fixed positional layout. Bad rows are collected, not fatal: the
// caller gets every parseable part plus a per-row account of what was
// skipped or guessed.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult carries everything a single import produced. Errors are rows
// that yielded no part; Warnings are oddities that were smoothed over.
type ImportResult struct {
	Parts    []model.Part
	Errors   []string
	Warnings []string
}

// ColumnMapping locates each part attribute in a data row. An index of -1
// means the column is absent from the file.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
	Rotation int
}

// Column roles, keyed into the alias table and the mapping slots.
const (
	colLabel    = "Label"
	colWidth    = "Width"
	colHeight   = "Height"
	colQuantity = "Quantity"
	colRotation = "Rotation"
)

// columnAliases maps each role to the header spellings seen in real cut
// lists, lowercased.
var columnAliases = map[string][]string{
	colLabel:    {"label", "name", "part", "part name", "description", "desc", "piece", "item"},
	colWidth:    {"width", "w", "length", "len", "x"},
	colHeight:   {"height", "h", "depth", "d", "y"},
	colQuantity: {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	colRotation: {"rotation", "rotate", "rotatable", "rot", "can rotate", "allow rotation"},
}

// requiredColumns must all resolve before any row can parse.
var requiredColumns = []string{colWidth, colHeight, colQuantity}

// slot returns the mapping field backing a role, so detection can stay
// table-driven instead of switching per field.
func (m *ColumnMapping) slot(role string) *int {
	switch role {
	case colLabel:
		return &m.Label
	case colWidth:
		return &m.Width
	case colHeight:
		return &m.Height
	case colQuantity:
		return &m.Quantity
	default:
		return &m.Rotation
	}
}

// missingRequired lists the required roles the header failed to provide.
func (m *ColumnMapping) missingRequired() []string {
	var missing []string
	for _, role := range requiredColumns {
		if *m.slot(role) < 0 {
			missing = append(missing, role)
		}
	}
	return missing
}

// roleFor resolves one header cell to its column role.
func roleFor(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for role, aliases := range columnAliases {
		for _, alias := range aliases {
			if h == alias {
				return role, true
			}
		}
	}
	return "", false
}

// DetectColumns resolves a first row into a ColumnMapping. When at least one
// cell matches a known header alias the row is treated as a header and the
// matched positions win (first match per role). Otherwise the file is
// assumed headerless with the fixed order label, width, height, quantity,
// rotation, and false is returned.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1, Rotation: -1}

	matched := false
	for i, cell := range row {
		role, ok := roleFor(cell)
		if !ok {
			continue
		}
		matched = true
		if idx := mapping.slot(role); *idx < 0 {
			*idx = i
		}
	}
	if !matched {
		return ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, Rotation: 4}, false
	}
	return mapping, true
}

// csvDelimiters are the candidates tried, comma first so it wins ties.
var csvDelimiters = []rune{',', ';', '\t', '|'}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

// DetectCSVDelimiter guesses the field delimiter from a sample of the data:
// the candidate that splits every sampled line into the same multi-field
// count, with field count as the tiebreak. Defaults to comma.
func DetectCSVDelimiter(data []byte) rune {
	lines := sampleLines(data, 20)

	best := ','
	bestScore := 0
	for _, cand := range csvDelimiters {
		if score := delimiterScore(lines, cand); score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return best
}

// sampleLines returns up to max non-blank lines from the head of the data.
func sampleLines(data []byte, max int) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

// delimiterScore rewards consistency (same field count on every line) ten
// times as much as raw field count, and rejects candidates that never split.
func delimiterScore(lines []string, delim rune) int {
	if len(lines) == 0 {
		return 0
	}
	fields := strings.Count(lines[0], string(delim)) + 1
	if fields < 2 {
		return 0
	}
	consistent := 0
	for _, line := range lines {
		if strings.Count(line, string(delim))+1 == fields {
			consistent++
		}
	}
	return consistent*10 + fields
}

// rotationWords maps recognized rotation cell values to the allowed flag.
var rotationWords = map[string]bool{
	"yes": true, "y": true, "true": true, "1": true, "allowed": true, "free": true,
	"no": false, "n": false, "false": false, "0": false, "locked": false, "fixed": false,
}

// ImportCSV reads a CSV part list from disk, sniffing the delimiter first.
func ImportCSV(path string) ImportResult {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open %s: %v", path, err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("using %s as the field delimiter", delimiterNames[delim]))
	}

	parsed := ImportCSVFromReader(bytes.NewReader(data), delim)
	parsed.Warnings = append(result.Warnings, parsed.Warnings...)
	return parsed
}

// ImportCSVFromReader reads a CSV part list with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("malformed CSV: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}
	return parseRows(rows, "line")
}

// ImportExcel reads a part list from the first worksheet of an Excel file.
func ImportExcel(path string) ImportResult {
	var result ImportResult

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open %s: %v", path, err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "workbook has no worksheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read worksheet %q: %v", sheets[0], err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "worksheet is empty")
		return result
	}
	return parseRows(rows, "row")
}

// parseRows converts raw rows into parts. The first row decides the column
// mapping; every later non-blank row either yields a part or an error line.
func parseRows(rows [][]string, where string) ImportResult {
	var result ImportResult

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		if missing := mapping.missingRequired(); len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("header is missing required columns: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if looksLikeForeignHeader(rows[0], mapping) {
		// An all-text first row that matched no alias is still a header,
		// just one we cannot learn anything from.
		start = 1
	}

	for i := start; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		part, warning, err := buildPart(rows[i], mapping, fmt.Sprintf("%s %d", where, i+1), len(result.Parts)+1)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Parts = append(result.Parts, part)
	}
	return result
}

// looksLikeForeignHeader reports whether a positionally-mapped first row is
// probably an unrecognized header: its width cell does not parse as a number.
func looksLikeForeignHeader(row []string, mapping ColumnMapping) bool {
	cell := cellAt(row, mapping.Width)
	if cell == "" {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err != nil
}

// buildPart converts one data row into a Part. The returned warning is
// non-empty when something recoverable was guessed around.
func buildPart(row []string, mapping ColumnMapping, where string, seq int) (model.Part, string, error) {
	width, err := numberAt(row, mapping.Width, where, "width")
	if err != nil {
		return model.Part{}, "", err
	}
	height, err := numberAt(row, mapping.Height, where, "height")
	if err != nil {
		return model.Part{}, "", err
	}

	qty := 1
	if cell := cellAt(row, mapping.Quantity); cell != "" {
		qty, err = strconv.Atoi(cell)
		if err != nil {
			return model.Part{}, "", fmt.Errorf("%s: quantity %q is not a whole number", where, cell)
		}
	}
	if width <= 0 || height <= 0 || qty <= 0 {
		return model.Part{}, "", fmt.Errorf("%s: width, height, and quantity must be positive", where)
	}

	label := cellAt(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Part %d", seq)
	}
	part := model.NewPart(label, width, height, qty)

	var warning string
	if cell := cellAt(row, mapping.Rotation); cell != "" {
		allowed, known := rotationWords[strings.ToLower(cell)]
		if known {
			part.RotationAllowed = allowed
		} else {
			warning = fmt.Sprintf("%s: rotation %q is not recognized, leaving rotation allowed", where, cell)
		}
	}
	return part, warning, nil
}

// numberAt parses a required numeric cell.
func numberAt(row []string, idx int, where, what string) (float64, error) {
	cell := cellAt(row, idx)
	if cell == "" {
		return 0, fmt.Errorf("%s: missing %s", where, what)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %s %q is not a number", where, what, cell)
	}
	return v, nil
}

// cellAt returns the trimmed cell at idx, or "" when the row is too short
// or the column is unmapped.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// blankRow reports whether a row carries no content at all.
func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
