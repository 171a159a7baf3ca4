package core

// validation.go turns raw file content into a ParsedFile.
//
// Validation happens in three passes over the tokenized rows:
//  1. Shape: header arity and presence of at least one data row
//  2. Numbers: Time, Position and Force must be finite floats on every row
//  3. Flag: if any row fills column 4, every filled value must be 0 or 1
//
// The first problem found is returned; rows are checked top to bottom and
// columns left to right, so the reported position is deterministic.

import (
	"math"
	"strconv"
	"strings"
)

// Parse validates content and normalizes it into a ParsedFile.
// The returned error is always a *ValidationError.
func Parse(content, filename string) (*ParsedFile, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, &ValidationError{Kind: ErrEmptyOrHeaderOnly}
	}

	header := Tokenize(strings.TrimSuffix(lines[0], "\r"))
	if len(header) < MinColumns {
		return nil, &ValidationError{Kind: ErrTooFewColumns, Col: len(header)}
	}

	raw := make([]RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		raw = append(raw, Tokenize(line))
	}
	if len(raw) == 0 {
		return nil, &ValidationError{Kind: ErrNoDataRows}
	}

	rows := make([]Row, len(raw))
	for i, r := range raw {
		vals, err := parseNumericColumns(r, i)
		if err != nil {
			return nil, err
		}
		rows[i] = Row{Time: vals[ColTime], Position: vals[ColPosition], Force: vals[ColForce]}
	}

	hasFlag := hasFlagColumn(raw)
	if hasFlag {
		for i, r := range raw {
			flag, err := parseFlag(r, i)
			if err != nil {
				return nil, err
			}
			rows[i].Flag = flag
		}
	}

	return &ParsedFile{
		Filename:      filename,
		Header:        header,
		Rows:          rows,
		Metadata:      ExtractMetadata(header, raw[0]),
		HasFlagColumn: hasFlag,
	}, nil
}

// reportedRow converts a data-row index into the 1-based line number users
// see in their editor (the header is line 1).
func reportedRow(i int) int {
	return i + 2
}

// parseNumericColumns converts the Time, Position and Force cells of row i.
func parseNumericColumns(r RawRow, i int) ([MinColumns]float64, error) {
	var vals [MinColumns]float64
	for col := 0; col < MinColumns; col++ {
		if col >= len(r) || r[col] == "" {
			return vals, &ValidationError{Kind: ErrMissingValue, Row: reportedRow(i), Col: col + 1}
		}
		v, ok := parseNumber(r[col])
		if !ok {
			return vals, &ValidationError{Kind: ErrInvalidNumber, Row: reportedRow(i), Col: col + 1, Value: r[col]}
		}
		vals[col] = v
	}
	return vals, nil
}

// hasFlagColumn reports whether any row fills column 4.
func hasFlagColumn(raw []RawRow) bool {
	for _, r := range raw {
		if len(r) > ColFlag && r[ColFlag] != "" {
			return true
		}
	}
	return false
}

// parseFlag reads column 4 of row i. An absent or empty cell is 0.
func parseFlag(r RawRow, i int) (uint8, error) {
	if len(r) <= ColFlag || r[ColFlag] == "" {
		return 0, nil
	}
	v, ok := parseNumber(r[ColFlag])
	switch {
	case ok && v == 0:
		return 0, nil
	case ok && v == 1:
		return 1, nil
	}
	return 0, &ValidationError{Kind: ErrInvalidFlag, Row: reportedRow(i), Col: ColFlag + 1, Value: r[ColFlag]}
}

// parseNumber accepts decimal numbers with an optional sign and exponent.
// Hex floats are rejected, as are NaN and infinities, which cannot be placed
// on an axis.
func parseNumber(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
