package core

import "strings"

// Tokenize splits one CSV line into trimmed fields.
//
// Commas inside a double-quoted span do not split. Quote characters toggle
// the quoted state and are dropped; a doubled quote is not an escape, it just
// toggles twice. An unterminated quote leaves the rest of the line quoted.
// Tokenize never fails and always returns at least one field.
func Tokenize(line string) []string {
	fields := make([]string, 0, strings.Count(line, ",")+1)

	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
