package funding

import "strings"

// SplitList splits a comma-separated multi-valued source field into its
// segments. Commas inside parentheses or inside matching single/double
// quote pairs do not split, so values like
// "Humanitarian OpenStreetMap Team (HOT, US)" survive intact. Segments
// are trimmed, empty segments dropped, and a single layer of surrounding
// quotes stripped.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens    []string
		current   strings.Builder
		depth     int
		inQuotes  bool
		quoteChar rune
	)

	flush := func() {
		token := strings.TrimSpace(current.String())
		current.Reset()
		if token == "" {
			return
		}
		tokens = append(tokens, stripQuotes(token))
	}

	for _, ch := range s {
		switch {
		case (ch == '"' || ch == '\'') && !inQuotes:
			inQuotes = true
			quoteChar = ch
			current.WriteRune(ch)
		case inQuotes && ch == quoteChar:
			inQuotes = false
			quoteChar = 0
			current.WriteRune(ch)
		case ch == '(' && !inQuotes:
			depth++
			current.WriteRune(ch)
		case ch == ')' && !inQuotes:
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == ',' && !inQuotes && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return tokens
}

// stripQuotes removes one layer of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
