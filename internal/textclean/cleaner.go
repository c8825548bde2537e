// Package textclean removes scanning artifacts from recognized page text.
//
// Two passes are applied to a reconstructed page:
//   - RemoveNoise drops structural lines (page numbers, short headers and
//     footers, all-caps running titles).
//   - Clean repairs hyphenated line breaks and normalizes whitespace.
package textclean

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// minLineLength is the shortest line kept; anything at or below is noise.
	minLineLength = 2

	// headerMaxLength bounds the all-caps check: shorter all-caps lines are headers.
	headerMaxLength = 30
)

var (
	hyphenBreaks = strings.NewReplacer("-\r\n", "", "-\n", "")
	lineBreaks   = strings.NewReplacer("\n", " ", "\r", " ")
)

// RemoveNoise filters page numbers and header/footer lines, keeping the order of the rest.
func RemoveNoise(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func isNoise(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if isAllNumeric(trimmed) {
		return true
	}

	length := utf8.RuneCountInString(trimmed)
	if length <= minLineLength {
		return true
	}
	if length < headerMaxLength && trimmed == strings.ToUpper(trimmed) {
		return true
	}
	return false
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// Clean joins hyphenated line breaks, turns remaining line breaks into spaces,
// collapses repeated spaces and trims the result.
func Clean(text string) string {
	cleaned := hyphenBreaks.Replace(text)
	cleaned = lineBreaks.Replace(cleaned)

	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return strings.TrimSpace(cleaned)
}

// Join concatenates surviving lines with single spaces and cleans the result.
func Join(lines []string) string {
	return Clean(strings.Join(lines, " "))
}
