package model

import (
	"regexp"
	"strings"
	"unicode"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler converts a column name into a human-friendly label. It splits
// on underscores, dashes, camelCase boundaries and digit runs while keeping
// acronyms such as "ULD" or "IRI" intact: "grossWeight" becomes "Gross Weight",
// "ULDTypeCode" becomes "ULD Type Code".
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(name, -1) {
		if word == "" {
			continue
		}
		for _, part := range splitCamel([]rune(word)) {
			segments = append(segments, capitalise(part))
		}
	}
	return strings.Join(segments, " ")
}

func splitCamel(runes []rune) []string {
	var (
		parts []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		if isBoundary(runes, i) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur), unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur):
		// "ULDType": the boundary sits before the last capital of the run.
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}
	return false
}

func capitalise(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	if allUpper(runes) {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func allUpper(runes []rune) bool {
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 1
}
