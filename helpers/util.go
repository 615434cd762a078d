package helpers

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GetSplitPart returns the index-th part of target split on separate.
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index < 0 || index >= len(parts) {
		return "", fmt.Errorf("part %d of %q split on %q: index out of range (%d parts)", index, target, separate, len(parts))
	}
	return parts[index], nil
}

// GetField returns the index-th whitespace separated word of target.
func GetField(target string, index int) (string, error) {
	fields := strings.Fields(target)
	if index < 0 || index >= len(fields) {
		return "", fmt.Errorf("word %d of %q: index out of range (%d words)", index, target, len(fields))
	}
	return fields[index], nil
}

// TrimLastRune drops the final character of s, e.g. the colon in "EU:".
func TrimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// TrimLetterSuffix drops trailing letters, e.g. the ordinal in "21st".
func TrimLetterSuffix(s string) string {
	return strings.TrimRightFunc(s, unicode.IsLetter)
}

// CollapseSpace trims s and folds inner runs of whitespace into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
