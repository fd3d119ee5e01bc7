// Package textutils provides text normalization primitives shared by the
// recurring charge detector and the enrichment step.
package textutils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	corporateSuffix = regexp.MustCompile(`\b(inc|llc|co|corp)\b`)
)

// NormalizeMerchant canonicalizes a merchant name for grouping: lower-case,
// punctuation stripped, corporate suffixes dropped, whitespace collapsed.
// "Netflix", "NETFLIX" and "Netflix, Inc." all normalize to "netflix".
func NormalizeMerchant(merchant string) string {
	s := strings.ToLower(merchant)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	s = corporateSuffix.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CollapseWhitespace replaces runs of whitespace with a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// CommaSeparated renders an amount with thousands separators and two
// decimals, e.g. 1234567.5 -> "1,234,567.50".
func CommaSeparated(amount float64) string {
	formatted := fmt.Sprintf("%.2f", amount)

	negative := strings.HasPrefix(formatted, "-")
	if negative {
		formatted = formatted[1:]
	}

	parts := strings.SplitN(formatted, ".", 2)
	integer := parts[0]

	var b strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	result := b.String() + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// ContainsAny reports whether s contains any of the keywords. Matching is
// case-sensitive; callers lower-case s and keywords as needed.
func ContainsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
