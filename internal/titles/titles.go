package titles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Movies before 1870 do not exist in any catalog worth querying; years past
// next year are typos.
const earliestYear = 1870

var (
	trailingYear = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Parse splits a raw title such as "Toy Story (1995)" into its clean title
// and release year. Titles without a plausible trailing year are returned
// trimmed with a nil year; malformed input never produces an error.
func Parse(raw string) (string, *int) {
	title := strings.TrimSpace(raw)

	if match := trailingYear.FindStringSubmatch(title); match != nil {
		year, err := strconv.Atoi(match[1])
		if err == nil && plausibleYear(year) {
			title = strings.TrimSpace(trailingYear.ReplaceAllString(title, ""))
			title = whitespace.ReplaceAllString(title, " ")
			return title, &year
		}
	}

	return whitespace.ReplaceAllString(title, " "), nil
}

// Key returns the normalized cache identity for a title and optional year.
// The unit separator keeps titles containing parentheses unambiguous.
func Key(title string, year *int) string {
	normalized := strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(title), " "))
	if year == nil {
		return normalized
	}
	return fmt.Sprintf("%s\x1f%d", normalized, *year)
}

func plausibleYear(year int) bool {
	return year >= earliestYear && year <= time.Now().Year()+1
}
