package omdb

import (
	"strconv"
	"strings"
)

// missingValue is the marker OMDb uses for fields it has no data for.
const missingValue = "N/A"

// cleanString maps the API's missing-value marker and empty strings to nil.
// Every field normalization below funnels through it so sentinel handling
// lives in exactly one place.
func cleanString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, missingValue) {
		return nil
	}
	return &trimmed
}

// parseRuntime converts values like "142 min" to whole minutes.
func parseRuntime(value string) *int {
	cleaned := cleanString(value)
	if cleaned == nil {
		return nil
	}
	fields := strings.Fields(*cleaned)
	if len(fields) == 0 {
		return nil
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes < 0 {
		return nil
	}
	return &minutes
}

// parseDollars converts values like "$292,576,195" to an integer dollar amount.
func parseDollars(value string) *int64 {
	cleaned := cleanString(value)
	if cleaned == nil {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *cleaned)
	if digits == "" {
		return nil
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &amount
}

func parseInt(value string) *int {
	cleaned := cleanString(value)
	if cleaned == nil {
		return nil
	}
	parsed, err := strconv.Atoi(*cleaned)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseFloat(value string) *float64 {
	cleaned := cleanString(value)
	if cleaned == nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(*cleaned, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
