package transform

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	numericPattern = regexp.MustCompile(`^-?\d+\.?\d*$`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),                      // 2023-12-25
		regexp.MustCompile(`^\d{2}[./-]\d{2}[./-]\d{4}`),              // 25.12.2023, 25/12/2023
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),    // ISO datetime
	}
)

// IsTransformable reports whether a string value should be uppercased.
// Blank strings and machine-formatted values (numbers, dates, JSON, base64)
// pass through untouched.
func IsTransformable(value string) bool {
	return strings.TrimSpace(value) != "" &&
		!isNumericString(value) &&
		!isDateString(value) &&
		!isJSONString(value) &&
		!isBase64String(value)
}

func isNumericString(value string) bool {
	return numericPattern.MatchString(strings.TrimSpace(value))
}

func isDateString(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, pattern := range datePatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func isJSONString(value string) bool {
	return json.Valid([]byte(value))
}

// isBase64String checks for a reversible standard base64 encoding: the value
// must decode and re-encode to itself.
func isBase64String(value string) bool {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return false
	}
	return base64.StdEncoding.EncodeToString(decoded) == value
}
