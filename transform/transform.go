// Package transform normalises outbound request payloads: free-text string
// fields are uppercased with Turkish case folding while identifiers, URLs,
// secrets and machine-formatted values are left untouched.
package transform

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxDepth bounds the recursion over nested payloads. Anything nested deeper
// is returned unmodified.
const maxDepth = 10

// Upper uppercases a string with the tr-TR case mapping. A plain ASCII
// mapping would break dotted/dotless i (i→İ, ı→I) and must not be used.
func Upper(value string) string {
	return cases.Upper(language.Turkish).String(value)
}

// Value transforms a decoded JSON value recursively. Records are walked
// field by field with the exclusion policy applied to field names before
// recursing; sequences are mapped element-wise; transformable strings are
// uppercased; everything else passes through.
func Value(value any, depth int) any {
	if depth > maxDepth {
		return value
	}

	switch typed := value.(type) {
	case string:
		if IsTransformable(typed) {
			return Upper(typed)
		}
		return typed
	case []any:
		transformed := make([]any, len(typed))
		for i, item := range typed {
			transformed[i] = Value(item, depth+1)
		}
		return transformed
	case map[string]any:
		transformed := make(map[string]any, len(typed))
		for key, item := range typed {
			if IsExcludedField(key) {
				// excluded fields keep their value verbatim, nested
				// content included
				transformed[key] = item
			} else {
				transformed[key] = Value(item, depth+1)
			}
		}
		return transformed
	default:
		// numbers, booleans, nil
		return value
	}
}

// Body transforms a JSON request body. Non-JSON bodies are returned verbatim
// with no error. Any failure, recovered panics included, yields the original
// bytes so a broken transformation can never block or corrupt a request.
func Body(body []byte) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = body
			err = fmt.Errorf("transform panic: %v", r)
		}
	}()

	if len(body) == 0 {
		return body, nil
	}

	var decoded any
	if jsonErr := json.Unmarshal(body, &decoded); jsonErr != nil {
		return body, nil
	}

	transformed := Value(decoded, 0)
	encoded, jsonErr := json.Marshal(transformed)
	if jsonErr != nil {
		return body, fmt.Errorf("failed to re-encode transformed body: %w", jsonErr)
	}
	return encoded, nil
}
