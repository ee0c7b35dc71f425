// file: internal/jsonpath/traverse.go

// Package jsonpath resolves dot-separated paths against decoded JSON
// (map[string]interface{} objects and []interface{} arrays).
//
// Examples:
//   - "accessToken" → top-level property
//   - "data.results" → nested property
//   - "data.results.0.total" → array index access
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// traversePath navigates through a JSON structure one segment at a time.
// It returns an error naming the failing position when a segment cannot
// be resolved.
func traversePath(data interface{}, path []string) (interface{}, error) {
	current := data
	for i, segment := range path {
		if segment == "" {
			return nil, fmt.Errorf("empty path segment at position %d", i)
		}

		next, err := traverseSegment(current, segment, i)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// TraversePathString splits pathStr on '.' and calls traversePath.
// An empty path returns data unchanged.
func TraversePathString(data interface{}, pathStr string) (interface{}, error) {
	if pathStr == "" {
		return data, nil
	}
	return traversePath(data, strings.Split(pathStr, "."))
}

func traverseSegment(current interface{}, segment string, position int) (interface{}, error) {
	switch v := current.(type) {
	case map[string]interface{}:
		value, exists := v[segment]
		if !exists {
			return nil, fmt.Errorf("key '%s' not found at path position %d", segment, position)
		}
		return value, nil

	case []interface{}:
		index, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("invalid array index '%s' at path position %d", segment, position)
		}
		if index < 0 {
			index += len(v)
		}
		if index < 0 || index >= len(v) {
			return nil, fmt.Errorf("array index %s out of bounds at path position %d (array length: %d)",
				segment, position, len(v))
		}
		return v[index], nil

	case nil:
		return nil, fmt.Errorf("cannot traverse into nil at path position %d (segment: '%s')", position, segment)

	default:
		return nil, fmt.Errorf("cannot traverse into %T at path position %d (segment: '%s')", current, position, segment)
	}
}
