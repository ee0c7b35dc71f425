// file: internal/jsonpath/rule.go

package jsonpath

import "strings"

// Rule is an ordered list of candidate paths for one logical field.
// Providers are inconsistent about where they put things, so a field is
// resolved by trying each candidate in turn.
type Rule []string

// Lookup returns the value at the first candidate path that resolves to a
// non-null value. A candidate that exists but holds null is treated the
// same as a missing one.
func (r Rule) Lookup(data interface{}) (interface{}, bool) {
	for _, candidate := range r {
		value, err := TraversePathString(data, candidate)
		if err != nil || value == nil {
			continue
		}
		return value, true
	}
	return nil, false
}

// String renders the rule for logs and error messages
func (r Rule) String() string {
	return strings.Join(r, " | ")
}
