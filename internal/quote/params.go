// file: internal/quote/params.go

package quote

import (
	"bytes"
	"net/url"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// FreightInfoParam carries the shipment line items, usually as a JSON
// document.
const FreightInfoParam = "freightInfo"

// ParseParams turns incoming query values into rate lookup parameters.
//
// Bracket keys build nested maps (items[0][qty]=2), "[]" appends, and a
// repeated plain key keeps its last value. A freightInfo given as a plain
// string is decoded as JSON; invalid JSON is a *ClientInputError.
func ParseParams(values url.Values) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(values))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, v := range values[key] {
			setParam(params, key, v)
		}
	}

	if err := decodeFreightInfo(params); err != nil {
		return nil, err
	}
	return params, nil
}

func setParam(params map[string]interface{}, key, value string) {
	base, segments := splitKey(key)
	if len(segments) == 0 {
		params[key] = value
		return
	}

	current, field := params, base
	for _, seg := range segments {
		next, ok := current[field].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[field] = next
		}
		if seg == "" {
			seg = strconv.Itoa(len(next))
		}
		current, field = next, seg
	}
	current[field] = value
}

// splitKey splits "a[b][]" into "a" and ["b", ""]. Keys that are not
// well-formed bracket expressions come back whole with no segments.
func splitKey(key string) (string, []string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return key, nil
	}

	base, rest := key[:open], key[open:]
	var segments []string
	for rest != "" {
		if rest[0] != '[' {
			return key, nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return base, segments
}

// decodeFreightInfo replaces a string freightInfo with its decoded form.
func decodeFreightInfo(params map[string]interface{}) error {
	raw, ok := params[FreightInfoParam].(string)
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var decoded interface{}
	if err := dec.Decode(&decoded); err != nil {
		return &ClientInputError{Field: FreightInfoParam, Message: "Invalid freightInfo JSON", Err: err}
	}
	if dec.More() {
		return &ClientInputError{Field: FreightInfoParam, Message: "Invalid freightInfo JSON"}
	}

	params[FreightInfoParam] = decoded
	return nil
}
