// file: internal/cli/params.go

package cli

import (
	"fmt"
	"net/url"
	"strings"

	"freight-rates/internal/quote"
)

// BuildQuery turns repeated key=value pairs into query values. Keys may use
// bracket notation (freightInfo[0][weight]=100). freightInfo, when non-empty,
// is added as the raw JSON freightInfo parameter.
func BuildQuery(pairs []string, freightInfo string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		values.Add(key, value)
	}

	if freightInfo != "" {
		if values.Has(quote.FreightInfoParam) {
			return nil, fmt.Errorf("%s given both as --param and --freight-info", quote.FreightInfoParam)
		}
		values.Set(quote.FreightInfoParam, freightInfo)
	}
	return values, nil
}
