// file: internal/rates/query.go

package rates

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// EncodeQuery flattens params into a query string. Nested maps and
// slices use bracket keys (freightInfo[0][qty]=2), booleans become 1/0
// and nil values are skipped. Keys are sorted so the output is stable.
func EncodeQuery(params map[string]interface{}) string {
	values := url.Values{}
	for key, value := range params {
		appendValue(values, key, value)
	}
	return values.Encode()
}

func appendValue(values url.Values, key string, value interface{}) {
	switch v := value.(type) {
	case nil:
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(values, key+"["+k+"]", v[k])
		}
	case []interface{}:
		for i, item := range v {
			appendValue(values, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []string:
		for i, item := range v {
			values.Add(key+"["+strconv.Itoa(i)+"]", item)
		}
	case bool:
		if v {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case string:
		values.Add(key, v)
	case json.Number:
		values.Add(key, v.String())
	case float64:
		values.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
	default:
		values.Add(key, fmt.Sprint(v))
	}
}
