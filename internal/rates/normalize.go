// file: internal/rates/normalize.go

package rates

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"freight-rates/internal/jsonpath"
)

// UnknownCarrier is used when an entry names no carrier.
const UnknownCarrier = "UNKNOWN"

// NormalizedRate is the fixed-shape, UI-ready form of a rate entry.
// Total and TransitTime are nil when the provider omitted them or sent a
// value too large to represent.
type NormalizedRate struct {
	Carrier      string   `json:"CARRIER" yaml:"CARRIER"`
	ServiceLevel string   `json:"SERVICE LEVEL" yaml:"SERVICE LEVEL"`
	RateType     string   `json:"RATE TYPE" yaml:"RATE TYPE"`
	Total        *float64 `json:"TOTAL" yaml:"TOTAL"`
	TransitTime  *int     `json:"TRANSIT TIME" yaml:"TRANSIT TIME"`
}

// Field resolution rules, tried in order.
var (
	carrierRule      = jsonpath.Rule{"name", "carrier"}
	serviceLevelRule = jsonpath.Rule{"serviceLevel"}
	rateTypeRule     = jsonpath.Rule{"rateType"}
	totalRule        = jsonpath.Rule{"total"}
	transitDaysRule  = jsonpath.Rule{"transitDays"}
)

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// leadingNumber matches the numeric prefix of strings like "5 days".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Normalize maps raw entries to NormalizedRate one-to-one, preserving order.
func Normalize(raw []RawRateEntry) []NormalizedRate {
	out := make([]NormalizedRate, 0, len(raw))
	for _, entry := range raw {
		out = append(out, normalizeEntry(map[string]interface{}(entry)))
	}
	return out
}

func normalizeEntry(entry map[string]interface{}) NormalizedRate {
	rate := NormalizedRate{Carrier: UnknownCarrier}

	if v, ok := carrierRule.Lookup(entry); ok {
		rate.Carrier = stringValue(v)
	}
	if v, ok := serviceLevelRule.Lookup(entry); ok {
		rate.ServiceLevel = stringValue(v)
	}
	if v, ok := rateTypeRule.Lookup(entry); ok {
		rate.RateType = stringValue(v)
	}
	if v, ok := totalRule.Lookup(entry); ok {
		if total, ok := floatValue(numericValue(v)); ok {
			rate.Total = &total
		}
	}
	if v, ok := transitDaysRule.Lookup(entry); ok {
		if days, ok := intValue(numericValue(v)); ok {
			rate.TransitTime = &days
		}
	}

	return rate
}

// floatValue rejects amounts that do not fit a float64.
func floatValue(d decimal.Decimal) (float64, bool) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// intValue truncates toward zero and rejects values outside the int range.
func intValue(d decimal.Decimal) (int, bool) {
	whole := d.Truncate(0)
	if whole.LessThan(minInt) || whole.GreaterThan(maxInt) {
		return 0, false
	}
	return int(whole.IntPart()), true
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// numericValue casts v to a number the lenient way providers need:
// numeric strings parse, a leading number is taken from mixed text,
// booleans are 1 or 0 and anything else is zero.
func numericValue(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case json.Number:
		return parseDecimal(val.String())
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		return parseDecimal(val)
	case bool:
		if val {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	if prefix := leadingNumber.FindString(s); prefix != "" {
		if d, err := decimal.NewFromString(prefix); err == nil {
			return d
		}
	}
	return decimal.Zero
}
