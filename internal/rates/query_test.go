package rates

import (
	"net/url"
	"testing"

	json "github.com/goccy/go-json"
)

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		want   url.Values
	}{
		{
			name:   "empty",
			params: nil,
			want:   url.Values{},
		},
		{
			name: "scalars",
			params: map[string]interface{}{
				"originZipcode": "10001",
				"pickupDate":    "2026-10-20",
				"uom":           "US",
				"weight":        json.Number("1500"),
				"hazmat":        false,
				"liftgate":      true,
				"skip":          nil,
				"pallets":       2.0,
			},
			want: url.Values{
				"originZipcode": {"10001"},
				"pickupDate":    {"2026-10-20"},
				"uom":           {"US"},
				"weight":        {"1500"},
				"hazmat":        {"0"},
				"liftgate":      {"1"},
				"pallets":       {"2"},
			},
		},
		{
			name: "nested freight info",
			params: map[string]interface{}{
				"freightInfo": []interface{}{
					map[string]interface{}{"qty": json.Number("2"), "weight": json.Number("500"), "dims": map[string]interface{}{"l": 48.0}},
					map[string]interface{}{"qty": json.Number("1"), "class": "70"},
				},
			},
			want: url.Values{
				"freightInfo[0][qty]":     {"2"},
				"freightInfo[0][weight]":  {"500"},
				"freightInfo[0][dims][l]": {"48"},
				"freightInfo[1][qty]":     {"1"},
				"freightInfo[1][class]":   {"70"},
			},
		},
		{
			name: "string lists",
			params: map[string]interface{}{
				"accessorials": []string{"LIFTGATE", "RESIDENTIAL"},
			},
			want: url.Values{
				"accessorials[0]": {"LIFTGATE"},
				"accessorials[1]": {"RESIDENTIAL"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := url.ParseQuery(EncodeQuery(tt.params))
			if err != nil {
				t.Fatalf("EncodeQuery() produced invalid query: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("EncodeQuery() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.Get(k) != v[0] {
					t.Errorf("EncodeQuery()[%s] = %q, want %q", k, got.Get(k), v[0])
				}
			}
		})
	}
}

func TestEncodeQueryIsStable(t *testing.T) {
	params := map[string]interface{}{"b": "2", "a": "1", "c": map[string]interface{}{"y": "1", "x": "2"}}

	first := EncodeQuery(params)
	for i := 0; i < 10; i++ {
		if got := EncodeQuery(params); got != first {
			t.Fatalf("EncodeQuery() = %q, want %q", got, first)
		}
	}
	if first != "a=1&b=2&c%5Bx%5D=2&c%5By%5D=1" {
		t.Errorf("EncodeQuery() = %q", first)
	}
}
