// file: internal/cli/renderer.go

// Package cli formats quote results and parses command line parameters
// for rate-cli.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"freight-rates/internal/quote"
	"freight-rates/internal/rates"
)

// Output formats.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
)

const missingValue = "-"

// Renderer writes quote results in one format.
type Renderer struct {
	format       string
	cheapestOnly bool
}

// NewRenderer validates format and returns a renderer for it.
func NewRenderer(format string, cheapestOnly bool) (*Renderer, error) {
	switch format {
	case FormatPretty, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatPretty, FormatJSON, FormatYAML)
	}
	return &Renderer{format: format, cheapestOnly: cheapestOnly}, nil
}

// Render writes result to w.
func (r *Renderer) Render(w io.Writer, result *quote.Result) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(w, result)
	case FormatYAML:
		return r.renderYAML(w, result)
	default:
		return r.renderPretty(w, result)
	}
}

func (r *Renderer) payload(result *quote.Result) interface{} {
	if r.cheapestOnly {
		return result.Cheapest
	}
	return result
}

func (r *Renderer) renderJSON(w io.Writer, result *quote.Result) error {
	out, err := json.MarshalIndent(r.payload(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func (r *Renderer) renderYAML(w io.Writer, result *quote.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.payload(result)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func (r *Renderer) renderPretty(w io.Writer, result *quote.Result) error {
	if !r.cheapestOnly {
		fmt.Fprintf(w, "Rates (%d)\n", len(result.Data))
		if err := writeTable(w, result.Data); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Cheapest per service level (%d)\n", len(result.Cheapest))
	return writeTable(w, result.Cheapest)
}

func writeTable(w io.Writer, rows []rates.NormalizedRate) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "  no rates returned")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  CARRIER\tSERVICE LEVEL\tRATE TYPE\tTOTAL\tTRANSIT TIME")
	for _, rate := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			orMissing(rate.Carrier),
			orMissing(rate.ServiceLevel),
			orMissing(rate.RateType),
			formatTotal(rate.Total),
			formatTransit(rate.TransitTime))
	}
	return tw.Flush()
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingValue
	}
	return s
}

func formatTotal(v *float64) string {
	if v == nil {
		return missingValue
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatTransit(v *int) string {
	if v == nil {
		return missingValue
	}
	if *v == 1 {
		return "1 day"
	}
	return strconv.Itoa(*v) + " days"
}
