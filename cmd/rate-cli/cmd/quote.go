// file: cmd/rate-cli/cmd/quote.go
package cmd

import (
	"github.com/spf13/cobra"

	"freight-rates/internal/cli"
)

func newQuoteCmd() *cobra.Command {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch, normalize and summarize rates",
		Example: `  rate-cli quote --param originZip=10001 --param destinationZip=90210 \
    --freight-info '[{"qty":1,"weight":500,"class":"70"}]'
  rate-cli quote --param originZip=10001 --cheapest --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, _ := cmd.Flags().GetStringArray("param")
			freightInfo, _ := cmd.Flags().GetString("freight-info")
			output, _ := cmd.Flags().GetString("output")
			cheapest, _ := cmd.Flags().GetBool("cheapest")

			renderer, err := cli.NewRenderer(output, cheapest)
			if err != nil {
				return err
			}
			values, err := cli.BuildQuery(params, freightInfo)
			if err != nil {
				return err
			}

			base, err := buildBase(cmd)
			if err != nil {
				return err
			}
			defer base.Logger.Sync()

			result, err := base.Quotes.QueryQuote(cmd.Context(), values)
			if err != nil {
				return err
			}
			return renderer.Render(cmd.OutOrStdout(), result)
		},
	}

	quoteCmd.Flags().StringArrayP("param", "p", nil, "Query parameter as key=value; repeatable, bracket keys nest")
	quoteCmd.Flags().String("freight-info", "", "freightInfo as a JSON string")
	quoteCmd.Flags().StringP("output", "o", cli.FormatPretty, "Output format: pretty, json or yaml")
	quoteCmd.Flags().Bool("cheapest", false, "Print only the cheapest rate per service level")
	return quoteCmd
}
