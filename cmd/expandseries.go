package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bookmybike/catalog-cli/internal/extract"
	"github.com/bookmybike/catalog-cli/internal/model"
)

var (
	seriesName     string
	seriesURL      string
	seriesCategory string
)

var expandSeriesCmd = &cobra.Command{
	Use:   "expand-series <owner-id>",
	Short: "Expand a series into sibling model stubs from stored payloads",
	Long:  "Walks the footer navigation embedded in previously saved page payloads and emits a stub model per series member, ready for discovery planning.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		sources, err := st.GetSources(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return eris.Errorf("cli: no stored sources for %s", args[0])
		}

		models := extract.ExpandSeries(sources, extract.SeriesQuery{
			SeriesName: seriesName,
			SeriesURL:  seriesURL,
			Category:   model.Category(seriesCategory),
		})
		return printJSON(models)
	},
}

func init() {
	expandSeriesCmd.Flags().StringVar(&seriesName, "series-name", "", "series title to match in the navigation")
	expandSeriesCmd.Flags().StringVar(&seriesURL, "series-url", "", "series URL to match in the navigation")
	expandSeriesCmd.Flags().StringVar(&seriesCategory, "category", "", "category stamped on the stub models")
	rootCmd.AddCommand(expandSeriesCmd)
}
