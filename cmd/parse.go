package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bookmybike/catalog-cli/internal/extract"
)

var (
	parseURL    string
	parseManual bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <payload-file>",
	Short: "Parse a saved source payload into the normalized catalog tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("parse"); err != nil {
			return err
		}

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "cli: reading %s", args[0])
		}

		result := extract.DefaultRegistry().Parse(extract.ParseRequest{
			Payload:     string(payload),
			SourceURL:   parseURL,
			ManualPaste: parseManual,
		})
		return printJSON(result)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseURL, "url", "", "source URL the payload was fetched from")
	parseCmd.Flags().BoolVar(&parseManual, "manual", false, "treat the payload as a manual paste, bypassing the domain allowlist")
	rootCmd.AddCommand(parseCmd)
}
