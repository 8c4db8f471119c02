package main

import (
	"github.com/spf13/cobra"

	"github.com/bookmybike/catalog-cli/internal/extract"
)

var extractorsCmd = &cobra.Command{
	Use:   "extractors",
	Short: "List registered extractors and allowed source domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(map[string]any{
			"extractors":      extract.DefaultRegistry().Extractors(),
			"allowed_domains": extract.DomainAllowlist,
		})
	},
}

func init() {
	rootCmd.AddCommand(extractorsCmd)
}
