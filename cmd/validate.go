package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bookmybike/catalog-cli/internal/extract"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [url ...]",
	Short: "Check URLs against the source domain allowlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if validateFile != "" {
			f, err := os.Open(validateFile)
			if err != nil {
				return eris.Wrapf(err, "cli: opening %s", validateFile)
			}
			defer f.Close()
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					urls = append(urls, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return eris.Wrapf(err, "cli: reading %s", validateFile)
			}
		}
		if len(urls) == 0 {
			return eris.New("cli: no URLs given; pass them as arguments or via --file")
		}

		valid, invalid := extract.ValidateURLs(urls)
		return printJSON(map[string]any{
			"valid":   valid,
			"invalid": invalid,
		})
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "file with one URL per line")
	rootCmd.AddCommand(validateCmd)
}
