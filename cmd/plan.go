package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bookmybike/catalog-cli/internal/extract"
	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/reconcile"
	"github.com/bookmybike/catalog-cli/internal/review"
)

var (
	planBrandID   string
	planMode      string
	planURL       string
	planManual    bool
	planOverrides string
	planOut       string
	planXLSX      string
)

var planCmd = &cobra.Command{
	Use:   "plan <payload-file>",
	Short: "Parse a payload and build a sync plan against the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "cli: reading %s", args[0])
		}

		result := extract.DefaultRegistry().Parse(extract.ParseRequest{
			Payload:     string(payload),
			SourceURL:   planURL,
			ManualPaste: planManual,
		})
		if !result.Success {
			return eris.Errorf("cli: extraction failed: %v", result.Errors)
		}

		overrides, err := loadOverrides(planOverrides)
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		mode := planMode
		if mode == "" {
			mode = cfg.Ingest.DefaultMode
		}
		plan, err := reconcile.NewPlanner(st).Build(cmd.Context(), result.Models, planBrandID, overrides, model.PlanMode(mode))
		if err != nil {
			return err
		}

		if planXLSX != "" {
			if err := review.WritePlanXLSX(plan, planXLSX); err != nil {
				return err
			}
			zap.L().Info("cli: plan spreadsheet written", zap.String("path", planXLSX))
		}

		if planOut != "" {
			raw, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return eris.Wrap(err, "cli: encoding plan")
			}
			if err := os.WriteFile(planOut, raw, 0o644); err != nil {
				return eris.Wrapf(err, "cli: writing %s", planOut)
			}
			zap.L().Info("cli: plan written", zap.String("path", planOut))
			return nil
		}
		return printJSON(plan)
	},
}

// loadOverrides reads a reviewer's match-override file, JSON or YAML by
// extension.
func loadOverrides(path string) (map[string]string, error) {
	overrides := map[string]string{}
	if path == "" {
		return overrides, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cli: reading overrides %s", path)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(raw, &overrides); err != nil {
			return nil, eris.Wrap(err, "cli: parsing overrides")
		}
		return overrides, nil
	}
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrap(err, "cli: parsing overrides")
	}
	return overrides, nil
}

func init() {
	planCmd.Flags().StringVar(&planBrandID, "brand-id", "", "brand id to reconcile against (required)")
	planCmd.Flags().StringVar(&planMode, "mode", "", "plan mode: ITEM or DISCOVERY (default from config)")
	planCmd.Flags().StringVar(&planURL, "url", "", "source URL the payload was fetched from")
	planCmd.Flags().BoolVar(&planManual, "manual", false, "treat the payload as a manual paste")
	planCmd.Flags().StringVar(&planOverrides, "overrides", "", "JSON file mapping match keys to existing record ids")
	planCmd.Flags().StringVar(&planOut, "out", "", "write the plan JSON to this file instead of stdout")
	planCmd.Flags().StringVar(&planXLSX, "xlsx", "", "also write a review spreadsheet to this path")
	planCmd.MarkFlagRequired("brand-id")
	rootCmd.AddCommand(planCmd)
}
