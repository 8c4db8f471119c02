package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/reconcile"
)

var syncExecute bool

var syncCmd = &cobra.Command{
	Use:   "sync <plan-file>",
	Short: "Apply a reviewed sync plan",
	Long:  "Runs a plan file produced by the plan command. Dry run by default; pass --execute to commit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "cli: reading %s", args[0])
		}
		var plan model.SyncPlan
		if err := json.Unmarshal(raw, &plan); err != nil {
			return eris.Wrap(err, "cli: parsing plan")
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		dl := newDownloader()
		if syncExecute {
			if err := dl.Preflight(); err != nil {
				return err
			}
		}

		result := reconcile.NewExecutor(st, dl).Execute(cmd.Context(), &plan, !syncExecute)
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Success {
			zap.L().Error("cli: sync finished with errors", zap.Int("errors", len(result.Errors)))
			return eris.New("cli: sync finished with errors")
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncExecute, "execute", false, "commit changes instead of the default dry run")
	rootCmd.AddCommand(syncCmd)
}
