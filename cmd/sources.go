package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/model"
)

var sourceURL string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage stored raw source payloads",
}

var sourcesSaveCmd = &cobra.Command{
	Use:   "save <owner-id> <payload-file>",
	Short: "Append a raw payload to an item or brand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}
		payload, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrapf(err, "cli: reading %s", args[1])
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		ownerID := args[0]
		sources, err := st.GetSources(cmd.Context(), ownerID)
		if err != nil {
			return err
		}
		sources = append(sources, model.SourceSnapshot{
			ID:        uuid.NewString(),
			SourceURL: sourceURL,
			Payload:   string(payload),
		})
		if err := st.SaveSources(cmd.Context(), ownerID, sources); err != nil {
			return err
		}
		zap.L().Info("cli: source saved",
			zap.String("owner_id", ownerID),
			zap.Int("sources", len(sources)),
		)
		return nil
	},
}

var sourcesListCmd = &cobra.Command{
	Use:   "list <owner-id>",
	Short: "List stored payloads for an item or brand",
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

		type sourceInfo struct {
			ID        string `json:"id"`
			SourceURL string `json:"source_url"`
			Bytes     int    `json:"bytes"`
		}
		infos := make([]sourceInfo, 0, len(sources))
		for _, s := range sources {
			infos = append(infos, sourceInfo{ID: s.ID, SourceURL: s.SourceURL, Bytes: len(s.Payload)})
		}
		return printJSON(infos)
	},
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <owner-id>",
	Short: "Delete all stored payloads for an item or brand",
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

		if err := st.DeleteSources(cmd.Context(), args[0]); err != nil {
			return err
		}
		zap.L().Info("cli: sources deleted", zap.String("owner_id", args[0]))
		return nil
	},
}

func init() {
	sourcesSaveCmd.Flags().StringVar(&sourceURL, "url", "", "source URL the payload was fetched from")
	sourcesCmd.AddCommand(sourcesSaveCmd, sourcesListCmd, sourcesDeleteCmd)
	rootCmd.AddCommand(sourcesCmd)
}
