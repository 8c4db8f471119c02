package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/extract"
	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/reconcile"
	"github.com/bookmybike/catalog-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the review UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(st store.Store) http.Handler {
	registry := extract.DefaultRegistry()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/extractors", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"extractors":      registry.Extractors(),
			"allowed_domains": extract.DomainAllowlist,
		})
	})

	r.Post("/parse", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Payload     string `json:"payload"`
			SourceURL   string `json:"source_url"`
			ManualPaste bool   `json:"manual_paste"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Payload == "" {
			writeError(w, http.StatusBadRequest, "payload is required")
			return
		}

		result := registry.Parse(extract.ParseRequest{
			Payload:     body.Payload,
			SourceURL:   body.SourceURL,
			ManualPaste: body.ManualPaste,
		})
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/plan", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Models    []model.ExtractedModel `json:"models"`
			BrandID   string                 `json:"brand_id"`
			Mode      string                 `json:"mode"`
			Overrides map[string]string      `json:"overrides"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.BrandID == "" {
			writeError(w, http.StatusBadRequest, "brand_id is required")
			return
		}

		plan, err := reconcile.NewPlanner(st).Build(req.Context(), body.Models, body.BrandID, body.Overrides, model.PlanMode(body.Mode))
		if err != nil {
			zap.L().Error("serve: plan build failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "plan build failed")
			return
		}
		writeJSON(w, http.StatusOK, plan)
	})

	r.Post("/sync", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Plan    *model.SyncPlan `json:"plan"`
			Execute bool            `json:"execute"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Plan == nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		dl := newDownloader()
		if body.Execute {
			if err := dl.Preflight(); err != nil {
				zap.L().Error("serve: media root not writable", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "media root not writable")
				return
			}
		}

		result := reconcile.NewExecutor(st, dl).Execute(req.Context(), body.Plan, !body.Execute)
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
