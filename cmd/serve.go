package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundperf-cli/internal/csvfile"
	"github.com/sells-group/fundperf-cli/internal/importer"
	"github.com/sells-group/fundperf-cli/internal/store"
	"github.com/sells-group/fundperf-cli/internal/upload"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API the dashboard upload UI talks to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           apiRouter(s),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// apiRouter builds the upload API: validation preview, import, and the audit
// log, mirroring what the CLI commands do.
func apiRouter(s store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/validate", func(w http.ResponseWriter, req *http.Request) {
		res, ok := validateRequest(w, req, s)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	r.Post("/api/import", func(w http.ResponseWriter, req *http.Request) {
		res, ok := validateRequest(w, req, s)
		if !ok {
			return
		}
		if !res.IsValid {
			writeJSON(w, http.StatusUnprocessableEntity, res)
			return
		}

		chunkSize := cfg.Import.ChunkSize
		if v := req.URL.Query().Get("chunk_size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid chunk_size")
				return
			}
			chunkSize = n
		}
		exec := importer.New(s, importer.WithChunkSize(chunkSize))

		if req.URL.Query().Get("dry_run") == "true" {
			preview, err := exec.DryRun(req.Context(), res.UploadType, res.Rows)
			if err != nil {
				zap.L().Error("dry run failed", zap.Error(err))
				writeError(w, http.StatusBadGateway, "store probe failed")
				return
			}
			writeJSON(w, http.StatusOK, preview)
			return
		}

		out, err := exec.Run(req.Context(), res.UploadType, req.URL.Query().Get("filename"), res.Rows)
		if err != nil && out.Failed() {
			zap.L().Error("import failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, out)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/imports", func(w http.ResponseWriter, req *http.Request) {
		limit := 20
		if v := req.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		entries, err := s.ListImports(req.Context(), limit)
		if err != nil {
			zap.L().Error("list imports failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "store query failed")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	return r
}

// validateRequest parses the CSV body and validation knobs shared by the
// validate and import endpoints. Writes the error response itself on failure.
func validateRequest(w http.ResponseWriter, req *http.Request, s store.Store) (*upload.Result, bool) {
	q := req.URL.Query()

	var picker *upload.PickerDate
	if q.Get("month") != "" || q.Get("year") != "" {
		month, errM := strconv.Atoi(q.Get("month"))
		year, errY := strconv.Atoi(q.Get("year"))
		if errM != nil || errY != nil {
			writeError(w, http.StatusBadRequest, "month and year must be integers and given together")
			return nil, false
		}
		picker = &upload.PickerDate{Year: year, Month: time.Month(month)}
		if !picker.Valid() {
			writeError(w, http.StatusBadRequest, "invalid month/year")
			return nil, false
		}
	}

	file, err := csvfile.Read(req.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable CSV: "+err.Error())
		return nil, false
	}

	known, err := knownTickers(req.Context(), s, file.Header)
	if err != nil {
		zap.L().Error("catalog lookup failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog lookup failed")
		return nil, false
	}

	res := upload.Validate(file.Header, file.Rows, known, upload.Options{
		RequireEOM: q.Get("require_eom") == "true" || cfg.Import.RequireEOM,
		AllowMixed: q.Get("allow_mixed") == "true",
		Picker:     picker,
	})
	return res, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
