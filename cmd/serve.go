package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/options"
	"github.com/sells-group/leadgen-cli/internal/query"
)

var (
	servePort      int
	serveInputPath string
	serveDelimiter string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the criteria JSON API for the UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var ds *dataset.Dataset
		if serveInputPath != "" {
			var err error
			ds, err = loadDataset(ctx, serveInputPath, serveDelimiter)
			if err != nil {
				return err
			}
			zap.L().Info("serve: option dataset loaded",
				zap.String("path", serveInputPath),
				zap.Int("rows", ds.Len()))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(ds, cfg.Query.View),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the JSON API. The option dataset is optional; its
// endpoints answer 503 until one is loaded.
func newRouter(ds *dataset.Dataset, view string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/score", func(w http.ResponseWriter, req *http.Request) {
		crit, _, ok := decodeCriteria(w, req)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"score": criteria.Score(crit)})
	})

	r.Post("/v1/compile", func(w http.ResponseWriter, req *http.Request) {
		crit, body, ok := decodeCriteria(w, req)
		if !ok {
			return
		}
		q, err := query.Compile(crit, criteria.NewExclusionSet(body.Exclude...), query.Options{
			Table: view,
			Limit: body.Limit,
		})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sql":    q.SQL,
			"params": q.Params,
			"score":  criteria.Score(crit),
		})
	})

	r.Get("/v1/options/{field}", func(w http.ResponseWriter, req *http.Request) {
		if ds == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no option dataset loaded"})
			return
		}
		limit := 30
		if raw := req.URL.Query().Get("limit"); raw != "" {
			fmt.Sscanf(raw, "%d", &limit) //nolint:errcheck
		}

		field := criteria.Field(chi.URLParam(req, "field"))
		var values any
		switch field {
		case criteria.FieldTradeName:
			values = options.TopKeywords(ds, "nome_fantasia", limit, normalize.Stopwords, true, true)
		case criteria.FieldPartnerName:
			values = options.TopKeywords(ds, "nomes_socios", limit, normalize.Stopwords, true, true)
		case criteria.FieldPrimaryCNAE:
			values = options.TopCodedPairs(ds, options.Principal, limit, true, true)
		case criteria.FieldSecondaryCNAE:
			values = options.TopCodedPairs(ds, options.Secondary, limit, true, true)
		case criteria.FieldPartnerQualification:
			values = options.TopDistinctValues(ds, "qualificacoes", limit, true, true)
		case criteria.FieldPartnerAgeBracket:
			values = options.TopDistinctValues(ds, "faixas_etarias", limit, true, true)
		case criteria.FieldState, criteria.FieldCity, criteria.FieldDistrict,
			criteria.FieldCompanySize, criteria.FieldLegalNature,
			criteria.FieldSimplesOptIn, criteria.FieldMEIOptIn, criteria.FieldAreaCode:
			values = options.TopDistinctValues(ds, string(field), limit, true, true)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown option field"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"field": field, "values": values})
	})

	return r
}

type compileRequest struct {
	Filters map[string]any `json:"filters"`
	Exclude []string       `json:"exclude"`
	Limit   int            `json:"limit"`
}

func decodeCriteria(w http.ResponseWriter, req *http.Request) (criteria.Criteria, *compileRequest, bool) {
	var body compileRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, nil, false
	}
	crit, err := criteria.FromMap(body.Filters)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, nil, false
	}
	return crit, &body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveInputPath, "input", "", "company dataset backing the option endpoints")
	serveCmd.Flags().StringVar(&serveDelimiter, "delimiter", ";", "CSV delimiter")
	rootCmd.AddCommand(serveCmd)
}
