package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/srs-capital/fii-screener/internal/config"
	"github.com/srs-capital/fii-screener/internal/extract"
	"github.com/srs-capital/fii-screener/internal/model"
	"github.com/srs-capital/fii-screener/internal/pdftext"
	"github.com/srs-capital/fii-screener/internal/report"
	"github.com/srs-capital/fii-screener/internal/rules"
)

var servePort int

// analysisServer bundles the handler dependencies so the router can be
// built the same way in serve and in tests.
type analysisServer struct {
	extractor *extract.Extractor
	source    pdftext.Source
	limiter   *rate.Limiter
	maxUpload int64 // bytes
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fund analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		extractor, err := newExtractor(cfg.Extract)
		if err != nil {
			return err
		}

		srv := &analysisServer{
			extractor: extractor,
			source:    pdftext.NewPoppler(cfg.PDFText),
			limiter:   rate.NewLimiter(rate.Limit(cfg.Server.RatePerSec), cfg.Server.RateBurst),
			maxUpload: int64(cfg.Server.MaxUploadMB) << 20,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(srv, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newExtractor builds the metric extractor, honoring a pattern-table
// override file when configured.
func newExtractor(cfg config.ExtractConfig) (*extract.Extractor, error) {
	if cfg.PatternFile == "" {
		return extract.New(), nil
	}
	table, err := extract.LoadPatterns(cfg.PatternFile)
	if err != nil {
		return nil, err
	}
	return extract.NewWithPatterns(table)
}

// newRouter wires the chi routes and middleware.
func newRouter(srv *analysisServer, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/analyze", srv.handleAnalyze)
	r.Post("/report", srv.handleReport)

	return r
}

// analyzeError is the body of a 4xx analysis response.
type analyzeError struct {
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Metrics *model.MetricSet `json:"metrics,omitempty"`
}

// handleAnalyze accepts a multipart PDF upload and responds with the
// evaluation. Extraction failures map to 422 with the structured error and
// the partial metric set; only transport problems produce other statuses.
func (s *analysisServer) handleAnalyze(w http.ResponseWriter, req *http.Request) {
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, analyzeError{Error: "rate_limited", Message: "too many concurrent analyses; retry shortly"})
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, s.maxUpload)
	if err := req.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeError{Error: "invalid_upload", Message: "could not parse multipart upload"})
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeError{Error: "missing_file", Message: `multipart field "file" is required`})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeJSON(w, http.StatusBadRequest, analyzeError{Error: "invalid_file_type", Message: "please upload a PDF file"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), "fii-upload-"+uuid.NewString()+".pdf")
	tmp, err := os.Create(tmpPath)
	if err != nil {
		zap.L().Error("analyze: create temp file", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, analyzeError{Error: "processing_failed"})
		return
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		zap.L().Error("analyze: save upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, analyzeError{Error: "processing_failed"})
		return
	}
	tmp.Close()

	pages := pdftext.SafePages(req.Context(), s.source, tmpPath)
	set := s.extractor.Metrics(pages)

	if set.Err != nil {
		zap.L().Info("analyze: document not analyzable",
			zap.String("ticker", set.Ticker),
			zap.String("kind", string(set.Err.Kind)),
		)
		writeJSON(w, http.StatusUnprocessableEntity, analyzeError{
			Error:   string(set.Err.Kind),
			Message: set.Err.Message,
			Metrics: &set,
		})
		return
	}

	ev := rules.Evaluate(set)
	zap.L().Info("analyze: evaluation complete",
		zap.String("ticker", ev.Ticker),
		zap.String("recommendation", string(ev.Recommendation)),
		zap.Float64("score", ev.Score),
	)
	writeJSON(w, http.StatusOK, ev)
}

// handleReport renders a previously produced evaluation as a printable
// HTML document.
func (s *analysisServer) handleReport(w http.ResponseWriter, req *http.Request) {
	var ev model.Evaluation
	if err := json.NewDecoder(req.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeError{Error: "invalid_body", Message: "body must be an evaluation JSON document"})
		return
	}

	doc, err := report.HTML(ev)
	if err != nil {
		zap.L().Error("report: render failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, analyzeError{Error: "render_failed"})
		return
	}

	ticker := ev.Ticker
	if ticker == "" {
		ticker = "FII"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=analise_%s.html", ticker))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
