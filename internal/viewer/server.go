package viewer

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/rickgao/quotefeed/internal/export"
	"github.com/rickgao/quotefeed/internal/metrics"
	"github.com/rickgao/quotefeed/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds viewer settings.
type Config struct {
	Dir         string  // Processed output root
	MetricsPath string  // Empty disables the metrics route
	ReplayRate  float64 // Trades per second; <= 0 means unpaced
	ReplayBurst int
}

// Server routes viewer requests.
type Server struct {
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Server. m may be nil.
func New(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReplayBurst < 1 {
		cfg.ReplayBurst = 1
	}
	return &Server{cfg: cfg, metrics: m, logger: logger}
}

// Routes returns the viewer's handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	if s.cfg.MetricsPath != "" && s.metrics != nil {
		r.Handle(s.cfg.MetricsPath, s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/dates", s.handleDates)
		r.With(dateCtx).Get("/stocks/{date}", s.handleStocks)
		r.With(dateCtx, stockCtx).Get("/data/{date}/{stock}", s.handleData)
		r.With(dateCtx, stockCtx).Get("/replay/{date}/{stock}", s.handleReplay)
	})
	return r
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func dateCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !export.ValidDate(chi.URLParam(r, "date")) {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func stockCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !export.ValidSymbol(chi.URLParam(r, "stock")) {
			writeError(w, http.StatusBadRequest, "invalid stock")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status string       `json:"status"`
	Build  version.Info `json:"build"`
	Time   time.Time    `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Build:  version.Get(),
		Time:   time.Now().UTC(),
	})
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := export.ListDates(s.cfg.Dir)
	if err != nil {
		s.logger.Error("failed to list dates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list dates")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, dates)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	symbols, err := export.ListSymbols(s.cfg.Dir, date, export.FormatJSON)
	if err != nil {
		s.logger.Error("failed to list stocks", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list stocks")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, http.StatusOK, symbols)
}

// handleData streams the stored document as is.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	date, stock := chi.URLParam(r, "date"), chi.URLParam(r, "stock")
	f, err := os.Open(export.Path(s.cfg.Dir, date, stock, export.FormatJSON))
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "no data for "+stock+" on "+date)
		return
	}
	if err != nil {
		s.logger.Error("failed to open bundle", "date", date, "stock", stock, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read data")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Debug("failed to send bundle", "date", date, "stock", stock, "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
