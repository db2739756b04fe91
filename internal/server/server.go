package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quantisuite/internal/calc"
	"quantisuite/internal/convert"
	"quantisuite/internal/history"
	"quantisuite/internal/metrics"
	"quantisuite/internal/storage"
)

// Server exposes the calculators and the shared history over HTTP.
type Server struct {
	History *history.Log
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewHandler builds the API router.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/eval", s.Eval)
		r.Get("/rewrite", s.Rewrite)
		r.Get("/convert", s.Convert)
		r.Get("/history", s.ListHistory)
		r.Delete("/history", s.ClearHistory)
		r.Get("/history.csv", s.ExportHistory)
	})
	return r
}

// observe counts requests by route pattern once chi has matched them.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.ObserveRequest(route, ww.Status())
		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type evalRequest struct {
	Expression string `json:"expression"`
	Mode       string `json:"mode"`
	Simple     bool   `json:"simple"`
}

type evalResponse struct {
	Expression string  `json:"expression"`
	Result     string  `json:"result"`
	Value      float64 `json:"value"`
	Rewritten  string  `json:"rewritten,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Eval handles POST /api/eval.
func (s *Server) Eval(w http.ResponseWriter, r *http.Request) {
	var body evalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	mode, err := calc.ParseAngleMode(body.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	opts := []calc.CalculatorOption{calc.WithAngleMode(mode), calc.WithLogger(s.Logger)}
	if s.History != nil {
		opts = append(opts, calc.WithRecorder(s.History))
	}
	c := calc.New(opts...)

	kind := calc.KindScientific
	run := c.Scientific
	if body.Simple {
		kind, run = calc.KindSimple, c.Simple
	}

	start := time.Now()
	res, err := run(body.Expression)
	s.Metrics.ObserveCalculation(kind, time.Since(start), err)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: metrics.Outcome(err)})
		return
	}

	writeJSON(w, http.StatusOK, evalResponse{
		Expression: res.Expression,
		Result:     res.Text,
		Value:      res.Value,
		Rewritten:  res.Rewritten,
	})
}

// Rewrite handles GET /api/rewrite.
func (s *Server) Rewrite(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("expr")
	mode, err := calc.ParseAngleMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"expression": expr,
		"rewritten":  calc.Rewrite(expr, mode),
		"mode":       mode.String(),
	})
}

// Convert handles GET /api/convert.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "value must be a number"})
		return
	}
	out, err := convert.Convert(q.Get("category"), q.Get("from"), q.Get("to"), v)
	switch {
	case errors.Is(err, convert.ErrNonFinite):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": convert.Format(out),
		"value":  out,
	})
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
	Stats   history.Stats   `json:"stats"`
}

// ListHistory handles GET /api/history.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeJSON(w, http.StatusOK, historyResponse{Entries: []history.Entry{}})
		return
	}
	filter, err := history.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	entries := s.History.Filter(history.Query{Filter: filter, Search: r.URL.Query().Get("q")})
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Stats: s.History.Stats()})
}

// ClearHistory handles DELETE /api/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.History != nil {
		if err := s.History.Clear(r.Context()); err != nil {
			s.Logger.Error("failed to clear history", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to clear history"})
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportHistory handles GET /api/history.csv.
func (s *Server) ExportHistory(w http.ResponseWriter, r *http.Request) {
	var entries []history.Entry
	if s.History != nil {
		entries = s.History.Entries()
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calculator_history.csv"`)
	if err := storage.WriteCSV(w, entries); err != nil {
		s.Logger.Error("history export failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
