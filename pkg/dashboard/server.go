// Package dashboard serves the tracker over HTTP: the symbol universe, JSON reports and
// the downloadable XLSX workbook.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/tracker"
	"github.com/rxtech-lab/ohlc-tracker/internal/version"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/export"
)

// Server is the HTTP dashboard.
type Server struct {
	tracker *tracker.Tracker
	log     *logger.Logger

	// HTTP server
	httpServer *http.Server
	listener   net.Listener
}

// SymbolsResponse describes the configured market.
type SymbolsResponse struct {
	Symbols  []string `json:"symbols"`
	Provider string   `json:"provider"`
	Timezone string   `json:"timezone"`
	Session  string   `json:"session"`
	Lookback string   `json:"lookback"`
	Interval string   `json:"interval"`
}

// FetchRequest selects the symbols of a fetch. An empty list means the whole universe.
type FetchRequest struct {
	Symbols []string `json:"symbols"`
}

// FetchResponse is a finished batch.
type FetchResponse struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   *batch.Report `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewServer creates a dashboard over t.
func NewServer(t *tracker.Tracker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	return &Server{
		tracker:    t,
		log:        log,
		httpServer: nil,
		listener:   nil,
	}
}

// Handler returns the router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/symbols", s.handleSymbols).Methods(http.MethodGet)
	router.HandleFunc("/api/fetch", s.handleFetch).Methods(http.MethodPost)
	router.HandleFunc("/api/report.xlsx", s.handleReport).Methods(http.MethodGet)

	return router
}

// Start listens on address and serves in the background.
// If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("dashboard stopped", zap.Error(err))
		}
	}()

	s.log.Info("dashboard listening", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the server.
func (s *Server) BaseURL() string {
	return "http://" + s.Address()
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

// handleSymbols handles GET /api/symbols
func (s *Server) handleSymbols(w http.ResponseWriter, _ *http.Request) {
	cfg := s.tracker.Config()

	s.writeJSON(w, http.StatusOK, SymbolsResponse{
		Symbols:  s.tracker.Symbols(),
		Provider: s.tracker.ProviderName(),
		Timezone: cfg.Timezone,
		Session:  cfg.Session.Start + "-" + cfg.Session.End,
		Lookback: cfg.Lookback,
		Interval: cfg.Interval,
	})
}

// handleFetch handles POST /api/fetch
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))
		return
	}

	report, err := s.tracker.Fetch(r.Context(), req.Symbols, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	succeeded := len(report.Successes())

	s.writeJSON(w, http.StatusOK, FetchResponse{
		Total:     report.Len(),
		Succeeded: succeeded,
		Failed:    report.Len() - succeeded,
		Results:   report,
	})
}

// handleReport handles GET /api/report.xlsx?symbols=A,B
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	symbols := tracker.SplitSymbols(r.URL.Query().Get("symbols"))

	report, err := s.tracker.Fetch(r.Context(), symbols, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := s.tracker.Workbook(report)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.tracker.Config().ReportFileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.log.Warn("failed to write workbook", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(code)})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidSymbol, errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidLookback, errors.ErrCodeInvalidInterval:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
