package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/groundwater-insights/internal/adapter/dataset"
	"github.com/couchcryptid/groundwater-insights/internal/adapter/predict"
	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	defaultSearchLimit = 20
	maxRequestBody     = 1 << 20
)

// Regions is the dataset surface the API browses.
type Regions interface {
	States() []string
	Districts(state string) ([]string, error)
	Cities(state, district string) ([]string, error)
	Search(query string, limit int) []dataset.Match
	RequestFor(state, district, city string) (analysis.Request, error)
}

// Analyzer produces a report for a region.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Report, error)
}

// Predictions serves superseding prediction lookups, one selection per session.
type Predictions interface {
	Select(ctx context.Context, session, region string) (domain.Prediction, error)
}

// Handler implements the /api/v1 endpoints.
type Handler struct {
	regions     Regions
	analyzer    Analyzer
	predictions Predictions
	logger      *slog.Logger
}

// NewHandler creates a Handler. A nil predictions disables the prediction
// endpoint, which then answers 503.
func NewHandler(regions Regions, analyzer Analyzer, predictions Predictions, logger *slog.Logger) *Handler {
	return &Handler{
		regions:     regions,
		analyzer:    analyzer,
		predictions: predictions,
		logger:      logger,
	}
}

// ListStates handles GET /api/v1/states.
func (h *Handler) ListStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"states": h.regions.States()})
}

// ListDistricts handles GET /api/v1/states/{state}/districts.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	districts, err := h.regions.Districts(state)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "districts": districts})
}

// ListCities handles GET /api/v1/states/{state}/districts/{district}/cities.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	state, district := chi.URLParam(r, "state"), chi.URLParam(r, "district")
	cities, err := h.regions.Cities(state, district)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "district": district, "cities": cities})
}

// Search handles GET /api/v1/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	matches := h.regions.Search(q, limit)
	if matches == nil {
		matches = []dataset.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": matches})
}

// AnalyzeRegion handles GET /api/v1/analysis?state=&district=&city=.
func (h *Handler) AnalyzeRegion(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state, district := query.Get("state"), query.Get("district")
	if strings.TrimSpace(state) == "" || strings.TrimSpace(district) == "" {
		writeError(w, http.StatusBadRequest, "state and district are required")
		return
	}

	req, err := h.regions.RequestFor(state, district, query.Get("city"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	h.analyze(w, r, req)
}

// AnalyzeInline handles POST /api/v1/analysis with metrics and optional
// series supplied in the body.
func (h *Handler) AnalyzeInline(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Region) == "" {
		writeError(w, http.StatusBadRequest, "region is required")
		return
	}
	h.analyze(w, r, req)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request, req analysis.Request) {
	report, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Error("analysis failed", "region", req.Region, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Predict handles GET /api/v1/predictions/{region}. Selections are scoped by
// the session query parameter, or by client address when it is absent.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if h.predictions == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction service is not configured")
		return
	}

	region := strings.TrimSpace(chi.URLParam(r, "region"))
	if region == "" {
		writeError(w, http.StatusBadRequest, "region is required")
		return
	}

	prediction, err := h.predictions.Select(r.Context(), sessionID(r), region)
	if err != nil {
		h.writePredictionError(w, r, region, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, dataset.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("region lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "region lookup failed")
}

func (h *Handler) writePredictionError(w http.ResponseWriter, r *http.Request, region string, err error) {
	var extErr *domain.ExternalServiceError
	switch {
	case errors.Is(err, predict.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case r.Context().Err() != nil:
		writeError(w, http.StatusGatewayTimeout, "prediction request did not complete")
	case errors.As(err, &extErr):
		h.logger.Warn("prediction failed", "region", region, "status", extErr.Status, "error", err,
			"request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadGateway, extErr.Error())
	default:
		h.logger.Error("prediction failed", "region", region, "error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
	}
}

func sessionID(r *http.Request) string {
	if s := strings.TrimSpace(r.URL.Query().Get("session")); s != "" {
		return s
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
