package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// Runner runs a registered report by name.
type Runner interface {
	Run(ctx context.Context, name string) (*pipeline.Outcome, error)
}

// History lists recorded runs, newest first.
type History interface {
	List(ctx context.Context, report string, limit int) ([]domain.RunSummary, error)
}

type Handler struct {
	registry reports.Registry
	runner   Runner
	history  History

	running sync.Mutex
	mu      sync.RWMutex
	outputs map[string]string
}

// NewHandler creates the report endpoints. history may be nil.
func NewHandler(registry reports.Registry, runner Runner, history History) *Handler {
	return &Handler{
		registry: registry,
		runner:   runner,
		history:  history,
		outputs:  make(map[string]string),
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	names := h.registry.List()
	response := make([]api.Report, 0, len(names))
	for _, name := range names {
		response = append(response, api.Report{Name: name})
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

// RunReport runs the report synchronously. Only one run executes at a time.
func (h *Handler) RunReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := chi.URLParam(r, "report")

	if !h.known(name) {
		writeError(ctx, w, http.StatusNotFound, "unknown report: "+name)
		return
	}
	if !h.running.TryLock() {
		writeError(ctx, w, http.StatusConflict, "a report run is already in progress")
		return
	}
	defer h.running.Unlock()

	outcome, err := h.runner.Run(ctx, name)
	switch {
	case errors.Is(err, reports.ErrUnknownReport):
		writeError(ctx, w, http.StatusNotFound, err.Error())
		return
	case outcome == nil:
		logger.Error().Err(err).Str("report", name).Msg("report run returned no outcome")
		writeError(ctx, w, http.StatusInternalServerError, "report run failed")
		return
	}

	run := api.NewRun(outcome.Summary())
	if err != nil {
		run.Error = err.Error()
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrConnect) {
			status = http.StatusBadGateway
		}
		writeJSON(ctx, w, status, run)
		return
	}

	if outcome.Output != "" {
		h.mu.Lock()
		h.outputs[name] = outcome.Output
		h.mu.Unlock()
	}
	writeJSON(ctx, w, http.StatusOK, run)
}

// GetDocument serves the last PDF generated for the report.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "report")

	if !h.known(name) {
		writeError(ctx, w, http.StatusNotFound, "unknown report: "+name)
		return
	}

	path := h.lastOutput(ctx, name)
	if path == "" {
		writeError(ctx, w, http.StatusNotFound, "no document generated for "+name)
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(ctx, w, http.StatusNotFound, "document no longer available for "+name)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	summaries, err := h.history.List(ctx, r.URL.Query().Get("report"), limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list runs")
		writeError(ctx, w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]api.Run, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, api.NewRun(s))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) known(name string) bool {
	for _, n := range h.registry.List() {
		if n == name {
			return true
		}
	}
	return false
}

// lastOutput falls back to the history when nothing ran since the server started.
func (h *Handler) lastOutput(ctx context.Context, name string) string {
	h.mu.RLock()
	path := h.outputs[name]
	h.mu.RUnlock()
	if path != "" || h.history == nil {
		return path
	}

	summaries, err := h.history.List(ctx, name, defaultLimit)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("report", name).Msg("failed to read run history")
		return ""
	}
	for _, s := range summaries {
		if s.Output != "" {
			return s.Output
		}
	}
	return ""
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, api.Error{Message: message})
}
