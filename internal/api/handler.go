package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/pressroom/article-pager/internal/occurrence"
	"github.com/pressroom/article-pager/internal/paginator"
	"github.com/pressroom/article-pager/internal/payment"
	"github.com/pressroom/article-pager/internal/processor"
	"github.com/pressroom/article-pager/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Service processes one article into a report.
type Service interface {
	Process(text string) (processor.Report, error)
}

// Handler wires processor and storage dependencies into HTTP handlers.
type Handler struct {
	processor Service
	storage   storage.Storage

	clock func() time.Time

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(proc Service, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		processor: proc,
		storage:   store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		WordsPerLine: settings.WordsPerLine,
		LinesPerPage: settings.LinesPerPage,
		Tiers:        tiersToPayload(settings.Tiers),
		UpdatedAt:    h.currentSettingsUpdatedAt(),
	})
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	settings := storage.Settings{
		WordsPerLine: req.WordsPerLine,
		LinesPerPage: req.LinesPerPage,
		Tiers:        payloadToTiers(req.Tiers),
	}
	if err := h.storage.SetSettings(settings); err != nil {
		if errors.Is(err, storage.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()

	stored, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		WordsPerLine: stored.WordsPerLine,
		LinesPerPage: stored.LinesPerPage,
		Tiers:        tiersToPayload(stored.Tiers),
		UpdatedAt:    h.currentSettingsUpdatedAt(),
		Message:      "Settings updated successfully",
	})
}

func (h *Handler) handlePaginate(w http.ResponseWriter, r *http.Request) {
	var req paginateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	start := time.Now()
	report, err := h.processor.Process(req.Text)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, paginator.ErrInvalidText):
			writeError(w, http.StatusBadRequest, "Invalid article text", err.Error())
		case errors.Is(err, paginator.ErrInvalidLayout):
			writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	pages := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		pages[i] = page
	}

	writeJSON(w, http.StatusOK, paginateResponse{
		TotalPages:        report.TotalPages,
		TotalWords:        report.TotalWords,
		Payment:           report.Payment,
		Pages:             pages,
		CalculationTimeMs: elapsed.Milliseconds(),
	})
}

func (h *Handler) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	var req occurrencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	for _, v := range req.Values {
		if !isScalar(v) {
			writeError(w, http.StatusBadRequest, "Invalid values", "values must be JSON scalars")
			return
		}
	}

	count, err := occurrence.CountFrequent(req.Values, req.K)
	if err != nil {
		if errors.Is(err, occurrence.ErrInvalidDivisor) {
			writeError(w, http.StatusBadRequest, "Invalid divisor", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{
		Count:     count,
		Threshold: len(req.Values) / req.K,
		Total:     len(req.Values),
	})
}

// isScalar reports whether a decoded JSON value is safe to use as a map key.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, float64, string:
		return true
	default:
		return false
	}
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type tierPayload struct {
	Low    int  `json:"low"`
	High   *int `json:"high,omitempty"`
	Amount int  `json:"amount"`
}

func tiersToPayload(tiers []payment.Tier) []tierPayload {
	out := make([]tierPayload, len(tiers))
	for i, t := range tiers {
		out[i] = tierPayload{Low: t.Low, Amount: t.Amount}
		if t.High != payment.Unbounded {
			high := t.High
			out[i].High = &high
		}
	}
	return out
}

func payloadToTiers(payloads []tierPayload) []payment.Tier {
	out := make([]payment.Tier, len(payloads))
	for i, p := range payloads {
		out[i] = payment.Tier{Low: p.Low, High: payment.Unbounded, Amount: p.Amount}
		if p.High != nil {
			out[i].High = *p.High
		}
	}
	return out
}

type settingsRequest struct {
	WordsPerLine int           `json:"wordsPerLine"`
	LinesPerPage int           `json:"linesPerPage"`
	Tiers        []tierPayload `json:"tiers"`
}

type settingsResponse struct {
	WordsPerLine int           `json:"wordsPerLine"`
	LinesPerPage int           `json:"linesPerPage"`
	Tiers        []tierPayload `json:"tiers"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Message      string        `json:"message,omitempty"`
}

type paginateRequest struct {
	Text string `json:"text"`
}

type paginateResponse struct {
	TotalPages        int        `json:"totalPages"`
	TotalWords        int        `json:"totalWords"`
	Payment           int        `json:"payment"`
	Pages             [][]string `json:"pages"`
	CalculationTimeMs int64      `json:"calculationTimeMs"`
}

type occurrencesRequest struct {
	Values []any `json:"values"`
	K      int   `json:"k"`
}

type occurrencesResponse struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
	Total     int `json:"total"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
