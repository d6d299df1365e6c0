// Handlers for the lead intelligence operations: scoring, insights,
// scripts, notification summaries and batch recalculation.
package handler

import (
	"net/http"

	"github.com/viajaplan/leadengine/internal/insight"
	"github.com/viajaplan/leadengine/internal/notify"
	"github.com/viajaplan/leadengine/internal/scoring"
	"github.com/viajaplan/leadengine/internal/script"
)

// LeadHandler exposes the engine operations over HTTP.
type LeadHandler struct {
	engine     *scoring.Engine
	recalc     *scoring.Recalculator
	insights   *insight.Generator
	summarizer *notify.Summarizer
	scripts    *script.Generator
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(
	engine *scoring.Engine,
	recalc *scoring.Recalculator,
	insights *insight.Generator,
	summarizer *notify.Summarizer,
	scripts *script.Generator,
) *LeadHandler {
	return &LeadHandler{
		engine:     engine,
		recalc:     recalc,
		insights:   insights,
		summarizer: summarizer,
		scripts:    scripts,
	}
}

// ScoreContact handles POST /v1/contacts/{id}/score.
func (h *LeadHandler) ScoreContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.engine.Score(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetInsights handles GET /v1/contacts/{id}/insights.
func (h *LeadHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	ins, err := h.insights.Insights(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

// GetScript handles GET /v1/contacts/{id}/script?scenario=....
func (h *LeadHandler) GetScript(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	scenario := r.URL.Query().Get("scenario")
	ts, err := h.scripts.Script(r.Context(), id, scenario)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

// SummarizeNotification handles POST /v1/notifications/summarize.
func (h *LeadHandler) SummarizeNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventType string         `json:"event_type"`
		ContactID string         `json:"contact_id"`
		Data      map[string]any `json:"data,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.EventType == "" || req.ContactID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "event_type and contact_id are required")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.EventType, req.ContactID, req.Data)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Recalculate handles POST /v1/leads/recalculate.
func (h *LeadHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.recalc.RecalculateAll(r.Context())
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
