package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// ContactHandler implements the minimal contact/interaction surface the
// engine needs to be operable. Full CRM administration lives elsewhere.
type ContactHandler struct {
	store store.Store
	bus   event.Publisher
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(s store.Store, bus event.Publisher) *ContactHandler {
	return &ContactHandler{store: s, bus: bus}
}

// CreateContact handles POST /v1/contacts.
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var c types.ContactContext
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if c.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}

	if err := h.store.CreateContact(r.Context(), &c); err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if h.bus != nil && c.Source == "referral" {
		h.bus.Publish(r.Context(), event.NewReferralReceived(c.ID, c.Source))
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetContact handles GET /v1/contacts/{id}.
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.store.Contact(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListContacts handles GET /v1/contacts.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	contacts, err := h.store.ListContacts(r.Context(), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if contacts == nil {
		contacts = []types.ContactContext{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// AddInteraction handles POST /v1/contacts/{id}/interactions.
func (h *ContactHandler) AddInteraction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var in types.Interaction
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	in.ContactID = id
	if in.Type == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TYPE", "interaction type is required")
		return
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	if err := h.store.AddInteraction(r.Context(), &in); err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	h.publishInteractionEvents(r.Context(), id, in)
	writeJSON(w, http.StatusCreated, in)
}

func (h *ContactHandler) publishInteractionEvents(ctx context.Context, contactID string, in types.Interaction) {
	if h.bus == nil {
		return
	}
	if in.Type == "booking" {
		c, err := h.store.Contact(ctx, contactID)
		dest := ""
		if err == nil {
			dest = c.Destination
		}
		h.bus.Publish(ctx, event.NewBookingCreated(contactID, dest))
	}
}
