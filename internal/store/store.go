// Package store provides the contact record store consumed by the lead
// intelligence engine. Contacts, interactions and tasks live here; the
// engine reads snapshots with derived aggregates and writes back scores.
package store

import (
	"context"
	"errors"

	"github.com/viajaplan/leadengine/internal/types"
)

// ErrNotFound is returned when a contact id does not exist.
var ErrNotFound = errors.New("contact not found")

// Store is the interface for reading contact context and writing back
// scoring output.
type Store interface {
	// CreateContact inserts a contact. Fills ID and CreatedAt when empty.
	CreateContact(ctx context.Context, c *types.ContactContext) error

	// Contact returns the full snapshot for one contact, including the
	// derived aggregates (interaction counts, task counts).
	Contact(ctx context.Context, id string) (types.ContactContext, error)

	// ListContacts returns contacts ordered by score descending.
	ListContacts(ctx context.Context, limit, offset int) ([]types.ContactContext, error)

	// ActiveContacts returns every contact in "active" status.
	ActiveContacts(ctx context.Context) ([]types.ContactContext, error)

	// AddInteraction appends an interaction and advances the contact's
	// last-interaction timestamp.
	AddInteraction(ctx context.Context, in *types.Interaction) error

	// RecentInteractions returns up to limit interactions for a contact,
	// newest first.
	RecentInteractions(ctx context.Context, contactID string, limit int) ([]types.Interaction, error)

	// AddTask appends a task in "pending" or "completed" status.
	AddTask(ctx context.Context, t *Task) error

	// UpdateScore overwrites the contact's score, signal breakdown and
	// hot-lead flag. Last writer wins; there is no score history.
	UpdateScore(ctx context.Context, id string, score int, sigs map[string]int, isHot bool) error
}

// Task is a follow-up item attached to a contact. Only its counts feed the
// engine; task management itself belongs to the CRM surfaces.
type Task struct {
	ID        string `json:"id"`
	ContactID string `json:"contact_id"`
	Title     string `json:"title"`
	Status    string `json:"status"` // "pending", "completed"
}
