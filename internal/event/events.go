// Package event defines the CRM domain events emitted by the engine and
// consumed by the notification pipeline.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types understood by the notification summarizer.
const (
	TypeLeadQualified  = "lead_qualified"
	TypePurchaseIntent = "purchase_intent"
	TypeLeadAbandoned  = "lead_abandoned"
	TypeStageChanged   = "stage_changed"
	TypeTaskOverdue    = "task_overdue"
	TypeHotLeadStale   = "hot_lead_stale"
	TypeBookingCreated = "booking_created"
	TypeNewReferral    = "new_referral"
)

// DomainEvent carries the canonical shape of every CRM event.
type DomainEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	ContactID  string         `json:"contact_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Summary    string         `json:"summary"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

func newEvent(eventType, contactID, summary string, data map[string]any) DomainEvent {
	return DomainEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		ContactID:  contactID,
		OccurredAt: time.Now(),
		Summary:    summary,
		Data:       data,
	}
}

// NewLeadQualified marks a contact crossing the hot-lead threshold.
func NewLeadQualified(contactID string, score int) DomainEvent {
	return newEvent(TypeLeadQualified, contactID,
		fmt.Sprintf("Lead qualified with score %d", score),
		map[string]any{"score": score})
}

// NewHotLeadStale marks a hot lead that has gone quiet.
func NewHotLeadStale(contactID string, score int) DomainEvent {
	return newEvent(TypeHotLeadStale, contactID,
		fmt.Sprintf("Hot lead (score %d) without recent contact", score),
		map[string]any{"score": score})
}

// NewBookingCreated marks a confirmed booking interaction.
func NewBookingCreated(contactID, destination string) DomainEvent {
	return newEvent(TypeBookingCreated, contactID,
		"Booking confirmed",
		map[string]any{"destination": destination})
}

// NewReferralReceived marks a contact arriving through a referral.
func NewReferralReceived(contactID, source string) DomainEvent {
	return newEvent(TypeNewReferral, contactID,
		"New referral lead",
		map[string]any{"source": source})
}

// NewStageChanged marks a pipeline stage transition.
func NewStageChanged(contactID, from, to string) DomainEvent {
	return newEvent(TypeStageChanged, contactID,
		fmt.Sprintf("Stage changed %s → %s", from, to),
		map[string]any{"from": from, "to": to})
}
