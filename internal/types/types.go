// Package types provides the shared value types of the lead intelligence
// engine: the contact snapshot read from the record store and the result
// shapes returned to callers.
package types

import (
	"strings"
	"time"
)

// ContactContext is the read-only snapshot of one contact assembled per
// engine call. The engine never mutates it except to write back the
// score-related fields through the store.
type ContactContext struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Whatsapp string   `json:"whatsapp,omitempty"`
	Type     string   `json:"type"`   // "lead", "client"
	Source   string   `json:"source"` // "referral", "web", "organic", "social", ...
	Campaign string   `json:"campaign,omitempty"`
	Stage    string   `json:"stage"` // "new", "qualified", "quoted", "negotiation", "won", "booked"
	Status   string   `json:"status"`
	Tags     []string `json:"tags,omitempty"`

	// Trip intent.
	Destination string     `json:"destination,omitempty"`
	TravelStart *time.Time `json:"travel_start,omitempty"`
	TravelEnd   *time.Time `json:"travel_end,omitempty"`
	Travelers   int        `json:"travelers,omitempty"`
	BudgetMin   float64    `json:"budget_min,omitempty"`
	BudgetMax   float64    `json:"budget_max,omitempty"`
	TravelType  string     `json:"travel_type,omitempty"` // "family", "group", "honeymoon", "business"

	// Historical aggregates.
	TotalBookings int     `json:"total_bookings"`
	TotalQuotes   int     `json:"total_quotes"`
	LifetimeValue float64 `json:"lifetime_value"`

	// Timestamps.
	CreatedAt         time.Time  `json:"created_at"`
	StageEnteredAt    time.Time  `json:"stage_entered_at"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`

	// Derived aggregates supplied by the store on read.
	InteractionCount       int `json:"interaction_count"`
	RecentInteractionCount int `json:"recent_interaction_count"` // within 24h
	CompletedTaskCount     int `json:"completed_task_count"`
	PendingTaskCount       int `json:"pending_task_count"`

	// Persisted scoring output from the previous run.
	Score   int            `json:"score"`
	Signals map[string]int `json:"signals,omitempty"`
	IsHot   bool           `json:"is_hot"`
}

// FirstName returns the leading word of the contact name, for script and
// notification interpolation.
func (c ContactContext) FirstName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return name
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// DaysInStage returns whole days elapsed since the contact entered its
// current pipeline stage.
func (c ContactContext) DaysInStage(now time.Time) int {
	if c.StageEnteredAt.IsZero() || c.StageEnteredAt.After(now) {
		return 0
	}
	return int(now.Sub(c.StageEnteredAt).Hours() / 24)
}

// HoursSinceInteraction returns hours since the last recorded interaction,
// or -1 when the contact has never been contacted.
func (c ContactContext) HoursSinceInteraction(now time.Time) float64 {
	if c.LastInteractionAt == nil {
		return -1
	}
	return now.Sub(*c.LastInteractionAt).Hours()
}

// Interaction is one touchpoint with a contact, as stored by the record
// store and surfaced to the insight prompt.
type Interaction struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contact_id"`
	Type       string    `json:"type"` // "call", "email", "whatsapp", "meeting", "quote"
	Subject    string    `json:"subject,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScoringResult is the output of one scoring run. TotalScore, Signals and
// IsHot are also persisted back onto the contact record; the rest is
// diagnostic.
type ScoringResult struct {
	ContactID       string         `json:"contact_id"`
	TotalScore      int            `json:"total_score"` // clamped to [0,100]
	Signals         map[string]int `json:"signals"`
	IsHot           bool           `json:"is_hot"` // total_score >= 70
	DecayApplied    int            `json:"decay_applied"`
	BehavioralBonus int            `json:"behavioral_bonus"`
	Recommendation  string         `json:"recommendation"`
}

// Insight is the generated status summary plus structured metadata for one
// contact. Computed on demand, never persisted by the engine.
type Insight struct {
	Summary          string   `json:"summary"`
	SuggestedActions []string `json:"suggested_actions"` // at most 5
	RiskLevel        string   `json:"risk_level"`        // "low", "medium", "high"
	EngagementScore  int      `json:"engagement_score"`  // [0,100], independent of lead score
	PriorityLabel    string   `json:"priority_label"`    // "Baja", "Media", "Alta", "Urgente"
	NextBestAction   string   `json:"next_best_action"`
	TalkingPoints    []string `json:"talking_points"` // at most 5
}

// NotificationSummary is templated notification text for one CRM event.
type NotificationSummary struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	SuggestedAction string `json:"suggested_action"`
	Priority        string `json:"priority"` // "low", "medium", "high", "urgent"
}

// TalkingScript is a scenario-based conversation script for a sales agent.
type TalkingScript struct {
	Opening           string            `json:"opening"`
	KeyPoints         []string          `json:"key_points"`
	ObjectionHandlers map[string]string `json:"objection_handlers"`
	Closing           string            `json:"closing"`
}
