// Package scoring computes the 0-100 lead score from activated signals and
// recalculates it across the active contact population.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/signals"
	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// Recommendation tiers by total score, highest band first.
const (
	RecommendHot       = "hot — contact now"
	RecommendWarm      = "warm — priority follow-up"
	RecommendPromising = "promising — nurture with information"
	RecommendNew       = "new — qualify further"
	RecommendCold      = "cold — evaluate viability"
)

// HotThreshold is the exact score at which a lead is classified hot.
const HotThreshold = 70

// behavioralBonus is granted once the contact reaches 3 interactions.
const behavioralBonus = 5

// Engine scores contacts and persists the result onto the contact record.
type Engine struct {
	store store.Store
	bus   event.Publisher
	now   func() time.Time
}

// NewEngine creates a scoring engine over the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// SetPublisher attaches an event bus. Threshold crossings are published
// after the score write succeeds.
func (e *Engine) SetPublisher(p event.Publisher) {
	e.bus = p
}

// Score loads the contact, extracts its signals, computes the clamped total
// and persists score, signal breakdown and hot flag back onto the record.
// Returns store.ErrNotFound when the contact id does not exist.
func (e *Engine) Score(ctx context.Context, contactID string) (types.ScoringResult, error) {
	contact, err := e.store.Contact(ctx, contactID)
	if err != nil {
		return types.ScoringResult{}, err
	}

	result := e.Evaluate(contact)

	if err := e.store.UpdateScore(ctx, contactID, result.TotalScore, result.Signals, result.IsHot); err != nil {
		return types.ScoringResult{}, fmt.Errorf("persist score: %w", err)
	}

	if e.bus != nil {
		if result.IsHot && !contact.IsHot {
			e.bus.Publish(ctx, event.NewLeadQualified(contactID, result.TotalScore))
		} else if result.IsHot && hasStaleSignal(result.Signals) {
			e.bus.Publish(ctx, event.NewHotLeadStale(contactID, result.TotalScore))
		}
	}
	return result, nil
}

func hasStaleSignal(sigs map[string]int) bool {
	_, a := sigs["no_response_48h"]
	_, b := sigs["no_response_7d"]
	return a || b
}

// Evaluate computes the scoring result for a snapshot without touching the
// store. Clamping runs once over the full additive sum; the penalty signals
// are already negative entries in the same sum, so DecayApplied is reported
// as a diagnostic, not subtracted again.
func (e *Engine) Evaluate(contact types.ContactContext) types.ScoringResult {
	now := e.now()
	active := signals.Extract(contact, now)
	raw := signals.Sum(active)

	bonus := 0
	if contact.InteractionCount >= 3 {
		bonus = behavioralBonus
	}

	total := clamp(raw+bonus, 0, 100)

	return types.ScoringResult{
		ContactID:       contact.ID,
		TotalScore:      total,
		Signals:         active,
		IsHot:           total >= HotThreshold,
		DecayApplied:    signals.DecayTotal(active),
		BehavioralBonus: bonus,
		Recommendation:  Recommendation(total),
	}
}

// Recommendation returns the tier text for a total score. Bands are fixed,
// ordered and non-overlapping.
func Recommendation(score int) string {
	switch {
	case score >= 80:
		return RecommendHot
	case score >= 60:
		return RecommendWarm
	case score >= 40:
		return RecommendPromising
	case score >= 20:
		return RecommendNew
	default:
		return RecommendCold
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
