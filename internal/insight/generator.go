// Package insight produces natural-language lead analyses with a primary
// LLM strategy and a deterministic rule fallback.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// Strategy generates an Insight from a contact snapshot and its recent
// interactions. The two implementations (LLM and rules) are behaviorally
// interchangeable so the fallback is transparent to callers.
type Strategy interface {
	Generate(ctx context.Context, c types.ContactContext, interactions []types.Interaction) (types.Insight, error)
}

// Generator produces insights for one contact, preferring the LLM strategy
// when configured and falling back to rules on any failure.
type Generator struct {
	store store.Store
	llm   Strategy // nil when no generation service is configured
	rules Strategy
}

// NewGenerator creates a Generator. llm may be nil to disable the LLM path.
func NewGenerator(s store.Store, llm Strategy) *Generator {
	return &Generator{store: s, llm: llm, rules: NewRuleStrategy()}
}

// Insights generates the insight for one contact. A missing contact yields
// a degraded empty Insight with no error; generation-service failures are
// recovered locally through the rule strategy and never surfaced.
func (g *Generator) Insights(ctx context.Context, contactID string) (types.Insight, error) {
	contact, err := g.store.Contact(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return types.Insight{
			SuggestedActions: []string{},
			TalkingPoints:    []string{},
		}, nil
	}
	if err != nil {
		return types.Insight{}, err
	}

	interactions, err := g.store.RecentInteractions(ctx, contactID, 5)
	if err != nil {
		return types.Insight{}, fmt.Errorf("load interactions: %w", err)
	}

	if g.llm != nil {
		ins, err := g.llm.Generate(ctx, contact, interactions)
		if err == nil {
			return sanitize(ins), nil
		}
		log.Printf("insight: llm strategy failed for %s, using rules: %v", contactID, err)
	}

	ins, err := g.rules.Generate(ctx, contact, interactions)
	if err != nil {
		return types.Insight{}, err
	}
	return sanitize(ins), nil
}

// sanitize enforces the structural bounds of an Insight regardless of which
// strategy produced it.
func sanitize(ins types.Insight) types.Insight {
	if len(ins.SuggestedActions) > 5 {
		ins.SuggestedActions = ins.SuggestedActions[:5]
	}
	if ins.SuggestedActions == nil {
		ins.SuggestedActions = []string{}
	}
	if len(ins.TalkingPoints) > 5 {
		ins.TalkingPoints = ins.TalkingPoints[:5]
	}
	if ins.TalkingPoints == nil {
		ins.TalkingPoints = []string{}
	}
	if ins.EngagementScore < 0 {
		ins.EngagementScore = 0
	}
	if ins.EngagementScore > 100 {
		ins.EngagementScore = 100
	}
	switch ins.RiskLevel {
	case "low", "medium", "high":
	default:
		ins.RiskLevel = "medium"
	}
	switch ins.PriorityLabel {
	case "Baja", "Media", "Alta", "Urgente":
	default:
		ins.PriorityLabel = "Media"
	}
	if ins.NextBestAction == "" && len(ins.SuggestedActions) > 0 {
		ins.NextBestAction = stripMarker(ins.SuggestedActions[0])
	}
	return ins
}
