package insight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viajaplan/leadengine/internal/types"
)

var ruleNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRules() *RuleStrategy {
	r := NewRuleStrategy()
	r.now = func() time.Time { return ruleNow }
	return r
}

func lastContact(daysAgo int) *time.Time {
	t := ruleNow.AddDate(0, 0, -daysAgo)
	return &t
}

func TestRiskLevel(t *testing.T) {
	cases := []struct {
		daysSince, daysInStage int
		want                   string
	}{
		{0, 0, "low"},
		{3, 7, "low"},
		{4, 0, "medium"},
		{0, 8, "medium"},
		{8, 0, "high"},
		{0, 15, "high"},
		{neverContactedDays, 0, "high"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, riskLevel(tc.daysSince, tc.daysInStage),
			"daysSince=%d daysInStage=%d", tc.daysSince, tc.daysInStage)
	}
}

func TestEngagementScore(t *testing.T) {
	// Recency buckets are mutually exclusive; the tightest one applies.
	assert.Equal(t, 45, engagementScore(types.ContactContext{InteractionCount: 1}, 0))
	assert.Equal(t, 35, engagementScore(types.ContactContext{InteractionCount: 1}, 2))
	assert.Equal(t, 25, engagementScore(types.ContactContext{InteractionCount: 1}, 5))
	assert.Equal(t, 20, engagementScore(types.ContactContext{InteractionCount: 1}, 10))

	// Interaction volume tiers stack.
	assert.Equal(t, 35, engagementScore(types.ContactContext{InteractionCount: 4}, 10))
	assert.Equal(t, 45, engagementScore(types.ContactContext{InteractionCount: 11}, 10))

	// Quote and booking add on top; everything active stays capped at 100.
	full := types.ContactContext{InteractionCount: 11, TotalQuotes: 2, TotalBookings: 1}
	assert.Equal(t, 100, engagementScore(full, 0))

	assert.Equal(t, 0, engagementScore(types.ContactContext{}, neverContactedDays))
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "Urgente", priorityLabel(types.ContactContext{IsHot: true}))
	assert.Equal(t, "Urgente", priorityLabel(types.ContactContext{Score: 70}))
	assert.Equal(t, "Alta", priorityLabel(types.ContactContext{Score: 50}))
	assert.Equal(t, "Media", priorityLabel(types.ContactContext{Score: 30}))
	assert.Equal(t, "Baja", priorityLabel(types.ContactContext{Score: 29}))
}

func TestGenerate_StaleHotLead(t *testing.T) {
	c := types.ContactContext{
		Name:              "Carlos Mena",
		Type:              "lead",
		Stage:             "quoted",
		Score:             75,
		IsHot:             true,
		Destination:       "Tokio",
		Travelers:         2,
		BudgetMax:         80000,
		TotalQuotes:       1,
		LastInteractionAt: lastContact(5),
		StageEnteredAt:    ruleNow.AddDate(0, 0, -10),
	}

	ins, err := newTestRules().Generate(context.Background(), c, nil)
	require.NoError(t, err)

	assert.Equal(t, "medium", ins.RiskLevel)
	assert.Equal(t, "Urgente", ins.PriorityLabel)
	require.NotEmpty(t, ins.SuggestedActions)
	assert.Contains(t, ins.SuggestedActions[0], "Contactar de inmediato")
	assert.Equal(t, "Contactar de inmediato: lead caliente sin atención reciente", ins.NextBestAction)
	assert.Contains(t, ins.Summary, "Tokio")
	assert.Contains(t, ins.Summary, "hace 5 días")
	assert.LessOrEqual(t, len(ins.SuggestedActions), 5)
	assert.LessOrEqual(t, len(ins.TalkingPoints), 5)
}

func TestGenerate_NeverContacted(t *testing.T) {
	c := types.ContactContext{
		Name:           "Lucía Paredes",
		Type:           "lead",
		Stage:          "new",
		StageEnteredAt: ruleNow,
	}

	ins, err := newTestRules().Generate(context.Background(), c, nil)
	require.NoError(t, err)

	assert.Equal(t, "high", ins.RiskLevel)
	assert.Equal(t, "Baja", ins.PriorityLabel)
	assert.Equal(t, 0, ins.EngagementScore)
	assert.Contains(t, ins.Summary, "Sin interacciones registradas")
	assert.Contains(t, ins.SuggestedActions[0], "Calificar")
}

func TestGenerate_AlwaysHasAction(t *testing.T) {
	// A contact matching no action rule still gets the generic one.
	c := types.ContactContext{
		Type:              "client",
		Stage:             "won",
		LastInteractionAt: lastContact(1),
		StageEnteredAt:    ruleNow,
	}
	ins, err := newTestRules().Generate(context.Background(), c, nil)
	require.NoError(t, err)
	require.Len(t, ins.SuggestedActions, 1)
	assert.Equal(t, "Revisar el estado del contacto y planear siguiente paso", ins.SuggestedActions[0])
	assert.NotEmpty(t, ins.NextBestAction)
}

func TestTalkingPoints(t *testing.T) {
	start := ruleNow.AddDate(0, 0, 20)
	c := types.ContactContext{
		Destination:   "Cancún",
		Travelers:     4,
		BudgetMax:     50000,
		TravelStart:   &start,
		TotalBookings: 3,
		Source:        "referral",
	}
	points := talkingPoints(c)
	require.Len(t, points, 5)
	assert.Contains(t, points[0], "Cancún")
	assert.Contains(t, points[2], "50000")
	assert.Contains(t, points[4], "recurrente")
}

func TestStripMarker(t *testing.T) {
	assert.Equal(t, "Contactar de inmediato", stripMarker("🔥 Contactar de inmediato"))
	assert.Equal(t, "Completar 2 tareas", stripMarker("✅ Completar 2 tareas"))
	assert.Equal(t, "Sin marcador", stripMarker("Sin marcador"))
}
