package insight

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/viajaplan/leadengine/internal/types"
)

// neverContactedDays is the sentinel used when no interaction was ever
// recorded for the contact.
const neverContactedDays = 9999

// Engagement factor weights. Factors are independent and additive except
// the recency bucket, where only the tightest match applies.
const (
	weightHasInteraction = 20
	weightOver3          = 15
	weightOver10         = 10
	weightRecency1d      = 25
	weightRecency3d      = 15
	weightRecency7d      = 5
	weightHasQuote       = 15
	weightHasBooking     = 20
)

// RuleStrategy is the deterministic insight generator. It is always
// available and serves as the fallback for the LLM strategy, so its output
// must be a complete substitute.
type RuleStrategy struct {
	now func() time.Time
}

// NewRuleStrategy creates a RuleStrategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{now: time.Now}
}

// Generate builds an Insight from the snapshot alone. It cannot fail.
func (r *RuleStrategy) Generate(_ context.Context, c types.ContactContext, _ []types.Interaction) (types.Insight, error) {
	now := r.now()

	daysSince := neverContactedDays
	if c.LastInteractionAt != nil {
		daysSince = int(now.Sub(*c.LastInteractionAt).Hours() / 24)
	}
	daysInStage := c.DaysInStage(now)
	stale := daysSince > 3

	actions := suggestedActions(c, daysSince, daysInStage, stale)

	return types.Insight{
		Summary:          summaryLine(c, daysSince),
		SuggestedActions: actions,
		RiskLevel:        riskLevel(daysSince, daysInStage),
		EngagementScore:  engagementScore(c, daysSince),
		PriorityLabel:    priorityLabel(c),
		NextBestAction:   stripMarker(actions[0]),
		TalkingPoints:    talkingPoints(c),
	}, nil
}

func riskLevel(daysSince, daysInStage int) string {
	switch {
	case daysSince > 7 || daysInStage > 14:
		return "high"
	case daysSince > 3 || daysInStage > 7:
		return "medium"
	default:
		return "low"
	}
}

func engagementScore(c types.ContactContext, daysSince int) int {
	score := 0
	if c.InteractionCount > 0 {
		score += weightHasInteraction
	}
	if c.InteractionCount > 3 {
		score += weightOver3
	}
	if c.InteractionCount > 10 {
		score += weightOver10
	}
	switch {
	case daysSince <= 1:
		score += weightRecency1d
	case daysSince <= 3:
		score += weightRecency3d
	case daysSince <= 7:
		score += weightRecency7d
	}
	if c.TotalQuotes > 0 {
		score += weightHasQuote
	}
	if c.TotalBookings > 0 {
		score += weightHasBooking
	}
	if score > 100 {
		score = 100
	}
	return score
}

func priorityLabel(c types.ContactContext) string {
	switch {
	case c.IsHot || c.Score >= 70:
		return "Urgente"
	case c.Score >= 50:
		return "Alta"
	case c.Score >= 30:
		return "Media"
	default:
		return "Baja"
	}
}

func summaryLine(c types.ContactContext, daysSince int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Contacto tipo %s en etapa %s con score %d.", c.Type, c.Stage, c.Score)
	if c.Destination != "" {
		fmt.Fprintf(&b, " Interesado en %s.", c.Destination)
	}
	if c.TotalBookings > 0 {
		fmt.Fprintf(&b, " %d reservas previas por $%.0f.", c.TotalBookings, c.LifetimeValue)
	}
	if daysSince == neverContactedDays {
		b.WriteString(" Sin interacciones registradas.")
	} else {
		fmt.Fprintf(&b, " Último contacto hace %d días.", daysSince)
	}
	if c.PendingTaskCount > 0 {
		fmt.Fprintf(&b, " %d tareas pendientes.", c.PendingTaskCount)
	}
	return b.String()
}

// suggestedActions builds the ordered action list, at most 5 entries.
// Always returns at least one action.
func suggestedActions(c types.ContactContext, daysSince, daysInStage int, stale bool) []string {
	var actions []string
	add := func(a string) {
		if len(actions) < 5 {
			actions = append(actions, a)
		}
	}

	hot := c.IsHot || c.Score >= 70
	if hot && stale {
		add("🔥 Contactar de inmediato: lead caliente sin atención reciente")
	}
	if c.PendingTaskCount > 0 {
		add(fmt.Sprintf("✅ Completar %d tareas pendientes", c.PendingTaskCount))
	}
	switch c.Stage {
	case "new":
		add("📋 Calificar: confirmar destino, fechas y presupuesto")
	case "qualified":
		if c.TotalQuotes == 0 {
			add("📄 Enviar cotización personalizada")
		}
	case "quoted":
		if stale {
			add("📞 Dar seguimiento a la cotización enviada")
		}
	case "negotiation":
		add("🤝 Cerrar: ofrecer valor agregado para confirmar")
	}
	if stale && c.Stage != "won" && c.Stage != "booked" {
		add("💬 Reactivar con una oferta especial")
	}
	if (c.Stage == "won" || c.Stage == "booked") && tripEnded(c) {
		add("⭐ Pedir reseña y referidos post-viaje")
	}

	if len(actions) == 0 {
		actions = append(actions, "Revisar el estado del contacto y planear siguiente paso")
	}
	return actions
}

func talkingPoints(c types.ContactContext) []string {
	var points []string
	add := func(p string) {
		if len(points) < 5 {
			points = append(points, p)
		}
	}

	if c.Destination != "" {
		add(fmt.Sprintf("Su destino de interés es %s", c.Destination))
	}
	if c.Travelers > 0 {
		add(fmt.Sprintf("Viajan %d personas", c.Travelers))
	}
	if c.BudgetMax > 0 {
		add(fmt.Sprintf("Presupuesto hasta $%.0f", c.BudgetMax))
	} else if c.BudgetMin > 0 {
		add(fmt.Sprintf("Presupuesto desde $%.0f", c.BudgetMin))
	}
	if c.TravelStart != nil {
		add(fmt.Sprintf("Fecha tentativa de viaje: %s", c.TravelStart.Format("02/01/2006")))
	}
	if c.TotalBookings > 1 {
		add("Cliente recurrente: reconocer su lealtad")
	}
	if c.Source == "referral" {
		add("Llegó por referido: atención prioritaria")
	}
	return points
}

func tripEnded(c types.ContactContext) bool {
	return c.TravelEnd != nil && c.TravelEnd.Before(time.Now())
}

// stripMarker removes a leading emoji or other non-letter marker from an
// action string so next_best_action reads as plain text.
func stripMarker(action string) string {
	return strings.TrimLeftFunc(action, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
