package signals

import (
	"time"

	"github.com/viajaplan/leadengine/internal/types"
)

// Extract evaluates every activation rule against the contact snapshot and
// returns the activated signals mapped to their catalog point values.
//
// Rules are independent and additive except where noted: the two urgency
// buckets are mutually exclusive (imminent takes precedence), and so are the
// two no-response thresholds (only the larger one crossed applies). Missing
// or zero fields simply fail to activate — absence is never an error.
func Extract(c types.ContactContext, now time.Time) map[string]int {
	active := make(map[string]int)
	activate := func(id string) {
		active[id] = Points(id)
	}

	// Profile completeness.
	if c.Phone != "" {
		activate("has_phone")
	}
	if c.Email != "" {
		activate("has_email")
	}
	if c.Whatsapp != "" {
		activate("has_whatsapp")
	}

	// Trip intent.
	if c.Destination != "" {
		activate("has_destination")
	}
	if c.TravelStart != nil {
		activate("has_dates")
	}
	if c.Travelers > 0 {
		activate("has_travelers")
	}
	if c.BudgetMin > 0 || c.BudgetMax > 0 {
		activate("has_budget")
	}

	// Historical standing.
	if c.Type == "client" || c.TotalBookings > 0 {
		activate("existing_client")
	}
	if c.TotalBookings > 1 {
		activate("repeat_buyer")
	}
	if c.LifetimeValue > 20000 {
		activate("high_ltv")
	}

	// Source attribution.
	switch c.Source {
	case "referral":
		activate("from_referral")
	case "web", "organic":
		activate("from_organic")
	case "social", "facebook", "instagram":
		activate("from_social")
	}
	if c.Campaign != "" {
		activate("from_campaign")
	}

	// Travel demographics.
	switch c.TravelType {
	case "family":
		activate("family_travel")
	case "group":
		activate("group_travel")
	case "honeymoon":
		activate("honeymoon_travel")
	case "business":
		activate("business_travel")
	}

	// Urgency: imminent takes precedence over urgent.
	if c.TravelStart != nil {
		daysUntil := c.TravelStart.Sub(now).Hours() / 24
		switch {
		case daysUntil > 0 && daysUntil <= 7:
			activate("imminent_travel")
		case daysUntil > 7 && daysUntil <= 30:
			activate("urgent_travel")
		}
	}

	// Engagement.
	if c.InteractionCount >= 5 {
		activate("multiple_interactions")
	}
	if c.RecentInteractionCount > 0 {
		activate("recent_activity")
	}
	if c.TotalQuotes > 0 {
		activate("requested_quote")
	}

	// Staleness: only the larger crossed threshold applies.
	if hours := c.HoursSinceInteraction(now); hours >= 0 {
		switch {
		case hours > 168:
			activate("no_response_7d")
		case hours > 48:
			activate("no_response_48h")
		}
	}
	if c.DaysInStage(now) > 14 {
		activate("stage_stale_14d")
	}

	return active
}

// Sum returns the raw point total of an activation set. The total may be
// negative when penalty signals dominate.
func Sum(active map[string]int) int {
	total := 0
	for _, pts := range active {
		total += pts
	}
	return total
}

// DecayTotal returns the combined magnitude of activated penalty signals,
// reported as a diagnostic alongside the score.
func DecayTotal(active map[string]int) int {
	decay := 0
	for _, pts := range active {
		if pts < 0 {
			decay -= pts
		}
	}
	return decay
}
