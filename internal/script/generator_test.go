package script

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

func seedContact(t *testing.T, st store.Store, c types.ContactContext) string {
	t.Helper()
	if err := st.CreateContact(context.Background(), &c); err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func TestScript_FirstContact(t *testing.T) {
	st := store.NewMemoryStore()
	id := seedContact(t, st, types.ContactContext{
		Name:        "Diego Fuentes Ríos",
		Destination: "Cancún",
	})

	s, err := NewGenerator(st).Script(context.Background(), id, ScenarioFirstContact)
	if err != nil {
		t.Fatalf("Script: %v", err)
	}

	if !strings.Contains(s.Opening, "Diego") {
		t.Errorf("opening %q missing first name", s.Opening)
	}
	if strings.Contains(s.Opening, "Fuentes") {
		t.Errorf("opening %q should use first name only", s.Opening)
	}
	if !strings.Contains(s.Opening, "a Cancún") {
		t.Errorf("opening %q missing destination", s.Opening)
	}
	if len(s.KeyPoints) == 0 || len(s.KeyPoints) > 5 {
		t.Errorf("key points = %d, want 1..5", len(s.KeyPoints))
	}
	if !strings.Contains(s.KeyPoints[0], "Cancún") {
		t.Errorf("first key point %q should confirm the destination", s.KeyPoints[0])
	}
	if len(s.ObjectionHandlers) == 0 {
		t.Error("missing objection handlers")
	}
	if s.Closing == "" {
		t.Error("missing closing")
	}
}

func TestScript_UnknownScenarioDefaultsToFirstContact(t *testing.T) {
	st := store.NewMemoryStore()
	id := seedContact(t, st, types.ContactContext{Name: "Elena Soto", Destination: "Madrid"})

	g := NewGenerator(st)
	unknown, err := g.Script(context.Background(), id, "cold_call_v2")
	if err != nil {
		t.Fatal(err)
	}
	first, err := g.Script(context.Background(), id, ScenarioFirstContact)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(unknown, first) {
		t.Errorf("unknown scenario differs from first_contact:\n%+v\nvs\n%+v", unknown, first)
	}
}

func TestScript_FollowUpMentionsTravelDate(t *testing.T) {
	st := store.NewMemoryStore()
	start := time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC)
	id := seedContact(t, st, types.ContactContext{
		Name:        "Raúl Ortega",
		Destination: "Tokio",
		TravelStart: &start,
		Travelers:   3,
	})

	s, err := NewGenerator(st).Script(context.Background(), id, ScenarioFollowUp)
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(s.KeyPoints, "\n")
	if !strings.Contains(joined, "12/09/2025") {
		t.Errorf("key points missing travel date: %q", joined)
	}
	if !strings.Contains(joined, "3 viajeros") {
		t.Errorf("key points missing traveler count: %q", joined)
	}
}

func TestScript_ClosingMentionsBudget(t *testing.T) {
	st := store.NewMemoryStore()
	id := seedContact(t, st, types.ContactContext{
		Name:      "Paola Díaz",
		BudgetMin: 20000,
		BudgetMax: 50000,
	})

	s, err := NewGenerator(st).Script(context.Background(), id, ScenarioClosingDeal)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(s.KeyPoints, "\n")
	if !strings.Contains(joined, "entre $20000 y $50000") {
		t.Errorf("key points missing budget range: %q", joined)
	}
}

func TestScript_PostTripRepeatClient(t *testing.T) {
	st := store.NewMemoryStore()
	id := seedContact(t, st, types.ContactContext{
		Name:          "Inés Vargas",
		TotalBookings: 3,
	})

	s, err := NewGenerator(st).Script(context.Background(), id, ScenarioPostTrip)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(s.KeyPoints, "\n")
	if !strings.Contains(joined, "cliente frecuente") {
		t.Errorf("key points missing frequent-client benefit: %q", joined)
	}
}

func TestScript_MissingContactDegrades(t *testing.T) {
	s, err := NewGenerator(store.NewMemoryStore()).Script(context.Background(),
		"00000000-1111-2222-3333-444444444444", ScenarioFollowUp)
	if err != nil {
		t.Fatalf("expected generic script, got error %v", err)
	}
	if s.Opening == "" || len(s.KeyPoints) == 0 || s.Closing == "" {
		t.Errorf("generic script incomplete: %+v", s)
	}
	if strings.Contains(s.Opening, "%!s") || strings.Contains(s.Opening, "  ") {
		t.Errorf("generic opening badly formatted: %q", s.Opening)
	}
}
