package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// flakyStore fails score writes for one contact, leaving the rest intact.
type flakyStore struct {
	store.Store
	failID string
}

func (s *flakyStore) UpdateScore(ctx context.Context, id string, score int, sigs map[string]int, isHot bool) error {
	if id == s.failID {
		return errors.New("disk full")
	}
	return s.Store.UpdateScore(ctx, id, score, sigs, isHot)
}

func seedContacts(t *testing.T, st store.Store, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := types.ContactContext{
			Name:           fmt.Sprintf("Contacto %d", i),
			Destination:    "Cancún",
			BudgetMax:      20000,
			StageEnteredAt: fixedNow(),
		}
		if i%2 == 0 {
			c.Source = "referral"
			c.TravelStart = timePtr(fixedNow().AddDate(0, 0, 5))
		}
		if err := st.CreateContact(context.Background(), &c); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, c.ID)
	}
	return ids
}

func TestRecalculateAll(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedContacts(t, st, 8)

	engine := newTestEngine(st)
	recalc := NewRecalculator(st, engine)

	result, err := recalc.RecalculateAll(ctx)
	if err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	if result.Updated != 8 {
		t.Errorf("updated = %d, want 8", result.Updated)
	}
	if result.Failed != 0 {
		t.Errorf("failed = %d, want 0", result.Failed)
	}
	// Even-indexed contacts carry referral + imminent trip and score hot.
	if result.HotLeads != 4 {
		t.Errorf("hot leads = %d, want 4", result.HotLeads)
	}

	// Scores landed on the records.
	all, err := st.ListContacts(ctx, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range all {
		if c.Score == 0 {
			t.Errorf("contact %s still unscored", c.ID)
		}
	}
}

func TestRecalculateAll_FaultIsolation(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	ids := seedContacts(t, mem, 5)

	st := &flakyStore{Store: mem, failID: ids[2]}
	engine := newTestEngine(st)
	recalc := NewRecalculator(st, engine)

	result, err := recalc.RecalculateAll(ctx)
	if err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Updated != 4 {
		t.Errorf("updated = %d, want 4", result.Updated)
	}

	// The failing contact kept its previous score, the rest were written.
	bad, err := mem.Contact(ctx, ids[2])
	if err != nil {
		t.Fatal(err)
	}
	if bad.Score != 0 {
		t.Errorf("failed contact score = %d, want untouched 0", bad.Score)
	}
}

func TestRecalculateAll_Empty(t *testing.T) {
	st := store.NewMemoryStore()
	recalc := NewRecalculator(st, newTestEngine(st))
	result, err := recalc.RecalculateAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Updated != 0 || result.Failed != 0 || result.HotLeads != 0 {
		t.Errorf("result = %+v, want zeroes", result)
	}
}
