package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/notify"
	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

type collector struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (c *collector) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestBusDispatchesToAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := New(16)
	a, b := &collector{}, &collector{}
	bus.Subscribe("a", a)
	bus.Subscribe("b", b)
	bus.Start(ctx)

	bus.Publish(ctx, event.NewLeadQualified("c1", 85))
	bus.Publish(ctx, event.NewBookingCreated("c2", "Cancún"))

	waitFor(t, func() bool { return a.count() == 2 && b.count() == 2 })

	cancel()
	bus.Stop()
}

func TestBusDrainsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	bus := New(16)
	c := &collector{}
	bus.Subscribe("c", c)

	// Published before the consumer starts; buffered events must still be
	// delivered during the drain.
	for i := 0; i < 5; i++ {
		bus.Publish(ctx, event.NewLeadQualified("c1", 70+i))
	}

	bus.Start(ctx)
	cancel()
	bus.Stop()

	if got := c.count(); got != 5 {
		t.Fatalf("delivered = %d, want 5", got)
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	bus := New(1)

	// No consumer running, buffer of one: the second publish must not block.
	done := make(chan struct{})
	go func() {
		bus.Publish(ctx, event.NewLeadQualified("c1", 80))
		bus.Publish(ctx, event.NewLeadQualified("c2", 80))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full buffer")
	}
}

func TestNotificationConsumer(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	contact := types.ContactContext{Name: "Ana Torres", Destination: "Cancún", Score: 85, IsHot: true}
	if err := st.CreateContact(ctx, &contact); err != nil {
		t.Fatal(err)
	}

	var (
		mu   sync.Mutex
		seen []types.NotificationSummary
	)
	consumer := NewNotificationConsumer(notify.NewSummarizer(st))
	consumer.SetSink(func(_ event.DomainEvent, n types.NotificationSummary) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})

	if err := consumer.HandleEvent(ctx, event.NewLeadQualified(contact.ID, 85)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(seen))
	}
	if seen[0].Priority != notify.PriorityUrgent {
		t.Errorf("priority = %q, want urgent", seen[0].Priority)
	}
}
