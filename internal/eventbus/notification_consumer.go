package eventbus

import (
	"context"
	"log"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/notify"
	"github.com/viajaplan/leadengine/internal/types"
)

// NotificationConsumer renders a notification summary for every domain
// event and hands it to a sink. The default sink logs, which is where a
// push/email pipeline would plug in.
type NotificationConsumer struct {
	summarizer *notify.Summarizer
	sink       func(evt event.DomainEvent, n types.NotificationSummary)
}

// NewNotificationConsumer creates a consumer over the given summarizer.
func NewNotificationConsumer(s *notify.Summarizer) *NotificationConsumer {
	return &NotificationConsumer{summarizer: s}
}

// SetSink overrides the logging sink, e.g. with a push or email dispatcher.
func (c *NotificationConsumer) SetSink(sink func(evt event.DomainEvent, n types.NotificationSummary)) {
	c.sink = sink
}

func (c *NotificationConsumer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	summary, err := c.summarizer.Summarize(ctx, evt.EventType, evt.ContactID, evt.Data)
	if err != nil {
		return err
	}
	if c.sink != nil {
		c.sink(evt, summary)
		return nil
	}
	log.Printf("notify: [%s] %s — %s (action: %s)",
		summary.Priority, summary.Title, summary.Body, summary.SuggestedAction)
	return nil
}
