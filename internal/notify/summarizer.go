// Package notify maps CRM events to templated notification text for the
// notification pipeline.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// Priority levels carried by notification summaries.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Summarizer renders notification text for a discrete CRM event. A missing
// contact degrades to a generic "contact updated" notification, never an
// error.
type Summarizer struct {
	store store.Store
}

// NewSummarizer creates a Summarizer over the given store.
func NewSummarizer(s store.Store) *Summarizer {
	return &Summarizer{store: s}
}

// Summarize builds the title/body/action/priority tuple for one event.
// Unknown event types fall back to the generic template; a missing contact
// degrades to a "contact updated" notification. Storage failures other than
// not-found propagate as-is.
func (s *Summarizer) Summarize(ctx context.Context, eventType, contactID string, data map[string]any) (types.NotificationSummary, error) {
	contact, err := s.store.Contact(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return types.NotificationSummary{
			Title:           "Contacto actualizado",
			Body:            "Un contacto fue actualizado en el CRM.",
			SuggestedAction: "Revisar el contacto",
			Priority:        PriorityLow,
		}, nil
	}
	if err != nil {
		return types.NotificationSummary{}, err
	}
	return s.render(eventType, contact, data), nil
}

func (s *Summarizer) render(eventType string, contact types.ContactContext, data map[string]any) types.NotificationSummary {
	switch eventType {
	case event.TypeLeadQualified:
		priority := PriorityHigh
		if contact.Score >= 70 {
			priority = PriorityUrgent
		}
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Lead calificado: %s", contact.Name),
			Body:            fmt.Sprintf("%s alcanzó un score de %d en etapa %s.%s", contact.Name, contact.Score, contact.Stage, destinationClause(contact)),
			SuggestedAction: "Contactar hoy mismo para avanzar la venta",
			Priority:        priority,
		}
	case event.TypePurchaseIntent:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Intención de compra: %s", contact.Name),
			Body:            fmt.Sprintf("%s mostró señales claras de compra.%s", contact.Name, destinationClause(contact)),
			SuggestedAction: "Enviar cotización y llamar de inmediato",
			Priority:        PriorityUrgent,
		}
	case event.TypeLeadAbandoned:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Lead inactivo: %s", contact.Name),
			Body:            fmt.Sprintf("%s lleva demasiado tiempo sin interacción en etapa %s (score %d).", contact.Name, contact.Stage, contact.Score),
			SuggestedAction: "Reactivar con una oferta o un mensaje personal",
			Priority:        PriorityMedium,
		}
	case event.TypeStageChanged:
		from, to := stringField(data, "from"), stringField(data, "to")
		body := fmt.Sprintf("%s cambió de etapa.", contact.Name)
		if from != "" && to != "" {
			body = fmt.Sprintf("%s pasó de %s a %s.", contact.Name, from, to)
		}
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Cambio de etapa: %s", contact.Name),
			Body:            body,
			SuggestedAction: "Ajustar el seguimiento a la nueva etapa",
			Priority:        PriorityLow,
		}
	case event.TypeTaskOverdue:
		task := stringField(data, "task")
		if task == "" {
			task = "una tarea pendiente"
		}
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Tarea vencida: %s", contact.Name),
			Body:            fmt.Sprintf("%s tiene %s sin completar.", contact.Name, task),
			SuggestedAction: "Completar la tarea vencida",
			Priority:        PriorityHigh,
		}
	case event.TypeHotLeadStale:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Lead caliente sin atención: %s", contact.Name),
			Body:            fmt.Sprintf("%s tiene score %d y no ha sido contactado recientemente.%s", contact.Name, contact.Score, destinationClause(contact)),
			SuggestedAction: "Llamar ahora — riesgo de perder la venta",
			Priority:        PriorityUrgent,
		}
	case event.TypeBookingCreated:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Reserva confirmada: %s", contact.Name),
			Body:            fmt.Sprintf("%s confirmó una reserva.%s", contact.Name, destinationClause(contact)),
			SuggestedAction: "Enviar confirmación y preparar documentación de viaje",
			Priority:        PriorityHigh,
		}
	case event.TypeNewReferral:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Nuevo referido: %s", contact.Name),
			Body:            fmt.Sprintf("%s llegó recomendado. Los referidos convierten mejor que cualquier otra fuente.", contact.Name),
			SuggestedAction: "Contactar en las primeras 24 horas",
			Priority:        PriorityMedium,
		}
	default:
		return types.NotificationSummary{
			Title:           fmt.Sprintf("Actualización: %s", contact.Name),
			Body:            fmt.Sprintf("%s (etapa %s, score %d) tuvo actividad reciente.", contact.Name, contact.Stage, contact.Score),
			SuggestedAction: "Revisar el contacto",
			Priority:        PriorityLow,
		}
	}
}

func destinationClause(c types.ContactContext) string {
	if c.Destination == "" {
		return ""
	}
	return fmt.Sprintf(" Interesado en %s.", c.Destination)
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	v, _ := data[key].(string)
	return v
}
