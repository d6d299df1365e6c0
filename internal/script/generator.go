// Package script builds scenario-based conversation scripts for sales
// agents from a contact snapshot. Pure templating, no external calls.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/viajaplan/leadengine/internal/store"
	"github.com/viajaplan/leadengine/internal/types"
)

// Supported conversation scenarios. Unknown scenarios default to
// ScenarioFirstContact.
const (
	ScenarioFirstContact = "first_contact"
	ScenarioFollowUp     = "follow_up"
	ScenarioClosingDeal  = "closing_deal"
	ScenarioPostTrip     = "post_trip"
)

// Generator renders talking scripts. A missing contact degrades to a
// generic fallback script, never an error.
type Generator struct {
	store store.Store
}

// NewGenerator creates a Generator over the given store.
func NewGenerator(s store.Store) *Generator {
	return &Generator{store: s}
}

// Script builds the scenario script for one contact. A missing contact
// degrades to the generic fallback script; other storage failures
// propagate as-is.
func (g *Generator) Script(ctx context.Context, contactID, scenario string) (types.TalkingScript, error) {
	contact, err := g.store.Contact(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return genericScript(), nil
	}
	if err != nil {
		return types.TalkingScript{}, err
	}

	switch scenario {
	case ScenarioFollowUp:
		return followUpScript(contact), nil
	case ScenarioClosingDeal:
		return closingScript(contact), nil
	case ScenarioPostTrip:
		return postTripScript(contact), nil
	default:
		return firstContactScript(contact), nil
	}
}

func firstContactScript(c types.ContactContext) types.TalkingScript {
	opening := fmt.Sprintf("Hola %s, soy tu asesor de viajes. Vi que estás interesado en viajar%s y me encantaría ayudarte a armar el plan perfecto.",
		c.FirstName(), destinationPhrase(c))

	points := []string{
		"Preguntar por fechas tentativas y flexibilidad",
		"Confirmar número de viajeros y tipo de viaje",
		"Explorar el presupuesto con el que cuenta",
	}
	if c.Destination != "" {
		points = append([]string{fmt.Sprintf("Confirmar interés en %s y qué lo motiva", c.Destination)}, points...)
	}
	if c.TotalBookings > 0 {
		points = append(points, "Mencionar su historial con nosotros y agradecer su confianza")
	}

	return types.TalkingScript{
		Opening:   opening,
		KeyPoints: limitPoints(points),
		ObjectionHandlers: map[string]string{
			"Solo estoy viendo opciones": "Perfecto, para eso estamos. Te preparo 2 o 3 opciones sin compromiso para que compares con calma.",
			"Está muy caro":              "Tenemos alternativas para distintos presupuestos y planes de pago. ¿Cuál sería un rango cómodo para ti?",
			"Déjame pensarlo":            "Claro. ¿Te parece si te llamo en un par de días? Los lugares y tarifas cambian rápido.",
		},
		Closing: fmt.Sprintf("%s, te envío las opciones hoy mismo. ¿Prefieres WhatsApp o correo?", c.FirstName()),
	}
}

func followUpScript(c types.ContactContext) types.TalkingScript {
	opening := fmt.Sprintf("Hola %s, te escribo para dar seguimiento a tu viaje%s. ¿Has podido revisar lo que te envié?",
		c.FirstName(), destinationPhrase(c))

	points := []string{
		"Resolver dudas sobre las opciones enviadas",
		"Preguntar si algo cambió en fechas o presupuesto",
	}
	if c.TravelStart != nil {
		points = append(points, fmt.Sprintf("Recordar que su fecha tentativa es %s y conviene asegurar tarifas", c.TravelStart.Format("02/01/2006")))
	}
	if c.Travelers > 0 {
		points = append(points, fmt.Sprintf("Confirmar que siguen siendo %d viajeros", c.Travelers))
	}

	return types.TalkingScript{
		Opening:   opening,
		KeyPoints: limitPoints(points),
		ObjectionHandlers: map[string]string{
			"No he tenido tiempo":      "Sin problema. ¿Te resumo las 2 mejores opciones en un minuto por teléfono?",
			"Encontré algo más barato": "Revisémoslo juntos: a veces el precio no incluye traslados, impuestos o asistencia. Nuestra tarifa es final.",
		},
		Closing: "Quedo atento. Si te parece, aparto la tarifa 48 horas sin costo mientras decides.",
	}
}

func closingScript(c types.ContactContext) types.TalkingScript {
	opening := fmt.Sprintf("Hola %s, ya tenemos todo listo para confirmar tu viaje%s. Solo faltan un par de detalles.",
		c.FirstName(), destinationPhrase(c))

	points := []string{
		"Repasar el itinerario final y lo que incluye",
		"Confirmar nombres como aparecen en pasaporte",
		"Explicar formas de pago y plan de apartado",
	}
	if budget := budgetPhrase(c); budget != "" {
		points = append(points, fmt.Sprintf("Confirmar que la opción elegida queda %s", budget))
	}

	return types.TalkingScript{
		Opening:   opening,
		KeyPoints: limitPoints(points),
		ObjectionHandlers: map[string]string{
			"Necesito consultarlo":      "Por supuesto. ¿Aparto los lugares 24 horas para que no pierdan la tarifa mientras lo consultas?",
			"¿Y si algo sale mal?":      "Todos nuestros paquetes incluyen asistencia en viaje y opciones de cambio. Te explico las políticas con detalle.",
			"El pago completo es mucho": "Podemos apartarlo con un anticipo y diferir el resto en pagos antes de la salida.",
		},
		Closing: fmt.Sprintf("¿Confirmamos entonces, %s? Hoy mismo te envío los documentos de la reserva.", c.FirstName()),
	}
}

func postTripScript(c types.ContactContext) types.TalkingScript {
	opening := fmt.Sprintf("¡Hola %s! ¿Qué tal el viaje%s? Nos encantaría saber cómo te fue.",
		c.FirstName(), destinationPhrase(c))

	points := []string{
		"Preguntar qué fue lo mejor del viaje",
		"Pedir una reseña corta para la agencia",
		"Preguntar si conoce a alguien planeando un viaje similar",
	}
	if c.TotalBookings > 1 {
		points = append(points, "Ofrecer beneficio de cliente frecuente para su próximo viaje")
	}

	return types.TalkingScript{
		Opening:   opening,
		KeyPoints: limitPoints(points),
		ObjectionHandlers: map[string]string{
			"No tengo tiempo para la reseña": "Son 2 minutos con el enlace que te envío, y nos ayuda muchísimo.",
			"Por ahora no planeo viajar":     "Entendido. Te guardo en nuestra lista de promociones para cuando se antoje la siguiente escapada.",
		},
		Closing: fmt.Sprintf("Gracias por viajar con nosotros, %s. ¡Aquí estamos para tu próxima aventura!", c.FirstName()),
	}
}

func genericScript() types.TalkingScript {
	return types.TalkingScript{
		Opening: "Hola, soy tu asesor de viajes. ¿Cómo puedo ayudarte hoy?",
		KeyPoints: []string{
			"Preguntar destino, fechas y número de viajeros",
			"Explorar presupuesto y tipo de viaje",
		},
		ObjectionHandlers: map[string]string{
			"Solo estoy viendo opciones": "Con gusto te preparo opciones sin compromiso.",
		},
		Closing: "Quedo a tus órdenes para armar tu viaje.",
	}
}

func destinationPhrase(c types.ContactContext) string {
	if c.Destination == "" {
		return ""
	}
	return " a " + c.Destination
}

func budgetPhrase(c types.ContactContext) string {
	switch {
	case c.BudgetMin > 0 && c.BudgetMax > 0:
		return fmt.Sprintf("entre $%.0f y $%.0f", c.BudgetMin, c.BudgetMax)
	case c.BudgetMax > 0:
		return fmt.Sprintf("dentro de $%.0f", c.BudgetMax)
	case c.BudgetMin > 0:
		return fmt.Sprintf("desde $%.0f", c.BudgetMin)
	default:
		return ""
	}
}

func limitPoints(points []string) []string {
	if len(points) > 5 {
		return points[:5]
	}
	return points
}
