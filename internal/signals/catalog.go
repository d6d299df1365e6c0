// Package signals provides the signal catalog and the extractor that maps a
// contact snapshot to its activated signals for lead scoring.
package signals

// Category names for signal groupings. These match the labels the CRM
// surfaces show, hence the Spanish values.
const (
	CategoryPerfil     = "perfil"
	CategoryIntencion  = "intención"
	CategoryHistorial  = "historial"
	CategoryFuente     = "fuente"
	CategoryDemografia = "demografía"
	CategoryUrgencia   = "urgencia"
	CategoryEngagement = "engagement"
	CategoryRiesgo     = "riesgo"
)

// Definition is one immutable catalog entry. Points may be negative for
// penalty signals.
type Definition struct {
	ID       string
	Points   int
	Label    string
	Category string
}

// catalogByID is the lookup map built at Init time.
var catalogByID map[string]Definition

// Catalog contains every signal the extractor can activate.
var Catalog = []Definition{
	// === Perfil ===
	{ID: "has_phone", Points: 5, Label: "Teléfono registrado", Category: CategoryPerfil},
	{ID: "has_email", Points: 5, Label: "Email registrado", Category: CategoryPerfil},
	{ID: "has_whatsapp", Points: 5, Label: "WhatsApp registrado", Category: CategoryPerfil},

	// === Intención de viaje ===
	{ID: "has_destination", Points: 20, Label: "Destino definido", Category: CategoryIntencion},
	{ID: "has_dates", Points: 10, Label: "Fechas de viaje definidas", Category: CategoryIntencion},
	{ID: "has_travelers", Points: 5, Label: "Número de viajeros definido", Category: CategoryIntencion},
	{ID: "has_budget", Points: 15, Label: "Presupuesto definido", Category: CategoryIntencion},

	// === Historial ===
	{ID: "existing_client", Points: 15, Label: "Cliente existente", Category: CategoryHistorial},
	{ID: "repeat_buyer", Points: 10, Label: "Comprador recurrente", Category: CategoryHistorial},
	{ID: "high_ltv", Points: 15, Label: "Alto valor histórico", Category: CategoryHistorial},

	// === Fuente ===
	{ID: "from_referral", Points: 20, Label: "Llegó por referido", Category: CategoryFuente},
	{ID: "from_campaign", Points: 10, Label: "Llegó por campaña", Category: CategoryFuente},
	{ID: "from_organic", Points: 5, Label: "Llegó por búsqueda orgánica", Category: CategoryFuente},
	{ID: "from_social", Points: 5, Label: "Llegó por redes sociales", Category: CategoryFuente},

	// === Demografía de viaje ===
	{ID: "family_travel", Points: 10, Label: "Viaje familiar", Category: CategoryDemografia},
	{ID: "group_travel", Points: 10, Label: "Viaje en grupo", Category: CategoryDemografia},
	{ID: "honeymoon_travel", Points: 15, Label: "Luna de miel", Category: CategoryDemografia},
	{ID: "business_travel", Points: 10, Label: "Viaje de negocios", Category: CategoryDemografia},

	// === Urgencia ===
	{ID: "imminent_travel", Points: 30, Label: "Viaje en menos de 7 días", Category: CategoryUrgencia},
	{ID: "urgent_travel", Points: 20, Label: "Viaje en menos de 30 días", Category: CategoryUrgencia},

	// === Engagement ===
	{ID: "multiple_interactions", Points: 15, Label: "5+ interacciones", Category: CategoryEngagement},
	{ID: "recent_activity", Points: 10, Label: "Actividad en las últimas 24h", Category: CategoryEngagement},
	{ID: "requested_quote", Points: 15, Label: "Cotización solicitada", Category: CategoryEngagement},

	// === Riesgo ===
	{ID: "no_response_48h", Points: -10, Label: "Sin respuesta en 48h", Category: CategoryRiesgo},
	{ID: "no_response_7d", Points: -15, Label: "Sin respuesta en 7 días", Category: CategoryRiesgo},
	{ID: "stage_stale_14d", Points: -10, Label: "Más de 14 días en la misma etapa", Category: CategoryRiesgo},
}

// Init builds lookup maps. Call once at startup.
func Init() {
	catalogByID = make(map[string]Definition, len(Catalog))
	for _, def := range Catalog {
		catalogByID[def.ID] = def
	}
}

// Lookup returns the catalog entry for the given signal id.
func Lookup(id string) (Definition, bool) {
	if catalogByID == nil {
		Init()
	}
	def, ok := catalogByID[id]
	return def, ok
}

// Points returns the point value for a signal id, or 0 for unknown ids.
func Points(id string) int {
	def, _ := Lookup(id)
	return def.Points
}
