package insight

// insightPrompt instructs the generation service to return the Insight
// shape as strict JSON. The parser tolerates surrounding prose but the
// prompt asks for JSON only.
const insightPrompt = `Eres un asistente experto de ventas para una agencia de viajes.

Analiza el siguiente lead y genera un análisis accionable para el asesor.

Responde SOLO con un objeto JSON con esta forma exacta:
{
  "summary": "resumen de 1-2 frases del estado del lead",
  "suggested_actions": ["hasta 5 acciones imperativas cortas"],
  "risk_level": "low | medium | high",
  "engagement_score": 0,
  "priority_label": "Baja | Media | Alta | Urgente",
  "next_best_action": "la siguiente acción más importante",
  "talking_points": ["hasta 5 puntos de conversación"]
}

Información del lead:
%s

Interacciones recientes (más nuevas primero):
%s`
