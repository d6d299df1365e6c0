package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viajaplan/leadengine/internal/types"
)

// LLMStrategy generates insights through an OpenAI-compatible
// chat-completions endpoint. Any failure (network, HTTP status, unparsable
// response) is returned as an error so the caller can fall back to rules.
type LLMStrategy struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewLLMStrategy creates an LLMStrategy. Returns nil when no API key is
// configured, which disables the LLM path entirely.
func NewLLMStrategy(apiKey, baseURL, model string, timeout time.Duration) *LLMStrategy {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMStrategy{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:      model,
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate prompts the generation service and parses the first well-formed
// JSON object in the response into an Insight.
func (s *LLMStrategy) Generate(ctx context.Context, c types.ContactContext, interactions []types.Interaction) (types.Insight, error) {
	prompt := fmt.Sprintf(insightPrompt, leadBlock(c), interactionBlock(interactions))

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return types.Insight{}, err
	}

	raw, ok := firstJSONObject(content)
	if !ok {
		return types.Insight{}, fmt.Errorf("no JSON object in response")
	}

	var ins types.Insight
	if err := json.Unmarshal([]byte(raw), &ins); err != nil {
		return types.Insight{}, fmt.Errorf("parse insight: %w", err)
	}
	return ins, nil
}

func (s *LLMStrategy) complete(ctx context.Context, prompt string) (string, error) {
	if s.baseURL == "" {
		return "", fmt.Errorf("missing generation service base url")
	}
	if s.model == "" {
		return "", fmt.Errorf("missing generation service model")
	}

	body := map[string]any{
		"model": s.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  s.maxTokens,
		"temperature": 0.3,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation service http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return content, nil
}

// leadBlock renders the contact profile for the prompt.
func leadBlock(c types.ContactContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Nombre: %s\n- Tipo: %s\n- Etapa: %s\n- Score: %d\n- Fuente: %s\n",
		c.Name, c.Type, c.Stage, c.Score, orDash(c.Source))
	fmt.Fprintf(&b, "- Destino: %s\n- Viajeros: %d\n", orDash(c.Destination), c.Travelers)
	if c.TravelStart != nil {
		fmt.Fprintf(&b, "- Fecha de viaje: %s\n", c.TravelStart.Format("2006-01-02"))
	}
	if c.BudgetMax > 0 || c.BudgetMin > 0 {
		fmt.Fprintf(&b, "- Presupuesto: $%.0f - $%.0f\n", c.BudgetMin, c.BudgetMax)
	}
	fmt.Fprintf(&b, "- Reservas previas: %d, cotizaciones: %d, valor histórico: $%.0f\n",
		c.TotalBookings, c.TotalQuotes, c.LifetimeValue)
	fmt.Fprintf(&b, "- Tareas pendientes: %d", c.PendingTaskCount)
	return b.String()
}

// interactionBlock renders up to 5 recent interactions for the prompt.
func interactionBlock(interactions []types.Interaction) string {
	if len(interactions) == 0 {
		return "(sin interacciones)"
	}
	if len(interactions) > 5 {
		interactions = interactions[:5]
	}
	var b strings.Builder
	for _, in := range interactions {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n",
			in.OccurredAt.Format("2006-01-02"), in.Type, orDash(in.Subject), orDash(in.Outcome))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// firstJSONObject returns the first balanced top-level JSON object found in
// the text. Braces inside string literals are ignored.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
