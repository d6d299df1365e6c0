package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viajaplan/leadengine/internal/types"
)

func completionResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestLLMGenerate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		content := `Aquí tienes el análisis:
{"summary":"Lead prometedor para Cancún","suggested_actions":["Enviar cotización"],"risk_level":"low","engagement_score":60,"priority_label":"Alta","next_best_action":"Enviar cotización","talking_points":["Destino Cancún"]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(content)))
	}))
	defer srv.Close()

	s := NewLLMStrategy("test-key", srv.URL, "gpt-4o-mini", 5*time.Second)
	require.NotNil(t, s)

	ins, err := s.Generate(context.Background(), types.ContactContext{Name: "Ana Torres", Destination: "Cancún"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, "Lead prometedor para Cancún", ins.Summary)
	assert.Equal(t, "low", ins.RiskLevel)
	assert.Equal(t, 60, ins.EngagementScore)
	assert.Equal(t, []string{"Enviar cotización"}, ins.SuggestedActions)
}

func TestLLMGenerate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewLLMStrategy("test-key", srv.URL, "gpt-4o-mini", 5*time.Second)
	_, err := s.Generate(context.Background(), types.ContactContext{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestLLMGenerate_NoJSONInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("Lo siento, no puedo analizar este contacto.")))
	}))
	defer srv.Close()

	s := NewLLMStrategy("test-key", srv.URL, "gpt-4o-mini", 5*time.Second)
	_, err := s.Generate(context.Background(), types.ContactContext{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestNewLLMStrategy_NoKey(t *testing.T) {
	assert.Nil(t, NewLLMStrategy("", "https://api.example.com/v1", "gpt-4o-mini", 0))
	assert.Nil(t, NewLLMStrategy("   ", "https://api.example.com/v1", "gpt-4o-mini", 0))
}

func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"texto antes {\"a\":{\"b\":2}} texto después", `{"a":{"b":2}}`, true},
		{`{"s":"llave } en cadena"}`, `{"s":"llave } en cadena"}`, true},
		{`{"s":"escape \" y }"}`, `{"s":"escape \" y }"}`, true},
		{"sin objeto", "", false},
		{"{incompleto", "", false},
	}
	for _, tc := range cases {
		got, ok := firstJSONObject(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
