// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viajaplan/leadengine/internal/event"
	"github.com/viajaplan/leadengine/internal/handler"
	"github.com/viajaplan/leadengine/internal/insight"
	"github.com/viajaplan/leadengine/internal/notify"
	"github.com/viajaplan/leadengine/internal/scoring"
	"github.com/viajaplan/leadengine/internal/script"
	"github.com/viajaplan/leadengine/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Store    store.Store
	Engine   *scoring.Engine
	Recalc   *scoring.Recalculator
	Insights *insight.Generator
	Notify   *notify.Summarizer
	Scripts  *script.Generator
	Bus      event.Publisher
}

// Run starts the HTTP server with all routes registered.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()
	r.Use(handler.Recovery, handler.Logging)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	ch := handler.NewContactHandler(cfg.Store, cfg.Bus)
	r.Post("/v1/contacts", ch.CreateContact)
	r.Get("/v1/contacts", ch.ListContacts)
	r.Get("/v1/contacts/{id}", ch.GetContact)
	r.Post("/v1/contacts/{id}/interactions", ch.AddInteraction)

	lh := handler.NewLeadHandler(cfg.Engine, cfg.Recalc, cfg.Insights, cfg.Notify, cfg.Scripts)
	r.Post("/v1/contacts/{id}/score", lh.ScoreContact)
	r.Get("/v1/contacts/{id}/insights", lh.GetInsights)
	r.Get("/v1/contacts/{id}/script", lh.GetScript)
	r.Post("/v1/notifications/summarize", lh.SummarizeNotification)
	r.Post("/v1/leads/recalculate", lh.Recalculate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	return server.ListenAndServe()
}
