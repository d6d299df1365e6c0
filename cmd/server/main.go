package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/viajaplan/leadengine/internal/config"
	"github.com/viajaplan/leadengine/internal/eventbus"
	"github.com/viajaplan/leadengine/internal/insight"
	"github.com/viajaplan/leadengine/internal/notify"
	"github.com/viajaplan/leadengine/internal/scheduler"
	"github.com/viajaplan/leadengine/internal/scoring"
	"github.com/viajaplan/leadengine/internal/script"
	"github.com/viajaplan/leadengine/internal/server"
	"github.com/viajaplan/leadengine/internal/signals"
	"github.com/viajaplan/leadengine/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys explicitly — required for SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		log.Fatalf("enabling foreign keys: %v", err)
	}

	st := store.NewSQLiteStore(db)
	if err := st.CreateTables(ctx); err != nil {
		log.Fatalf("running schema migration: %v", err)
	}
	log.Println("database migrated successfully")

	signals.Init()

	summarizer := notify.NewSummarizer(st)

	bus := eventbus.New(256)
	bus.Subscribe("notifications", eventbus.NewNotificationConsumer(summarizer))
	bus.Start(ctx)

	engine := scoring.NewEngine(st)
	engine.SetPublisher(bus)
	recalc := scoring.NewRecalculator(st, engine)

	llm := insight.NewLLMStrategy(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	if llm == nil {
		log.Println("insight: no LLM credential configured, rule strategy only")
	}

	sched := scheduler.New(recalc, cfg.Recalc.Schedule)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("starting scheduler: %v", err)
	}
	defer sched.Stop()

	err = server.Run(ctx, server.Config{
		Port:     cfg.Port,
		Store:    st,
		Engine:   engine,
		Recalc:   recalc,
		Insights: insight.NewGenerator(st, strategyOrNil(llm)),
		Notify:   summarizer,
		Scripts:  script.NewGenerator(st),
		Bus:      bus,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// strategyOrNil avoids storing a typed nil in the Strategy interface.
func strategyOrNil(llm *insight.LLMStrategy) insight.Strategy {
	if llm == nil {
		return nil
	}
	return llm
}
