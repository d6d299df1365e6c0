// Package scheduler runs the nightly batch score recalculation on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"

	rcron "github.com/robfig/cron/v3"

	"github.com/viajaplan/leadengine/internal/scoring"
)

// Service schedules batch recalculation runs.
type Service struct {
	recalc   *scoring.Recalculator
	schedule string
	cron     *rcron.Cron
}

// New creates a scheduler for the given cron expression. An empty schedule
// disables the service.
func New(recalc *scoring.Recalculator, schedule string) *Service {
	return &Service{recalc: recalc, schedule: schedule}
}

// Start registers the recalculation job and starts the cron loop. A
// long-running batch is expected to run to completion; runs never overlap
// because cron job slots are skipped while the previous run is active.
func (s *Service) Start(ctx context.Context) error {
	if s.schedule == "" {
		log.Printf("scheduler: disabled (no schedule configured)")
		return nil
	}

	s.cron = rcron.New(rcron.WithChain(rcron.SkipIfStillRunning(rcron.DefaultLogger)))
	_, err := s.cron.AddFunc(s.schedule, func() {
		result, err := s.recalc.RecalculateAll(ctx)
		if err != nil {
			log.Printf("scheduler: recalculation failed: %v", err)
			return
		}
		log.Printf("scheduler: recalculation done: %d updated, %d hot", result.Updated, result.HotLeads)
	})
	if err != nil {
		return fmt.Errorf("register recalc job: %w", err)
	}

	s.cron.Start()
	log.Printf("scheduler: recalculation scheduled at %q", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
