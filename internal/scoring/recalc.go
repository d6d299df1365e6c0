package scoring

import (
	"context"
	"log"
	"sync"

	"github.com/viajaplan/leadengine/internal/store"
)

// defaultWorkers bounds batch concurrency against the record store.
const defaultWorkers = 4

// RecalcResult aggregates one batch run.
type RecalcResult struct {
	Updated  int `json:"updated"`
	HotLeads int `json:"hot_leads"`
	Failed   int `json:"failed"`
}

// Recalculator re-scores the active contact population.
type Recalculator struct {
	store   store.Store
	engine  *Engine
	workers int
}

// NewRecalculator creates a Recalculator with the default worker bound.
func NewRecalculator(s store.Store, e *Engine) *Recalculator {
	return &Recalculator{store: s, engine: e, workers: defaultWorkers}
}

// RecalculateAll scores every active contact through a bounded worker pool.
// A single contact failing is counted and logged, never aborting the run.
func (r *Recalculator) RecalculateAll(ctx context.Context) (RecalcResult, error) {
	contacts, err := r.store.ActiveContacts(ctx)
	if err != nil {
		return RecalcResult{}, err
	}

	ids := make(chan string)
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result RecalcResult
	)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				res, err := r.engine.Score(ctx, id)
				mu.Lock()
				if err != nil {
					result.Failed++
					mu.Unlock()
					log.Printf("scoring: recalculate %s: %v", id, err)
					continue
				}
				result.Updated++
				if res.IsHot {
					result.HotLeads++
				}
				mu.Unlock()
			}
		}()
	}

	for _, c := range contacts {
		ids <- c.ID
	}
	close(ids)
	wg.Wait()

	log.Printf("scoring: recalculated %d contacts (%d hot, %d failed)",
		result.Updated, result.HotLeads, result.Failed)
	return result, nil
}
