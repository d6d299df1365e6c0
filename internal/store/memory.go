package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viajaplan/leadengine/internal/types"
)

// MemoryStore implements Store using in-memory maps.
// Intended for demos and testing — no SQLite required.
type MemoryStore struct {
	mu           sync.RWMutex
	contacts     map[string]types.ContactContext
	interactions map[string][]types.Interaction
	tasks        map[string][]Task
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:     make(map[string]types.ContactContext),
		interactions: make(map[string][]types.Interaction),
		tasks:        make(map[string][]Task),
	}
}

func (s *MemoryStore) CreateContact(_ context.Context, c *types.ContactContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.StageEnteredAt.IsZero() {
		c.StageEnteredAt = c.CreatedAt
	}
	if c.Stage == "" {
		c.Stage = "new"
	}
	if c.Status == "" {
		c.Status = "active"
	}
	if c.Type == "" {
		c.Type = "lead"
	}
	s.contacts[c.ID] = *c
	return nil
}

func (s *MemoryStore) Contact(_ context.Context, id string) (types.ContactContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return types.ContactContext{}, ErrNotFound
	}
	s.fillAggregates(&c)
	return c, nil
}

func (s *MemoryStore) ListContacts(_ context.Context, limit, offset int) ([]types.ContactContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]types.ContactContext, 0, len(s.contacts))
	for _, c := range s.contacts {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) ActiveContacts(_ context.Context) ([]types.ContactContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ContactContext
	for _, c := range s.contacts {
		if c.Status == "active" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) AddInteraction(_ context.Context, in *types.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[in.ContactID]
	if !ok {
		return ErrNotFound
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}
	if c.LastInteractionAt == nil || in.OccurredAt.After(*c.LastInteractionAt) {
		t := in.OccurredAt
		c.LastInteractionAt = &t
		s.contacts[in.ContactID] = c
	}
	s.interactions[in.ContactID] = append(s.interactions[in.ContactID], *in)
	return nil
}

func (s *MemoryStore) RecentInteractions(_ context.Context, contactID string, limit int) ([]types.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := append([]types.Interaction(nil), s.interactions[contactID]...)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	if limit <= 0 {
		limit = 5
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryStore) AddTask(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[t.ContactID]; !ok {
		return ErrNotFound
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = "pending"
	}
	s.tasks[t.ContactID] = append(s.tasks[t.ContactID], *t)
	return nil
}

func (s *MemoryStore) UpdateScore(_ context.Context, id string, score int, sigs map[string]int, isHot bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return ErrNotFound
	}
	c.Score = score
	c.Signals = sigs
	c.IsHot = isHot
	s.contacts[id] = c
	return nil
}

func (s *MemoryStore) fillAggregates(c *types.ContactContext) {
	dayAgo := time.Now().UTC().Add(-24 * time.Hour)
	c.InteractionCount = len(s.interactions[c.ID])
	c.RecentInteractionCount = 0
	for _, in := range s.interactions[c.ID] {
		if in.OccurredAt.After(dayAgo) {
			c.RecentInteractionCount++
		}
	}
	c.CompletedTaskCount = 0
	c.PendingTaskCount = 0
	for _, t := range s.tasks[c.ID] {
		switch t.Status {
		case "completed":
			c.CompletedTaskCount++
		case "pending":
			c.PendingTaskCount++
		}
	}
}
