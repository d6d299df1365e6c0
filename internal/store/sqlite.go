package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viajaplan/leadengine/internal/types"
)

// SQLiteStore implements Store on database/sql. The schema is created by
// CreateTables during startup; timestamps are stored as RFC3339 text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTables creates the contact, interaction and task tables. Run during
// startup, before the first request.
func (s *SQLiteStore) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contacts (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			email               TEXT NOT NULL DEFAULT '',
			phone               TEXT NOT NULL DEFAULT '',
			whatsapp            TEXT NOT NULL DEFAULT '',
			type                TEXT NOT NULL DEFAULT 'lead',
			source              TEXT NOT NULL DEFAULT '',
			campaign            TEXT NOT NULL DEFAULT '',
			stage               TEXT NOT NULL DEFAULT 'new',
			status              TEXT NOT NULL DEFAULT 'active',
			tags                TEXT NOT NULL DEFAULT '[]',
			destination         TEXT NOT NULL DEFAULT '',
			travel_start        TEXT,
			travel_end          TEXT,
			travelers           INTEGER NOT NULL DEFAULT 0,
			budget_min          REAL NOT NULL DEFAULT 0,
			budget_max          REAL NOT NULL DEFAULT 0,
			travel_type         TEXT NOT NULL DEFAULT '',
			total_bookings      INTEGER NOT NULL DEFAULT 0,
			total_quotes        INTEGER NOT NULL DEFAULT 0,
			lifetime_value      REAL NOT NULL DEFAULT 0,
			created_at          TEXT NOT NULL,
			stage_entered_at    TEXT NOT NULL,
			last_interaction_at TEXT,
			score               INTEGER NOT NULL DEFAULT 0,
			signals             TEXT NOT NULL DEFAULT '{}',
			is_hot              INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL REFERENCES contacts(id),
			type        TEXT NOT NULL,
			subject     TEXT NOT NULL DEFAULT '',
			outcome     TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_interactions_contact_time
			ON interactions (contact_id, occurred_at DESC);

		CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL REFERENCES contacts(id),
			title      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_contact ON tasks (contact_id, status);
	`)
	return err
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c *types.ContactContext) error {
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

	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	sigs, err := json.Marshal(orEmptySignals(c.Signals))
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contacts (
			id, name, email, phone, whatsapp, type, source, campaign, stage, status,
			tags, destination, travel_start, travel_end, travelers, budget_min,
			budget_max, travel_type, total_bookings, total_quotes, lifetime_value,
			created_at, stage_entered_at, last_interaction_at, score, signals, is_hot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Whatsapp, c.Type, c.Source, c.Campaign, c.Stage, c.Status,
		string(tags), c.Destination, timePtrText(c.TravelStart), timePtrText(c.TravelEnd),
		c.Travelers, c.BudgetMin, c.BudgetMax, c.TravelType,
		c.TotalBookings, c.TotalQuotes, c.LifetimeValue,
		timeText(c.CreatedAt), timeText(c.StageEnteredAt), timePtrText(c.LastInteractionAt),
		c.Score, string(sigs), boolInt(c.IsHot),
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

const contactColumns = `
	id, name, email, phone, whatsapp, type, source, campaign, stage, status,
	tags, destination, travel_start, travel_end, travelers, budget_min,
	budget_max, travel_type, total_bookings, total_quotes, lifetime_value,
	created_at, stage_entered_at, last_interaction_at, score, signals, is_hot`

func (s *SQLiteStore) Contact(ctx context.Context, id string) (types.ContactContext, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return types.ContactContext{}, ErrNotFound
	}
	if err != nil {
		return types.ContactContext{}, fmt.Errorf("load contact: %w", err)
	}
	if err := s.loadAggregates(ctx, &c); err != nil {
		return types.ContactContext{}, err
	}
	return c, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, limit, offset int) ([]types.ContactContext, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY score DESC, created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (s *SQLiteStore) ActiveContacts(ctx context.Context) ([]types.ContactContext, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("list active contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (s *SQLiteStore) AddInteraction(ctx context.Context, in *types.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET last_interaction_at = MAX(COALESCE(last_interaction_at, ''), ?)
		WHERE id = ?`,
		timeText(in.OccurredAt), in.ContactID)
	if err != nil {
		return fmt.Errorf("touch contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interactions (id, contact_id, type, subject, outcome, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.ContactID, in.Type, in.Subject, in.Outcome, timeText(in.OccurredAt))
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentInteractions(ctx context.Context, contactID string, limit int) ([]types.Interaction, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contact_id, type, subject, outcome, occurred_at
		FROM interactions WHERE contact_id = ?
		ORDER BY occurred_at DESC LIMIT ?`, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []types.Interaction
	for rows.Next() {
		var in types.Interaction
		var occurred string
		if err := rows.Scan(&in.ID, &in.ContactID, &in.Type, &in.Subject, &in.Outcome, &occurred); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.OccurredAt, _ = time.Parse(time.RFC3339Nano, occurred)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddTask(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = "pending"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, contact_id, title, status) VALUES (?, ?, ?, ?)`,
		t.ID, t.ContactID, t.Title, t.Status)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, id string, score int, sigs map[string]int, isHot bool) error {
	raw, err := json.Marshal(orEmptySignals(sigs))
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET score = ?, signals = ?, is_hot = ? WHERE id = ?`,
		score, string(raw), boolInt(isHot), id)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// loadAggregates fills the derived counters the extractor and rule strategy
// read: interaction counts and task counts.
func (s *SQLiteStore) loadAggregates(ctx context.Context, c *types.ContactContext) error {
	dayAgo := timeText(time.Now().UTC().Add(-24 * time.Hour))
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM interactions WHERE contact_id = ?1),
			(SELECT COUNT(*) FROM interactions WHERE contact_id = ?1 AND occurred_at > ?2),
			(SELECT COUNT(*) FROM tasks WHERE contact_id = ?1 AND status = 'completed'),
			(SELECT COUNT(*) FROM tasks WHERE contact_id = ?1 AND status = 'pending')`,
		c.ID, dayAgo,
	).Scan(&c.InteractionCount, &c.RecentInteractionCount, &c.CompletedTaskCount, &c.PendingTaskCount)
	if err != nil {
		return fmt.Errorf("load aggregates: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (types.ContactContext, error) {
	var (
		c                          types.ContactContext
		tags, sigs                 string
		travelStart, travelEnd     sql.NullString
		createdAt, stageEnteredAt  string
		lastInteraction            sql.NullString
		isHot                      int
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Whatsapp, &c.Type, &c.Source, &c.Campaign,
		&c.Stage, &c.Status, &tags, &c.Destination, &travelStart, &travelEnd,
		&c.Travelers, &c.BudgetMin, &c.BudgetMax, &c.TravelType,
		&c.TotalBookings, &c.TotalQuotes, &c.LifetimeValue,
		&createdAt, &stageEnteredAt, &lastInteraction, &c.Score, &sigs, &isHot,
	)
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal([]byte(tags), &c.Tags)
	_ = json.Unmarshal([]byte(sigs), &c.Signals)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	c.StageEnteredAt, _ = time.Parse(time.RFC3339Nano, stageEnteredAt)
	c.TravelStart = parseTimePtr(travelStart)
	c.TravelEnd = parseTimePtr(travelEnd)
	c.LastInteractionAt = parseTimePtr(lastInteraction)
	c.IsHot = isHot != 0
	return c, nil
}

func collectContacts(rows *sql.Rows) ([]types.ContactContext, error) {
	var out []types.ContactContext
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func timeText(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func timePtrText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeText(*t)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmptySignals(sigs map[string]int) map[string]int {
	if sigs == nil {
		return map[string]int{}
	}
	return sigs
}
