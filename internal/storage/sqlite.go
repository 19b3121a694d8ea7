// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mcp-nutricalci/internal/models"
)

const dateLayout = "2006-01-02"

//go:embed schema.sql
var schemaSQL string

// HistoryStore keeps one snapshot per calendar day in an in-memory SQLite
// database. Every store owns its own database and nothing is written to disk.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore() (*HistoryStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts the snapshot or replaces the one already stored for its date.
func (s *HistoryStore) Save(ctx context.Context, snap models.Snapshot) error {
	query := `
        INSERT INTO snapshots (date, calories, protein, carbs, fat, goal_at_save, saved_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            calories = excluded.calories,
            protein = excluded.protein,
            carbs = excluded.carbs,
            fat = excluded.fat,
            goal_at_save = excluded.goal_at_save,
            saved_at = excluded.saved_at
    `
	_, err := s.db.ExecContext(ctx, query,
		snap.Date.Format(dateLayout), snap.Calories, snap.Protein, snap.Carbs,
		snap.Fat, snap.GoalAtSave, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot for date, or ok=false when none was saved.
func (s *HistoryStore) Get(ctx context.Context, date time.Time) (models.Snapshot, bool, error) {
	snaps, err := s.query(ctx, "WHERE date = ?", date.Format(dateLayout))
	if err != nil {
		return models.Snapshot{}, false, err
	}
	if len(snaps) == 0 {
		return models.Snapshot{}, false, nil
	}
	return snaps[0], true, nil
}

// Window returns every snapshot dated on or after reference minus days,
// oldest first.
func (s *HistoryStore) Window(ctx context.Context, reference time.Time, days int) ([]models.Snapshot, error) {
	from := Day(reference).AddDate(0, 0, -days)
	return s.query(ctx, "WHERE date >= ?", from.Format(dateLayout))
}

func (s *HistoryStore) All(ctx context.Context) ([]models.Snapshot, error) {
	return s.query(ctx, "")
}

func (s *HistoryStore) query(ctx context.Context, where string, args ...interface{}) ([]models.Snapshot, error) {
	query := `
        SELECT date, calories, protein, carbs, fat, goal_at_save
        FROM snapshots
    ` + where + " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var dateStr string
		if err := rows.Scan(&dateStr, &snap.Calories, &snap.Protein, &snap.Carbs,
			&snap.Fat, &snap.GoalAtSave); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.Date, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	return snaps, nil
}

// Day truncates t to its calendar date in t's own location and returns it as
// midnight UTC, which is how snapshot dates are keyed.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
