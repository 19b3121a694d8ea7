// internal/session/session.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mcp-nutricalci/internal/models"
	"mcp-nutricalci/internal/nutrition"
	"mcp-nutricalci/internal/storage"
)

// Session owns the mutable state of one user: today's ledger, the saved
// history and the current goals. The catalog is not part of it.
//
// Once closed, every operation fails with ErrSessionNotFound.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	closed  bool
	ledger  *nutrition.Ledger
	history *storage.HistoryStore
	goals   models.GoalProfile
}

func New(id string) (*Session, error) {
	history, err := storage.NewHistoryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		ledger:    nutrition.NewLedger(),
		history:   history,
		goals:     models.DefaultGoals(),
	}, nil
}

// checkOpen must be called with s.mu held.
func (s *Session) checkOpen() error {
	if s.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID)
	}
	return nil
}

// Log adds v to today's totals and returns the new totals.
func (s *Session) Log(v models.NutrientVector) (models.NutrientVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return models.NutrientVector{}, err
	}
	s.ledger.Add(v)
	return s.ledger.Totals(), nil
}

func (s *Session) Totals() (models.NutrientVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return models.NutrientVector{}, err
	}
	return s.ledger.Totals(), nil
}

func (s *Session) ResetDay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	s.ledger.Reset()
	return nil
}

// SaveDay stores today's totals under date together with the current calorie
// goal. The ledger keeps its totals.
func (s *Session) SaveDay(ctx context.Context, date time.Time) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return models.Snapshot{}, err
	}

	totals := s.ledger.Totals()
	snap := models.Snapshot{
		Date:       storage.Day(date),
		Calories:   totals.Calories,
		Protein:    totals.Protein,
		Carbs:      totals.Carbohydrates,
		Fat:        totals.Fat,
		GoalAtSave: s.goals.CalorieGoal,
	}
	if err := s.history.Save(ctx, snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *Session) History(ctx context.Context, reference time.Time, days int) ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.history.Window(ctx, reference, days)
}

func (s *Session) Goals() (models.GoalProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return models.GoalProfile{}, err
	}
	return s.goals, nil
}

// SetGoals stores goals entered by hand.
func (s *Session) SetGoals(goals models.GoalProfile) (models.GoalProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return models.GoalProfile{}, err
	}
	s.goals = goals
	return s.goals, nil
}

// ApplyRecommendation overwrites every goal with the recommended values.
func (s *Session) ApplyRecommendation(rec models.Recommendation) (models.GoalProfile, error) {
	return s.SetGoals(rec.Goals())
}

// Close drops the history. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.history.Close()
}
