package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-nutricalci/internal/metrics"
	"mcp-nutricalci/internal/models"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustTotals(t *testing.T, s *Session) models.NutrientVector {
	t.Helper()
	totals, err := s.Totals()
	require.NoError(t, err)
	return totals
}

func mustLog(t *testing.T, s *Session, v models.NutrientVector) {
	t.Helper()
	_, err := s.Log(v)
	require.NoError(t, err)
}

func TestNewSessionDefaults(t *testing.T) {
	s := newTestSession(t)

	assert.True(t, mustTotals(t, s).IsZero())
	goals, err := s.Goals()
	require.NoError(t, err)
	assert.Equal(t, models.GoalProfile{CalorieGoal: 2000, ProteinGoal: 120, CarbGoal: 250}, goals)
}

func TestSaveDayKeepsLedger(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	mustLog(t, s, models.NutrientVector{Calories: 1500, Protein: 80, Carbohydrates: 150, Fat: 40})
	date := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

	snap, err := s.SaveDay(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, snap.Calories)
	assert.Equal(t, 150.0, snap.Carbs)
	assert.Equal(t, 2000.0, snap.GoalAtSave)
	assert.Equal(t, 1500.0, mustTotals(t, s).Calories)

	mustLog(t, s, models.NutrientVector{Calories: 700})
	_, err = s.SetGoals(models.GoalProfile{CalorieGoal: 2500, ProteinGoal: 100, CarbGoal: 300})
	require.NoError(t, err)
	_, err = s.SaveDay(ctx, date)
	require.NoError(t, err)

	snaps, err := s.History(ctx, date, 7)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 2200.0, snaps[0].Calories)
	assert.Equal(t, 2500.0, snaps[0].GoalAtSave)
}

func TestApplyRecommendation(t *testing.T) {
	s := newTestSession(t)

	rec, err := metrics.Recommend(models.BodyProfile{
		WeightKg:      70,
		HeightCm:      170,
		Age:           25,
		Sex:           models.Male,
		ActivityLevel: models.ModeratelyActive,
	}, models.MuscleGain)
	require.NoError(t, err)

	goals, err := s.ApplyRecommendation(rec)
	require.NoError(t, err)
	stored, err := s.Goals()
	require.NoError(t, err)
	assert.Equal(t, goals, stored)
	assert.InDelta(t, 2795.875, goals.CalorieGoal, 1e-9)
	assert.InDelta(t, 126, goals.ProteinGoal, 1e-9)
	assert.InDelta(t, 2795.875/8, goals.CarbGoal, 1e-9)
}

func TestResetDay(t *testing.T) {
	s := newTestSession(t)
	mustLog(t, s, models.NutrientVector{Calories: 100})
	require.NoError(t, s.ResetDay())
	assert.True(t, mustTotals(t, s).IsZero())
}

func TestClosedSession(t *testing.T) {
	ctx := context.Background()
	s, err := New("closing")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Log(models.NutrientVector{Calories: 100})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Totals()
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.ResetDay(), ErrSessionNotFound)
	_, err = s.SaveDay(ctx, time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.History(ctx, time.Now(), 7)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Goals()
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.SetGoals(models.DefaultGoals())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	defer m.CloseAll()

	def, err := m.Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultID, def.ID)

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 3, m.Len())

	mustLog(t, a, models.NutrientVector{Calories: 500})
	assert.True(t, mustTotals(t, b).IsZero())
	assert.True(t, mustTotals(t, def).IsZero())

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Close(a.ID))
	_, err = m.Get(a.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(a.ID), ErrSessionNotFound)
	assert.Error(t, m.Close(DefaultID))

	// A request that fetched the session before it was closed.
	_, err = got.SaveDay(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, m.CloseAll())
	assert.Zero(t, m.Len())
}
