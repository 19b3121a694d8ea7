package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-nutricalci/internal/models"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestSaveOverwritesSameDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, models.Snapshot{Date: day(t, "2024-03-10"), Calories: 1800, GoalAtSave: 2000}))
	require.NoError(t, store.Save(ctx, models.Snapshot{Date: day(t, "2024-03-10"), Calories: 2300, Protein: 90, GoalAtSave: 2100}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2300.0, all[0].Calories)
	assert.Equal(t, 90.0, all[0].Protein)
	assert.Equal(t, 2100.0, all[0].GoalAtSave)

	snap, ok, err := store.Get(ctx, day(t, "2024-03-10"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, all[0], snap)

	_, ok, err = store.Get(ctx, day(t, "2024-03-11"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWindow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, d := range []string{"2024-03-10", "2024-03-01", "2024-03-03", "2024-03-02", "2024-02-20"} {
		require.NoError(t, store.Save(ctx, models.Snapshot{Date: day(t, d), Calories: 2000, GoalAtSave: 2000}))
	}

	reference := time.Date(2024, 3, 10, 21, 30, 0, 0, time.UTC)
	snaps, err := store.Window(ctx, reference, 7)
	require.NoError(t, err)

	var dates []string
	for _, s := range snaps {
		dates = append(dates, s.Date.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2024-03-03", "2024-03-10"}, dates)

	snaps, err = store.Window(ctx, reference, 30)
	require.NoError(t, err)
	require.Len(t, snaps, 5)
	for i := 1; i < len(snaps); i++ {
		assert.True(t, snaps[i-1].Date.Before(snaps[i].Date))
	}
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	b := newTestStore(t)

	require.NoError(t, a.Save(ctx, models.Snapshot{Date: day(t, "2024-03-10"), Calories: 1}))

	snaps, err := b.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestAverage(t *testing.T) {
	_, ok := Average(nil, FieldCalories)
	assert.False(t, ok)

	snaps := []models.Snapshot{
		{Calories: 1800, Protein: 100, Carbs: 200, Fat: 60},
		{Calories: 2200, Protein: 140, Carbs: 260, Fat: 80},
	}
	tests := map[Field]float64{
		FieldCalories: 2000,
		FieldProtein:  120,
		FieldCarbs:    230,
		FieldFat:      70,
	}
	for field, want := range tests {
		got, ok := Average(snaps, field)
		require.True(t, ok)
		assert.Equal(t, want, got, string(field))
	}
}

func TestWeeklyDelta(t *testing.T) {
	assert.Zero(t, WeeklyDelta(nil))

	snaps := []models.Snapshot{
		{Calories: 2300, GoalAtSave: 2000},
		{Calories: 1900, GoalAtSave: 2000},
		{Calories: 1500, GoalAtSave: 1800},
	}
	assert.Equal(t, -100.0, WeeklyDelta(snaps))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	got := Day(time.Date(2024, 3, 10, 23, 59, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)

	_, err := ParseDay("10/03/2024")
	assert.Error(t, err)
}
