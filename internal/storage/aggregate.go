// internal/storage/aggregate.go
package storage

import "mcp-nutricalci/internal/models"

type Field string

const (
	FieldCalories Field = "calories"
	FieldProtein  Field = "protein"
	FieldCarbs    Field = "carbs"
	FieldFat      Field = "fat"
)

func (f Field) value(s models.Snapshot) float64 {
	switch f {
	case FieldProtein:
		return s.Protein
	case FieldCarbs:
		return s.Carbs
	case FieldFat:
		return s.Fat
	}
	return s.Calories
}

// Average is the mean of field over snaps. ok is false for an empty set,
// which means there is no data rather than an average of zero.
func Average(snaps []models.Snapshot, field Field) (float64, bool) {
	if len(snaps) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range snaps {
		sum += field.value(s)
	}
	return sum / float64(len(snaps)), true
}

// WeeklyDelta sums calories minus the goal saved with each snapshot. A
// positive result is a net surplus over the window.
func WeeklyDelta(snaps []models.Snapshot) float64 {
	var delta float64
	for _, s := range snaps {
		delta += s.Calories - s.GoalAtSave
	}
	return delta
}
