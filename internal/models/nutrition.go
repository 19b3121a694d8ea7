// internal/models/nutrition.go
package models

import (
	"time"
)

// NutrientVector holds the nutrients of a quantity of food. Calories are kcal,
// sodium is mg and everything else is grams.
type NutrientVector struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Fibre         float64 `json:"fibre"`
	FreeSugar     float64 `json:"free_sugar"`
	Sodium        float64 `json:"sodium"`
}

// Add returns the field-wise sum of v and o.
func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories:      v.Calories + o.Calories,
		Carbohydrates: v.Carbohydrates + o.Carbohydrates,
		Protein:       v.Protein + o.Protein,
		Fat:           v.Fat + o.Fat,
		Fibre:         v.Fibre + o.Fibre,
		FreeSugar:     v.FreeSugar + o.FreeSugar,
		Sodium:        v.Sodium + o.Sodium,
	}
}

// Mul multiplies every field by factor.
func (v NutrientVector) Mul(factor float64) NutrientVector {
	return NutrientVector{
		Calories:      v.Calories * factor,
		Carbohydrates: v.Carbohydrates * factor,
		Protein:       v.Protein * factor,
		Fat:           v.Fat * factor,
		Fibre:         v.Fibre * factor,
		FreeSugar:     v.FreeSugar * factor,
		Sodium:        v.Sodium * factor,
	}
}

func (v NutrientVector) IsZero() bool {
	return v == NutrientVector{}
}

type DishEntry struct {
	Name            string         `json:"name"`
	PerHundredGrams NutrientVector `json:"per_100g"`
}

// Portion is a dish scaled to the grams actually eaten.
type Portion struct {
	Dish       string         `json:"dish"`
	TotalGrams float64        `json:"total_grams"`
	Nutrients  NutrientVector `json:"nutrients"`
}

type RecipeItem struct {
	Dish  string  `json:"dish"`
	Grams float64 `json:"grams"`
}

// Snapshot is a saved copy of one day's ledger together with the calorie goal
// that was in effect when it was saved.
type Snapshot struct {
	Date       time.Time `json:"date"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
	GoalAtSave float64   `json:"goal_at_save"`
}

type GoalProfile struct {
	CalorieGoal float64 `json:"calorie_goal"`
	ProteinGoal float64 `json:"protein_goal"`
	CarbGoal    float64 `json:"carb_goal"`
}

const (
	DefaultCalorieGoal = 2000
	DefaultProteinGoal = 120
	DefaultCarbGoal    = 250
)

// DefaultGoals is 2000 kcal, 120 g protein and 250 g carbohydrate.
func DefaultGoals() GoalProfile {
	return GoalProfile{
		CalorieGoal: DefaultCalorieGoal,
		ProteinGoal: DefaultProteinGoal,
		CarbGoal:    DefaultCarbGoal,
	}
}

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtraActive      ActivityLevel = "extra_active"
)

type GoalType string

const (
	Maintenance GoalType = "maintenance"
	FatLoss     GoalType = "fat_loss"
	MuscleGain  GoalType = "muscle_gain"
)

// BodyProfile is supplied with each calculation request and never stored.
type BodyProfile struct {
	WeightKg      float64       `json:"weight_kg"`
	HeightCm      float64       `json:"height_cm"`
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

type Recommendation struct {
	BMR            float64       `json:"bmr"`
	TDEE           float64       `json:"tdee"`
	TargetCalories float64       `json:"target_calories"`
	ProteinGoal    float64       `json:"protein_goal"`
	CarbGoal       float64       `json:"carb_goal"`
	GoalType       GoalType      `json:"goal_type"`
	ActivityLevel  ActivityLevel `json:"activity_level"`
}

// Goals converts the recommendation into the profile it overwrites.
func (r Recommendation) Goals() GoalProfile {
	return GoalProfile{
		CalorieGoal: r.TargetCalories,
		ProteinGoal: r.ProteinGoal,
		CarbGoal:    r.CarbGoal,
	}
}
