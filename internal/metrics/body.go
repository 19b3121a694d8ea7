// internal/metrics/body.go
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"mcp-nutricalci/internal/models"
)

var (
	ErrUnsupportedSex  = errors.New("sex must be male or female")
	ErrUnknownActivity = errors.New("unknown activity level")
	ErrUnknownGoal     = errors.New("unknown goal type")
	ErrInvalidHeight   = errors.New("height must be positive")
)

// activityMultipliers is the five-level table used for TDEE.
var activityMultipliers = map[models.ActivityLevel]float64{
	models.Sedentary:        1.2,
	models.LightlyActive:    1.375,
	models.ModeratelyActive: 1.55,
	models.VeryActive:       1.725,
	models.ExtraActive:      1.9,
}

const (
	FatLossAdjustment    = -400.0
	MuscleGainAdjustment = 250.0

	proteinPerKg       = 1.8
	carbCalorieShare   = 0.5
	kcalPerGramCarb    = 4.0
	kcalPerGramProtein = 4.0
	kcalPerGramFat     = 9.0
)

// ParseActivityLevel accepts "Lightly Active", "lightly-active" and
// "lightly_active" alike.
func ParseActivityLevel(s string) (models.ActivityLevel, error) {
	level := models.ActivityLevel(normalizeKey(s))
	if _, ok := activityMultipliers[level]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
	return level, nil
}

func ActivityMultiplier(level models.ActivityLevel) (float64, error) {
	m, ok := activityMultipliers[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, level)
	}
	return m, nil
}

func ParseSex(s string) (models.Sex, error) {
	switch sex := models.Sex(normalizeKey(s)); sex {
	case models.Male, models.Female:
		return sex, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSex, s)
}

func ParseGoalType(s string) (models.GoalType, error) {
	switch g := models.GoalType(normalizeKey(s)); g {
	case models.Maintenance, models.FatLoss, models.MuscleGain:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGoal, s)
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// BMR estimates basal metabolic rate with the Mifflin-St Jeor equation, which
// only defines male and female constants.
func BMR(weightKg, heightCm float64, age int, sex models.Sex) (float64, error) {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch sex {
	case models.Male:
		return base + 5, nil
	case models.Female:
		return base - 161, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedSex, sex)
}

func TDEE(bmr, activityMultiplier float64) float64 {
	return bmr * activityMultiplier
}

func TargetCalories(tdee float64, goal models.GoalType) (float64, error) {
	switch goal {
	case models.Maintenance:
		return tdee, nil
	case models.FatLoss:
		return tdee + FatLossAdjustment, nil
	case models.MuscleGain:
		return tdee + MuscleGainAdjustment, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
}

func RecommendedProtein(weightKg float64) float64 {
	return weightKg * proteinPerKg
}

// RecommendedCarbs assumes half of the calories come from carbohydrate.
func RecommendedCarbs(targetCalories float64) float64 {
	return targetCalories * carbCalorieShare / kcalPerGramCarb
}

// Recommend derives calorie, protein and carb targets for body and goal.
func Recommend(body models.BodyProfile, goal models.GoalType) (models.Recommendation, error) {
	bmr, err := BMR(body.WeightKg, body.HeightCm, body.Age, body.Sex)
	if err != nil {
		return models.Recommendation{}, err
	}
	multiplier, err := ActivityMultiplier(body.ActivityLevel)
	if err != nil {
		return models.Recommendation{}, err
	}
	tdee := TDEE(bmr, multiplier)
	target, err := TargetCalories(tdee, goal)
	if err != nil {
		return models.Recommendation{}, err
	}

	return models.Recommendation{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		ProteinGoal:    RecommendedProtein(body.WeightKg),
		CarbGoal:       RecommendedCarbs(target),
		GoalType:       goal,
		ActivityLevel:  body.ActivityLevel,
	}, nil
}

type BMICategory string

const (
	Underweight  BMICategory = "underweight"
	NormalWeight BMICategory = "normal weight"
	Overweight   BMICategory = "overweight"
	Obese        BMICategory = "obese"
)

func BMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 {
		return 0, ErrInvalidHeight
	}
	m := heightCm / 100
	return weightKg / (m * m), nil
}

// ClassifyBMI uses bands that include their lower bound: 25 is overweight and
// 30 is obese.
func ClassifyBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return NormalWeight
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}
