// internal/metrics/intake.go
package metrics

import "math"

type MacroSplit struct {
	CarbsPct   float64 `json:"carbs_pct"`
	ProteinPct float64 `json:"protein_pct"`
	FatPct     float64 `json:"fat_pct"`
}

// MacroPercentages reports each macro's share of macro calories. ok is false
// when there are no macro calories to divide by.
func MacroPercentages(carbsG, proteinG, fatG float64) (MacroSplit, bool) {
	carbCals := carbsG * kcalPerGramCarb
	proteinCals := proteinG * kcalPerGramProtein
	fatCals := fatG * kcalPerGramFat

	total := carbCals + proteinCals + fatCals
	if total <= 0 {
		return MacroSplit{}, false
	}
	return MacroSplit{
		CarbsPct:   carbCals / total * 100,
		ProteinPct: proteinCals / total * 100,
		FatPct:     fatCals / total * 100,
	}, true
}

type BalanceLabel string

const (
	Surplus  BalanceLabel = "surplus"
	Deficit  BalanceLabel = "deficit"
	Balanced BalanceLabel = "balanced"
)

// Balance is consumed minus target. Magnitude is the unsigned size of the
// difference, to be read together with Label.
type Balance struct {
	Diff      float64      `json:"diff"`
	Magnitude float64      `json:"magnitude"`
	Label     BalanceLabel `json:"label"`
}

func SurplusOrDeficit(consumed, target float64) Balance {
	diff := consumed - target
	b := Balance{Diff: diff, Magnitude: math.Abs(diff), Label: Balanced}
	switch {
	case diff > 0:
		b.Label = Surplus
	case diff < 0:
		b.Label = Deficit
	}
	return b
}

// Progress is consumed/goal. ok is false when no positive goal is set.
func Progress(consumed, goal float64) (float64, bool) {
	if goal <= 0 {
		return 0, false
	}
	return consumed / goal, true
}

// ClampProgress caps a progress ratio to [0, 1] for progress bars.
func ClampProgress(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
