// internal/nutrition/scale.go
package nutrition

import (
	"fmt"
	"log"

	"mcp-nutricalci/internal/models"
)

// Lookuper resolves a dish name to its per-100g nutrients.
type Lookuper interface {
	Lookup(name string) (models.NutrientVector, error)
}

// Scale converts a per-100g vector to the amount in grams consumed.
func Scale(per100g models.NutrientVector, grams float64) models.NutrientVector {
	return per100g.Mul(grams / 100)
}

func Grams(quantityPerServing, servings float64) float64 {
	return quantityPerServing * servings
}

// CalculateDish scales a single dish. An unknown dish fails the whole calculation.
func CalculateDish(dishes Lookuper, dish string, quantityPerServing, servings float64) (models.Portion, error) {
	per100g, err := dishes.Lookup(dish)
	if err != nil {
		return models.Portion{}, fmt.Errorf("failed to look up %q: %w", dish, err)
	}

	grams := Grams(quantityPerServing, servings)
	return models.Portion{
		Dish:       dish,
		TotalGrams: grams,
		Nutrients:  Scale(per100g, grams),
	}, nil
}

type AggregateResult struct {
	Total   models.NutrientVector `json:"total"`
	Used    int                   `json:"used"`
	Skipped []string              `json:"skipped,omitempty"`
}

// Aggregate sums the scaled nutrients of every item. Items whose dish cannot
// be resolved are skipped and listed in the result; they never abort the sum.
func Aggregate(dishes Lookuper, items []models.RecipeItem) AggregateResult {
	var res AggregateResult
	for _, item := range items {
		per100g, err := dishes.Lookup(item.Dish)
		if err != nil {
			res.Skipped = append(res.Skipped, item.Dish)
			continue
		}
		res.Total = res.Total.Add(Scale(per100g, item.Grams))
		res.Used++
	}

	if len(res.Skipped) > 0 {
		log.Printf("Skipped %d unknown recipe item(s): %v", len(res.Skipped), res.Skipped)
	}
	return res
}
