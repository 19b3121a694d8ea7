// internal/catalog/loader.go
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"mcp-nutricalci/internal/models"
)

var ErrMissingColumns = errors.New("missing required columns")

var requiredColumns = []string{
	"dish_name",
	"calories",
	"carbohydrates",
	"protein",
	"fats",
	"fibre",
	"free_sugar",
	"sodium",
}

var unitSuffix = regexp.MustCompile(`\(.*?\)`)

// LoadReport describes what happened to the source rows.
type LoadReport struct {
	Rows       int `json:"rows"`
	Kept       int `json:"kept"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (*Catalog, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	cat, report, err := Load(f)
	if err != nil {
		return nil, report, err
	}
	log.Printf("Loaded catalog %s: %d rows, %d kept, %d dropped, %d duplicates",
		path, report.Rows, report.Kept, report.Dropped, report.Duplicates)
	return cat, report, nil
}

// Load reads a CSV dish table. Rows whose nutrient cells are not numbers, are
// negative or are not finite are dropped, as are rows without a name.
func Load(r io.Reader) (*Catalog, LoadReport, error) {
	var report LoadReport

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("failed to read catalog header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := NormalizeColumn(h)
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var entries []models.DishEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("failed to read catalog row %d: %w", report.Rows+1, err)
		}
		report.Rows++

		entry, ok := parseRow(record, columns)
		if !ok {
			report.Dropped++
			continue
		}
		entries = append(entries, entry)
	}

	cat, duplicates := New(entries)
	report.Duplicates = duplicates
	report.Kept = cat.Len()
	return cat, report, nil
}

// NormalizeColumn turns a header such as " Calories (kcal) " into "calories".
func NormalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = unitSuffix.ReplaceAllString(h, "")
	h = strings.ReplaceAll(h, " ", "_")
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}

func parseRow(record []string, columns map[string]int) (models.DishEntry, bool) {
	cell := func(col string) (string, bool) {
		i := columns[col]
		if i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	name, ok := cell("dish_name")
	if !ok || name == "" {
		return models.DishEntry{}, false
	}

	values := make([]float64, 0, len(requiredColumns)-1)
	for _, col := range requiredColumns[1:] {
		raw, ok := cell(col)
		if !ok {
			return models.DishEntry{}, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.DishEntry{}, false
		}
		values = append(values, v)
	}

	return models.DishEntry{
		Name: name,
		PerHundredGrams: models.NutrientVector{
			Calories:      values[0],
			Carbohydrates: values[1],
			Protein:       values[2],
			Fat:           values[3],
			Fibre:         values[4],
			FreeSugar:     values[5],
			Sodium:        values[6],
		},
	}, true
}
