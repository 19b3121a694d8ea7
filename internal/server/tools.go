// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-nutricalci/internal/metrics"
	"mcp-nutricalci/internal/models"
	"mcp-nutricalci/internal/nutrition"
	"mcp-nutricalci/internal/session"
	"mcp-nutricalci/internal/storage"
)

const (
	defaultHistoryDays = 7

	maxQuantityGrams = 5000
	maxServings      = 50
)

type SessionParams struct {
	SessionID string `json:"session_id,omitempty" description:"Session to act on (defaults to the default session)"`
}

type DishParams struct {
	SessionID string  `json:"session_id,omitempty" description:"Session to log into"`
	Dish      string  `json:"dish" description:"Dish name as listed by list_dishes"`
	Quantity  float64 `json:"quantity" description:"Grams per serving"`
	Servings  float64 `json:"servings,omitempty" description:"Number of servings (defaults to 1)"`
}

type RecipeParams struct {
	SessionID string              `json:"session_id,omitempty" description:"Session to log into"`
	Items     []models.RecipeItem `json:"items" description:"Ingredients with grams"`
}

type BodyParams struct {
	WeightKg      float64 `json:"weight_kg" description:"Body weight in kg"`
	HeightCm      float64 `json:"height_cm" description:"Height in cm"`
	Age           int     `json:"age" description:"Age in years"`
	Sex           string  `json:"sex" description:"male or female"`
	ActivityLevel string  `json:"activity_level" description:"sedentary, lightly_active, moderately_active, very_active or extra_active"`
}

type DailyParams struct {
	SessionID   string      `json:"session_id,omitempty" description:"Session to report on"`
	CalorieGoal *float64    `json:"calorie_goal,omitempty" description:"Calorie goal for this report only"`
	ProteinGoal *float64    `json:"protein_goal,omitempty" description:"Protein goal for this report only"`
	Body        *BodyParams `json:"body,omitempty" description:"Body profile for maintenance comparison"`
}

type SaveParams struct {
	SessionID string `json:"session_id,omitempty" description:"Session to save"`
	Date      string `json:"date,omitempty" description:"Date to save under (YYYY-MM-DD, defaults to today)"`
}

type HistoryParams struct {
	SessionID     string `json:"session_id,omitempty" description:"Session to query"`
	Days          *int   `json:"days,omitempty" description:"Window length in days (defaults to 7, 0 is today only)"`
	ReferenceDate string `json:"reference_date,omitempty" description:"End of the window (YYYY-MM-DD, defaults to today)"`
}

type BMIParams struct {
	WeightKg float64 `json:"weight_kg" description:"Body weight in kg"`
	HeightCm float64 `json:"height_cm" description:"Height in cm"`
}

type TargetParams struct {
	SessionID string     `json:"session_id,omitempty" description:"Session whose goals are replaced"`
	Body      BodyParams `json:"body" description:"Body profile"`
	GoalType  string     `json:"goal_type" description:"maintenance, fat_loss or muscle_gain"`
}

type GoalParams struct {
	SessionID   string  `json:"session_id,omitempty" description:"Session whose goals are set"`
	CalorieGoal float64 `json:"calorie_goal" description:"Daily calorie goal (kcal)"`
	ProteinGoal float64 `json:"protein_goal" description:"Daily protein goal (g)"`
	CarbGoal    float64 `json:"carb_goal" description:"Daily carbohydrate goal (g)"`
}

type LoggedPortion struct {
	Portion models.Portion        `json:"portion"`
	Totals  models.NutrientVector `json:"totals"`
}

type LoggedRecipe struct {
	Recipe nutrition.AggregateResult `json:"recipe"`
	Totals models.NutrientVector     `json:"totals"`
}

// DailyReport compares today's totals with the goals. Metrics that cannot be
// computed, such as progress against a zero goal, are null.
type DailyReport struct {
	Totals             models.NutrientVector `json:"totals"`
	Goals              models.GoalProfile    `json:"goals"`
	CalorieProgress    *float64              `json:"calorie_progress"`
	ProteinProgress    *float64              `json:"protein_progress"`
	CarbProgress       *float64              `json:"carb_progress"`
	CalorieProgressBar *float64              `json:"calorie_progress_bar"`
	ProteinProgressBar *float64              `json:"protein_progress_bar"`
	CarbProgressBar    *float64              `json:"carb_progress_bar"`
	Macros             *metrics.MacroSplit   `json:"macros"`
	GoalBalance        *metrics.Balance      `json:"goal_balance"`
	Maintenance        *float64              `json:"maintenance_calories,omitempty"`
	MaintenanceBalance *metrics.Balance      `json:"maintenance_balance,omitempty"`
}

type HistoryReport struct {
	From            string            `json:"from"`
	Days            int               `json:"days"`
	Snapshots       []models.Snapshot `json:"snapshots"`
	AverageCalories *float64          `json:"average_calories"`
	AverageProtein  *float64          `json:"average_protein"`
	AverageCarbs    *float64          `json:"average_carbs"`
	WeeklyDelta     float64           `json:"weekly_delta"`
}

type BMIResult struct {
	BMI      float64             `json:"bmi"`
	Category metrics.BMICategory `json:"category"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", ErrInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	return nil
}

// optional is nil for undefined or non-finite values so they encode as null.
func optional(v float64, ok bool) *float64 {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// progressBar is the clamped form of a progress ratio, nil when p is.
func progressBar(p *float64) *float64 {
	if p == nil {
		return nil
	}
	bar := metrics.ClampProgress(*p)
	return &bar
}

func (s *NutriServer) handleListDishes(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	names := s.catalog.Names()
	return s.createJSONResponse(map[string]interface{}{
		"count":  len(names),
		"dishes": names,
	})
}

func (p *DishParams) validate() error {
	if p.Dish == "" {
		return fmt.Errorf("%w: dish is required", ErrInvalidParams)
	}
	if p.Servings == 0 {
		p.Servings = 1
	}
	if p.Quantity <= 0 || p.Quantity > maxQuantityGrams {
		return fmt.Errorf("%w: quantity must be between 1 and %d grams", ErrInvalidParams, maxQuantityGrams)
	}
	if p.Servings < 0 || p.Servings > maxServings {
		return fmt.Errorf("%w: servings must be between 1 and %d", ErrInvalidParams, maxServings)
	}
	return nil
}

// handleCalculateNutrition scales one dish without logging it
func (s *NutriServer) handleCalculateNutrition(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DishParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	portion, err := nutrition.CalculateDish(s.catalog, params.Dish, params.Quantity, params.Servings)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(portion)
}

func (s *NutriServer) handleLogDish(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DishParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	portion, err := nutrition.CalculateDish(s.catalog, params.Dish, params.Quantity, params.Servings)
	if err != nil {
		return nil, err
	}

	totals, err := sess.Log(portion.Nutrients)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(LoggedPortion{Portion: portion, Totals: totals})
}

func (p *RecipeParams) validate() error {
	for _, item := range p.Items {
		if item.Grams < 0 || item.Grams > maxQuantityGrams {
			return fmt.Errorf("%w: grams for %q must be between 0 and %d", ErrInvalidParams, item.Dish, maxQuantityGrams)
		}
	}
	return nil
}

// handleBuildRecipe totals a recipe without logging it
func (s *NutriServer) handleBuildRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	return s.createJSONResponse(nutrition.Aggregate(s.catalog, params.Items))
}

func (s *NutriServer) handleLogRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}

	recipe := nutrition.Aggregate(s.catalog, params.Items)
	totals, err := sess.Log(recipe.Total)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(LoggedRecipe{Recipe: recipe, Totals: totals})
}

func (s *NutriServer) handleGetDaily(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DailyParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}

	totals, err := sess.Totals()
	if err != nil {
		return nil, err
	}
	// Overrides apply to this report only; stored goals change through set_goals.
	goals, err := sess.Goals()
	if err != nil {
		return nil, err
	}
	if params.CalorieGoal != nil {
		goals.CalorieGoal = *params.CalorieGoal
	}
	if params.ProteinGoal != nil {
		goals.ProteinGoal = *params.ProteinGoal
	}

	report := DailyReport{
		Totals:          totals,
		Goals:           goals,
		CalorieProgress: optional(metrics.Progress(totals.Calories, goals.CalorieGoal)),
		ProteinProgress: optional(metrics.Progress(totals.Protein, goals.ProteinGoal)),
		CarbProgress:    optional(metrics.Progress(totals.Carbohydrates, goals.CarbGoal)),
	}
	report.CalorieProgressBar = progressBar(report.CalorieProgress)
	report.ProteinProgressBar = progressBar(report.ProteinProgress)
	report.CarbProgressBar = progressBar(report.CarbProgress)
	if split, ok := metrics.MacroPercentages(totals.Carbohydrates, totals.Protein, totals.Fat); ok {
		report.Macros = &split
	}
	if goals.CalorieGoal > 0 {
		balance := metrics.SurplusOrDeficit(totals.Calories, goals.CalorieGoal)
		report.GoalBalance = &balance
	}

	if params.Body != nil {
		body, err := params.Body.profile()
		if err != nil {
			return nil, err
		}
		bmr, err := metrics.BMR(body.WeightKg, body.HeightCm, body.Age, body.Sex)
		if err != nil {
			return nil, err
		}
		multiplier, err := metrics.ActivityMultiplier(body.ActivityLevel)
		if err != nil {
			return nil, err
		}
		maintenance := metrics.TDEE(bmr, multiplier)
		balance := metrics.SurplusOrDeficit(totals.Calories, maintenance)
		report.Maintenance = &maintenance
		report.MaintenanceBalance = &balance
	}

	return s.createJSONResponse(report)
}

func (s *NutriServer) handleResetDaily(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ResetDay(); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"totals": models.NutrientVector{},
	})
}

func (s *NutriServer) parseDate(value string) (time.Time, error) {
	if value == "" {
		return storage.Day(s.now()), nil
	}
	d, err := storage.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return d, nil
}

func (s *NutriServer) handleSaveToday(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SaveParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDate(params.Date)
	if err != nil {
		return nil, err
	}

	snap, err := sess.SaveDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to save day: %w", err)
	}
	return s.createJSONResponse(snap)
}

func (s *NutriServer) handleGetHistory(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params HistoryParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	// Set defaults
	days := defaultHistoryDays
	if params.Days != nil {
		days = *params.Days
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", ErrInvalidParams)
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	reference, err := s.parseDate(params.ReferenceDate)
	if err != nil {
		return nil, err
	}

	snaps, err := sess.History(ctx, reference, days)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve history: %w", err)
	}
	if snaps == nil {
		snaps = []models.Snapshot{}
	}

	return s.createJSONResponse(HistoryReport{
		From:            reference.AddDate(0, 0, -days).Format("2006-01-02"),
		Days:            days,
		Snapshots:       snaps,
		AverageCalories: optional(storage.Average(snaps, storage.FieldCalories)),
		AverageProtein:  optional(storage.Average(snaps, storage.FieldProtein)),
		AverageCarbs:    optional(storage.Average(snaps, storage.FieldCarbs)),
		WeeklyDelta:     storage.WeeklyDelta(snaps),
	})
}

func (s *NutriServer) handleCalculateBMI(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params BMIParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight_kg must be positive", ErrInvalidParams)
	}

	bmi, err := metrics.BMI(params.WeightKg, params.HeightCm)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(BMIResult{BMI: bmi, Category: metrics.ClassifyBMI(bmi)})
}

func (p BodyParams) profile() (models.BodyProfile, error) {
	if p.WeightKg <= 0 || p.HeightCm <= 0 || p.Age < 0 {
		return models.BodyProfile{}, fmt.Errorf("%w: weight_kg and height_cm must be positive and age must not be negative", ErrInvalidParams)
	}
	sex, err := metrics.ParseSex(p.Sex)
	if err != nil {
		return models.BodyProfile{}, err
	}
	level, err := metrics.ParseActivityLevel(p.ActivityLevel)
	if err != nil {
		return models.BodyProfile{}, err
	}
	return models.BodyProfile{
		WeightKg:      p.WeightKg,
		HeightCm:      p.HeightCm,
		Age:           p.Age,
		Sex:           sex,
		ActivityLevel: level,
	}, nil
}

func recommend(params TargetParams) (models.Recommendation, error) {
	body, err := params.Body.profile()
	if err != nil {
		return models.Recommendation{}, err
	}
	goal, err := metrics.ParseGoalType(params.GoalType)
	if err != nil {
		return models.Recommendation{}, err
	}
	return metrics.Recommend(body, goal)
}

func (s *NutriServer) handleCalculateTargets(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TargetParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	rec, err := recommend(params)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(rec)
}

func (s *NutriServer) handleApplyRecommendation(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TargetParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	rec, err := recommend(params)
	if err != nil {
		return nil, err
	}

	goals, err := sess.ApplyRecommendation(rec)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"recommendation": rec,
		"goals":          goals,
	})
}

func (s *NutriServer) handleSetGoals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GoalParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.CalorieGoal < 0 || params.ProteinGoal < 0 || params.CarbGoal < 0 {
		return nil, fmt.Errorf("%w: goals must not be negative", ErrInvalidParams)
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}

	goals, err := sess.SetGoals(models.GoalProfile{
		CalorieGoal: params.CalorieGoal,
		ProteinGoal: params.ProteinGoal,
		CarbGoal:    params.CarbGoal,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(goals)
}

func (s *NutriServer) handleGetGoals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(params.SessionID)
	if err != nil {
		return nil, err
	}
	goals, err := sess.Goals()
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(goals)
}

func (s *NutriServer) handleCreateSession(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	goals, err := sess.Goals()
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"session_id": sess.ID,
		"goals":      goals,
	})
}

func (s *NutriServer) handleEndSession(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.SessionID == "" || params.SessionID == session.DefaultID {
		return nil, fmt.Errorf("%w: session_id of a created session is required", ErrInvalidParams)
	}

	if err := s.sessions.Close(params.SessionID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"session_id": params.SessionID,
		"closed":     true,
	})
}

func (s *NutriServer) registerTools() {
	s.tools = map[string]toolHandler{
		"list_dishes":          s.handleListDishes,
		"calculate_nutrition":  s.handleCalculateNutrition,
		"build_recipe":         s.handleBuildRecipe,
		"log_dish":             s.handleLogDish,
		"log_recipe":           s.handleLogRecipe,
		"get_daily":            s.handleGetDaily,
		"reset_daily":          s.handleResetDaily,
		"save_today":           s.handleSaveToday,
		"get_history":          s.handleGetHistory,
		"calculate_bmi":        s.handleCalculateBMI,
		"calculate_targets":    s.handleCalculateTargets,
		"apply_recommendation": s.handleApplyRecommendation,
		"set_goals":            s.handleSetGoals,
		"get_goals":            s.handleGetGoals,
		"create_session":       s.handleCreateSession,
		"end_session":          s.handleEndSession,
	}

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	log.Printf("Registered tools: %v", names)
}
