// Package periodization builds macro, meso and microcycle plans.
package periodization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"go.uber.org/multierr"
)

const (
	week = 7 * 24 * time.Hour

	mesocycleWeeks = 4

	// MaxWeeks bounds a single plan.
	MaxWeeks = 104
)

// ErrInvalid marks plan parameters that failed validation.
var ErrInvalid = errors.New("invalid plan parameters")

// CycleStore persists generated cycles.
type CycleStore interface {
	InsertCycle(ctx context.Context, c models.PeriodizationCycle) error
	InsertTrainingPlan(ctx context.Context, p models.TrainingPlan) error
	ListCycles(ctx context.Context, userID string) ([]models.PeriodizationCycle, error)
}

// Generator creates and stores periodization plans.
type Generator struct {
	store  CycleStore
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerator creates a generator over store.
func NewGenerator(store CycleStore, logger *slog.Logger) *Generator {
	return &Generator{store: store, logger: logger, now: time.Now}
}

// Generate builds a plan of the given length starting on start's UTC day and
// writes every cycle as its own insert followed by the plan row. There is no
// transaction: on failure the rows already written stay and all insert
// errors are returned together.
func (g *Generator) Generate(ctx context.Context, userID string, goals []string, weeks int, start time.Time) (*models.Plan, error) {
	if weeks <= 0 || weeks > MaxWeeks {
		return nil, fmt.Errorf("%w: weeks must be between 1 and %d, got %d", ErrInvalid, MaxWeeks, weeks)
	}
	if start.IsZero() {
		start = g.now()
	}
	plan := Build(userID, goals, weeks, start, g.now().UTC())

	var err error
	for _, c := range plan.Cycles() {
		err = multierr.Append(err, g.store.InsertCycle(ctx, c))
	}
	err = multierr.Append(err, g.store.InsertTrainingPlan(ctx, plan.TrainingPlan))
	if err != nil {
		g.logger.Error("periodization plan partially stored",
			"user", userID, "plan", plan.ID, "failures", len(multierr.Errors(err)), "error", err)
		return nil, fmt.Errorf("store periodization plan: %w", err)
	}

	g.logger.Info("periodization plan generated",
		"user", userID, "plan", plan.ID, "weeks", weeks,
		"mesocycles", len(plan.Mesocycles), "microcycles", len(plan.Microcycles))
	return plan, nil
}

// List returns every stored cycle of the user.
func (g *Generator) List(ctx context.Context, userID string) ([]models.PeriodizationCycle, error) {
	cycles, err := g.store.ListCycles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// Build lays out a plan without storing it. Phases are only produced for the
// strength goal; other goals get cycles without phases.
func Build(userID string, goals []string, weeks int, start, createdAt time.Time) *models.Plan {
	start = start.UTC()
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	goals = normalizeGoals(goals)

	planID := uuid.New()
	macro := models.PeriodizationCycle{
		ID:            uuid.New(),
		UserID:        userID,
		PlanID:        planID,
		Type:          models.Macrocycle,
		Name:          fmt.Sprintf("%d-week macrocycle", weeks),
		StartDate:     start,
		EndDate:       start.Add(time.Duration(weeks) * week),
		DurationWeeks: weeks,
		Goals:         goals,
		Phases:        []models.TrainingPhase{},
		CreatedAt:     createdAt,
	}
	if containsGoal(goals, models.GoalStrength) {
		macro.Phases = strengthPhases(start, weeks)
	}

	plan := &models.Plan{
		TrainingPlan: models.TrainingPlan{
			ID:            planID,
			UserID:        userID,
			Name:          planName(goals, weeks),
			Goals:         goals,
			DurationWeeks: weeks,
			MacrocycleID:  macro.ID,
			CreatedAt:     createdAt,
		},
		Macrocycle: macro,
	}

	count := (weeks + mesocycleWeeks - 1) / mesocycleWeeks
	for i := 0; i < count; i++ {
		mesoStart := start.Add(time.Duration(i*mesocycleWeeks) * week)
		meso := models.PeriodizationCycle{
			ID:            uuid.New(),
			UserID:        userID,
			PlanID:        planID,
			ParentID:      &macro.ID,
			Type:          models.Mesocycle,
			Name:          fmt.Sprintf("Mesocycle %d", i+1),
			StartDate:     mesoStart,
			EndDate:       mesoStart.Add(mesocycleWeeks * week),
			DurationWeeks: mesocycleWeeks,
			Goals:         goals,
			Phases:        []models.TrainingPhase{},
			CreatedAt:     createdAt,
		}
		phase, ok := phaseAt(macro.Phases, mesoStart)
		if ok {
			meso.Phases = []models.TrainingPhase{phase}
		}
		plan.Mesocycles = append(plan.Mesocycles, meso)
		mesoID := meso.ID

		for j := 0; j < mesocycleWeeks; j++ {
			microStart := mesoStart.Add(time.Duration(j) * week)
			micro := models.PeriodizationCycle{
				ID:            uuid.New(),
				UserID:        userID,
				PlanID:        planID,
				ParentID:      &mesoID,
				Type:          models.Microcycle,
				Name:          fmt.Sprintf("Mesocycle %d week %d", i+1, j+1),
				StartDate:     microStart,
				EndDate:       microStart.Add(week),
				DurationWeeks: 1,
				Goals:         goals,
				Phases:        []models.TrainingPhase{},
				CreatedAt:     createdAt,
			}
			switch {
			case j == mesocycleWeeks-1:
				micro.Name += " (deload)"
				micro.Phases = []models.TrainingPhase{deloadPhase(phase, ok, microStart)}
			case ok:
				micro.Phases = []models.TrainingPhase{weekOf(phase, microStart)}
			}
			plan.Microcycles = append(plan.Microcycles, micro)
		}
	}
	return plan
}

// strengthPhases splits the macrocycle 40/40/20 into accumulation,
// intensification and realization. Week counts are floored, so a short
// plan can end with uncovered weeks.
func strengthPhases(start time.Time, weeks int) []models.TrainingPhase {
	spans := []struct {
		name         string
		weeks        int
		intensityMin float64
		intensityMax float64
		volume       float64
		focus        []string
		deload       bool
	}{
		{"accumulation", weeks * 4 / 10, 65, 80, 1.2, []string{"hypertrophy", "work_capacity"}, false},
		{"intensification", weeks * 4 / 10, 80, 95, 0.8, []string{"strength"}, false},
		{"realization", weeks * 2 / 10, 90, 105, 0.6, []string{"peaking"}, true},
	}

	phases := make([]models.TrainingPhase, 0, len(spans))
	cursor := start
	for _, s := range spans {
		end := cursor.Add(time.Duration(s.weeks) * week)
		phases = append(phases, models.TrainingPhase{
			Name:             s.name,
			StartDate:        cursor,
			EndDate:          end,
			DurationWeeks:    s.weeks,
			IntensityMin:     s.intensityMin,
			IntensityMax:     s.intensityMax,
			VolumeMultiplier: s.volume,
			Focus:            s.focus,
			Deload:           s.deload,
		})
		cursor = end
	}
	return phases
}

// phaseAt returns the phase whose span contains t.
func phaseAt(phases []models.TrainingPhase, t time.Time) (models.TrainingPhase, bool) {
	for _, p := range phases {
		if !t.Before(p.StartDate) && t.Before(p.EndDate) {
			return p, true
		}
	}
	return models.TrainingPhase{}, false
}

func weekOf(p models.TrainingPhase, start time.Time) models.TrainingPhase {
	p.StartDate = start
	p.EndDate = start.Add(week)
	p.DurationWeeks = 1
	p.Focus = append([]string(nil), p.Focus...)
	return p
}

// deloadPhase halves the parent phase's volume. Without a parent phase the
// baseline multiplier is 1.
func deloadPhase(parent models.TrainingPhase, ok bool, start time.Time) models.TrainingPhase {
	if !ok {
		parent = models.TrainingPhase{Name: "base", VolumeMultiplier: 1}
	}
	p := weekOf(parent, start)
	p.Name = parent.Name + " deload"
	p.VolumeMultiplier = parent.VolumeMultiplier * 0.5
	p.Focus = []string{"recovery"}
	p.Deload = true
	return p
}

func normalizeGoals(goals []string) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

func containsGoal(goals []string, goal string) bool {
	for _, g := range goals {
		if g == goal {
			return true
		}
	}
	return false
}

func planName(goals []string, weeks int) string {
	if len(goals) == 0 {
		return fmt.Sprintf("%d-week plan", weeks)
	}
	return fmt.Sprintf("%d-week %s plan", weeks, strings.Join(goals, "/"))
}
