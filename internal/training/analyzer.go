// Package training derives volume landmarks and training metrics from workout
// history and tracks live sessions.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/trainwise/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	landmarkWindow = 12 * 7 * 24 * time.Hour
	metricsWindow  = 4 * 7 * 24 * time.Hour

	progressionWeeks = 8
)

// ErrInvalid marks caller input that failed validation.
var ErrInvalid = errors.New("invalid input")

// SessionReader is the history the analyzer reads.
type SessionReader interface {
	QueryWorkoutSessions(ctx context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error)
	CountPlannedWorkouts(ctx context.Context, userID string, start, end time.Time) (int, error)
}

// Analyzer computes landmarks and metrics on every call. Nothing is cached.
type Analyzer struct {
	store  SessionReader
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer over store.
func NewAnalyzer(store SessionReader, logger *slog.Logger) *Analyzer {
	return &Analyzer{store: store, logger: logger, now: time.Now}
}

// VolumeLandmarks estimates MEV, MAV and MRV for one muscle group from the
// trailing twelve weeks. Without recorded volume the defaults are returned.
func (a *Analyzer) VolumeLandmarks(ctx context.Context, userID string, group models.MuscleGroup) (models.VolumeLandmarks, error) {
	group, err := models.ParseMuscleGroup(string(group))
	if err != nil {
		return models.VolumeLandmarks{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	end := a.now().UTC()
	sessions, err := a.store.QueryWorkoutSessions(ctx, userID, end.Add(-landmarkWindow), end)
	if err != nil {
		return models.VolumeLandmarks{}, fmt.Errorf("query sessions for landmarks: %w", err)
	}

	return computeLandmarks(group, weeklyVolume(sessions, group)), nil
}

// Metrics aggregates the trailing four weeks. The session fetch, the planned
// count and one landmark estimate per muscle group run concurrently; the first
// failure cancels the others and is returned.
func (a *Analyzer) Metrics(ctx context.Context, userID string) (*models.TrainingMetrics, error) {
	end := a.now().UTC()
	start := end.Add(-metricsWindow)

	var (
		sessions  []models.WorkoutSession
		planned   int
		landmarks = make([]models.VolumeLandmarks, len(models.MuscleGroups))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = a.store.QueryWorkoutSessions(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("query sessions for metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		planned, err = a.store.CountPlannedWorkouts(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("count planned workouts: %w", err)
		}
		return nil
	})
	for i, group := range models.MuscleGroups {
		g.Go(func() error {
			lm, err := a.VolumeLandmarks(gctx, userID, group)
			if err != nil {
				return fmt.Errorf("landmarks for %s: %w", group, err)
			}
			landmarks[i] = lm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &models.TrainingMetrics{
		UserID:       userID,
		ComputedAt:   end,
		WeeklyVolume: make(map[models.MuscleGroup]float64, len(landmarks)),
		Landmarks:    make(map[models.MuscleGroup]models.VolumeLandmarks, len(landmarks)),
	}
	for _, lm := range landmarks {
		m.WeeklyVolume[lm.MuscleGroup] = lm.CurrentVolume
		m.Landmarks[lm.MuscleGroup] = lm
	}
	m.IntensityDistribution = intensityDistribution(sessions)
	m.AdherenceRate = adherenceRate(sessions, planned)
	m.ProgressionRate = progressionRate(sessions)
	m.FatigueIndex = fatigueIndex(sessions)
	m.ReadinessScore = readinessScore(m.FatigueIndex, m.AdherenceRate)

	a.logger.Debug("training metrics computed",
		"user", userID, "sessions", len(sessions), "planned", planned,
		"fatigue", m.FatigueIndex, "readiness", m.ReadinessScore)
	return m, nil
}
