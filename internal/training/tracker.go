package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/realtime"
)

// ErrSessionClosed is returned when a session is no longer in progress.
var ErrSessionClosed = errors.New("session is not in progress")

// SessionStore persists session lifecycle changes.
type SessionStore interface {
	InsertWorkoutSession(ctx context.Context, s models.WorkoutSession) error
	UpdateWorkoutSession(ctx context.Context, s models.WorkoutSession) error
	InsertExerciseSet(ctx context.Context, set models.ExerciseSet) error
	GetWorkoutSession(ctx context.Context, id uuid.UUID, userID string) (*models.WorkoutSession, error)
	InsertPlannedWorkout(ctx context.Context, p models.PlannedWorkout) error
}

// Tracker drives a session from start to finish. The session id is always
// passed explicitly; the tracker holds no per-user state.
type Tracker struct {
	store     SessionStore
	publisher realtime.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewTracker creates a tracker. A nil publisher drops progress events.
func NewTracker(store SessionStore, publisher realtime.Publisher, logger *slog.Logger) *Tracker {
	if publisher == nil {
		publisher = realtime.Noop{}
	}
	return &Tracker{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// StartSession creates an in-progress session with the given exercises.
func (t *Tracker) StartSession(ctx context.Context, userID, name string, exercises []models.ExerciseExecution) (*models.WorkoutSession, error) {
	execs := make([]models.ExerciseExecution, 0, len(exercises))
	for i, ex := range exercises {
		ex.ExerciseID = models.NormalizeExerciseID(ex.ExerciseID)
		if ex.ExerciseID == "" {
			return nil, fmt.Errorf("%w: exercise %d has no exercise_id", ErrInvalid, i)
		}
		if ex.TargetSets < 0 {
			return nil, fmt.Errorf("%w: exercise %d has negative target_sets", ErrInvalid, i)
		}
		if ex.ID == uuid.Nil {
			ex.ID = uuid.New()
		}
		if ex.Name == "" {
			ex.Name = ex.ExerciseID
		}
		ex.Sets = nil
		execs = append(execs, ex)
	}

	s := models.WorkoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		StartedAt: t.now().UTC(),
		Status:    models.SessionInProgress,
		Exercises: execs,
	}
	if err := t.store.InsertWorkoutSession(ctx, s); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	t.logger.Info("session started", "user", userID, "session", s.ID, "exercises", len(execs))
	return &s, nil
}

// LogSet records a set against an exercise of an in-progress session and
// broadcasts the new progress.
func (t *Tracker) LogSet(ctx context.Context, userID string, sessionID, executionID uuid.UUID, set models.ExerciseSet) (*models.ExerciseSet, error) {
	if err := validateSet(set); err != nil {
		return nil, err
	}

	s, err := t.store.GetWorkoutSession(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Status != models.SessionInProgress {
		return nil, ErrSessionClosed
	}
	exec := s.Execution(executionID)
	if exec == nil {
		return nil, fmt.Errorf("%w: session has no exercise execution %s", ErrInvalid, executionID)
	}

	set.ID = uuid.New()
	set.SessionID = s.ID
	set.ExecutionID = exec.ID
	set.UserID = userID
	if set.SetNumber <= 0 {
		set.SetNumber = len(exec.Sets) + 1
	}
	if set.PerformedAt.IsZero() {
		set.PerformedAt = t.now().UTC()
	}
	if err := t.store.InsertExerciseSet(ctx, set); err != nil {
		return nil, fmt.Errorf("log set: %w", err)
	}

	completed := len(s.CompletedSets())
	if set.Completed {
		completed++
	}
	t.publisher.Publish(ctx, realtime.SessionProgress{
		UserID:        userID,
		SessionID:     s.ID,
		ExecutionID:   exec.ID,
		ExerciseID:    exec.ExerciseID,
		SetNumber:     set.SetNumber,
		WeightKg:      set.WeightKg,
		Reps:          set.Reps,
		RPE:           set.RPE,
		CompletedSets: completed,
		At:            set.PerformedAt,
	})
	return &set, nil
}

// FinishSession completes a session and stores its totals: volume is the sum
// of weight times reps and intensity the mean RPE, both over completed sets.
func (t *Tracker) FinishSession(ctx context.Context, userID string, sessionID uuid.UUID, rpe float64) (*models.WorkoutSession, error) {
	if err := validateRPE(rpe); err != nil {
		return nil, err
	}

	s, err := t.store.GetWorkoutSession(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Status != models.SessionInProgress {
		return nil, ErrSessionClosed
	}

	sets := s.CompletedSets()
	var volume, intensity float64
	for _, set := range sets {
		volume += set.WeightKg * float64(set.Reps)
		intensity += set.RPE
	}
	if len(sets) > 0 {
		intensity /= float64(len(sets))
	}

	ended := t.now().UTC()
	s.Status = models.SessionCompleted
	s.EndedAt = &ended
	s.TotalVolume = volume
	s.AverageIntensity = intensity
	s.RPE = rpe
	if err := t.store.UpdateWorkoutSession(ctx, *s); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	t.logger.Info("session finished", "user", userID, "session", s.ID, "volume", volume, "sets", len(sets))
	return s, nil
}

// SkipSession marks a planned or in-progress session as skipped.
func (t *Tracker) SkipSession(ctx context.Context, userID string, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	s, err := t.store.GetWorkoutSession(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Status == models.SessionCompleted || s.Status == models.SessionSkipped {
		return nil, ErrSessionClosed
	}

	ended := t.now().UTC()
	s.Status = models.SessionSkipped
	s.EndedAt = &ended
	if err := t.store.UpdateWorkoutSession(ctx, *s); err != nil {
		return nil, fmt.Errorf("skip session: %w", err)
	}
	return s, nil
}

// PlanWorkout schedules a workout. Planned workouts feed the adherence rate.
func (t *Tracker) PlanWorkout(ctx context.Context, userID, name string, scheduledFor time.Time) (*models.PlannedWorkout, error) {
	if scheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_for is required", ErrInvalid)
	}
	p := models.PlannedWorkout{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		ScheduledFor: scheduledFor.UTC(),
	}
	if err := t.store.InsertPlannedWorkout(ctx, p); err != nil {
		return nil, fmt.Errorf("plan workout: %w", err)
	}
	return &p, nil
}

func validateRPE(rpe float64) error {
	if rpe < 0 || rpe > 10 {
		return fmt.Errorf("%w: rpe %.1f outside 0-10", ErrInvalid, rpe)
	}
	return nil
}

func validateSet(set models.ExerciseSet) error {
	if err := validateRPE(set.RPE); err != nil {
		return err
	}
	if set.Reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrInvalid)
	}
	if set.WeightKg < 0 {
		return fmt.Errorf("%w: weight_kg must not be negative", ErrInvalid)
	}
	if set.RIR != nil && *set.RIR < 0 {
		return fmt.Errorf("%w: rir must not be negative", ErrInvalid)
	}
	return nil
}
