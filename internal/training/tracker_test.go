package training

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/realtime"
	"github.com/meltforce/trainwise/internal/storage"
	"github.com/meltforce/trainwise/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.SessionProgress
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.SessionProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func newTestTracker() (*Tracker, *memory.Store, *recordingPublisher) {
	store := memory.New()
	pub := &recordingPublisher{}
	tr := NewTracker(store, pub, testLogger())
	tr.now = func() time.Time { return testNow }
	return tr, store, pub
}

func TestTrackerSessionLifecycle(t *testing.T) {
	tr, store, pub := newTestTracker()
	ctx := context.Background()

	s, err := tr.StartSession(ctx, "u1", "Push day", []models.ExerciseExecution{
		{ExerciseID: "Bench Press", TargetSets: 3},
		{ExerciseID: "dips", TargetSets: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, s.Status)
	require.Len(t, s.Exercises, 2)
	assert.Equal(t, "bench_press", s.Exercises[0].ExerciseID)
	assert.NotEqual(t, uuid.Nil, s.Exercises[0].ID)

	bench := s.Exercises[0].ID
	_, err = tr.LogSet(ctx, "u1", s.ID, bench, models.ExerciseSet{WeightKg: 80, Reps: 8, RPE: 7, Completed: true})
	require.NoError(t, err)
	set2, err := tr.LogSet(ctx, "u1", s.ID, bench, models.ExerciseSet{WeightKg: 85, Reps: 6, RPE: 9, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, 2, set2.SetNumber)
	_, err = tr.LogSet(ctx, "u1", s.ID, bench, models.ExerciseSet{WeightKg: 90, Reps: 2, RPE: 10})
	require.NoError(t, err)

	require.Len(t, pub.events, 3)
	assert.Equal(t, 2, pub.events[1].CompletedSets)
	assert.Equal(t, 2, pub.events[2].CompletedSets)
	assert.Equal(t, "bench_press", pub.events[0].ExerciseID)

	done, err := tr.FinishSession(ctx, "u1", s.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Status)
	require.NotNil(t, done.EndedAt)
	assert.InDelta(t, 80*8+85*6, done.TotalVolume, 1e-9)
	assert.InDelta(t, 8.0, done.AverageIntensity, 1e-9)
	assert.Equal(t, 8.0, done.RPE)

	stored, err := store.GetWorkoutSession(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, stored.Status)
	assert.InDelta(t, done.TotalVolume, stored.TotalVolume, 1e-9)

	_, err = tr.LogSet(ctx, "u1", s.ID, bench, models.ExerciseSet{Reps: 5, RPE: 5})
	assert.True(t, errors.Is(err, ErrSessionClosed))
	_, err = tr.FinishSession(ctx, "u1", s.ID, 8)
	assert.True(t, errors.Is(err, ErrSessionClosed))
	_, err = tr.SkipSession(ctx, "u1", s.ID)
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestTrackerValidation(t *testing.T) {
	tr, _, _ := newTestTracker()
	ctx := context.Background()

	s, err := tr.StartSession(ctx, "u1", "", []models.ExerciseExecution{{ExerciseID: "squat"}})
	require.NoError(t, err)
	exec := s.Exercises[0].ID
	negative := -1.0

	tests := []struct {
		name string
		set  models.ExerciseSet
	}{
		{"rpe above range", models.ExerciseSet{Reps: 5, RPE: 11}},
		{"rpe below range", models.ExerciseSet{Reps: 5, RPE: -0.5}},
		{"negative reps", models.ExerciseSet{Reps: -1}},
		{"negative weight", models.ExerciseSet{Reps: 5, WeightKg: -10}},
		{"negative rir", models.ExerciseSet{Reps: 5, RIR: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.LogSet(ctx, "u1", s.ID, exec, tt.set)
			assert.True(t, errors.Is(err, ErrInvalid), err)
		})
	}

	_, err = tr.LogSet(ctx, "u1", s.ID, uuid.New(), models.ExerciseSet{Reps: 5})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = tr.FinishSession(ctx, "u1", s.ID, 10.5)
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = tr.StartSession(ctx, "u1", "", []models.ExerciseExecution{{ExerciseID: "  "}})
	assert.True(t, errors.Is(err, ErrInvalid))
}

// Sessions belong to one user; another user's id finds nothing.
func TestTrackerOwnership(t *testing.T) {
	tr, _, _ := newTestTracker()
	ctx := context.Background()

	s, err := tr.StartSession(ctx, "u1", "", []models.ExerciseExecution{{ExerciseID: "squat"}})
	require.NoError(t, err)

	_, err = tr.LogSet(ctx, "u2", s.ID, s.Exercises[0].ID, models.ExerciseSet{Reps: 5})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = tr.FinishSession(ctx, "u2", s.ID, 5)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTrackerSkipAndPlan(t *testing.T) {
	tr, store, _ := newTestTracker()
	ctx := context.Background()

	s, err := tr.StartSession(ctx, "u1", "Legs", nil)
	require.NoError(t, err)
	skipped, err := tr.SkipSession(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionSkipped, skipped.Status)

	_, err = tr.PlanWorkout(ctx, "u1", "Legs", time.Time{})
	assert.True(t, errors.Is(err, ErrInvalid))

	p, err := tr.PlanWorkout(ctx, "u1", " Legs ", testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "Legs", p.Name)

	n, err := store.CountPlannedWorkouts(ctx, "u1", testNow, testNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// The analyzer reads what the tracker wrote.
func TestTrackerFeedsAnalyzer(t *testing.T) {
	tr, store, _ := newTestTracker()
	ctx := context.Background()

	s, err := tr.StartSession(ctx, "u1", "", []models.ExerciseExecution{{ExerciseID: "squat"}})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = tr.LogSet(ctx, "u1", s.ID, s.Exercises[0].ID, models.ExerciseSet{WeightKg: 100, Reps: 5, RPE: 8, Completed: true})
		require.NoError(t, err)
	}
	_, err = tr.FinishSession(ctx, "u1", s.ID, 8)
	require.NoError(t, err)

	a := NewAnalyzer(store, testLogger())
	a.now = func() time.Time { return testNow.Add(time.Hour) }
	lm, err := a.VolumeLandmarks(ctx, "u1", models.MuscleLegs)
	require.NoError(t, err)
	assert.Equal(t, 15.0, lm.CurrentVolume)
	assert.Equal(t, 15.0, lm.MEV)
}
