package training

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHistory filters a fixed session list by the requested window.
type fakeHistory struct {
	sessions   []models.WorkoutSession
	planned    int
	sessionErr error
	plannedErr error
}

func (f *fakeHistory) QueryWorkoutSessions(ctx context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	var out []models.WorkoutSession
	for _, s := range f.sessions {
		if s.UserID == userID && !s.StartedAt.Before(start) && s.StartedAt.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeHistory) CountPlannedWorkouts(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if f.plannedErr != nil {
		return 0, f.plannedErr
	}
	return f.planned, nil
}

// Wednesday.
var testNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(h *fakeHistory) *Analyzer {
	a := NewAnalyzer(h, testLogger())
	a.now = func() time.Time { return testNow }
	return a
}

// session builds a completed session with one exercise and the given sets.
func session(started time.Time, exerciseID string, sets ...models.ExerciseSet) models.WorkoutSession {
	return models.WorkoutSession{
		ID:        uuid.New(),
		UserID:    "u1",
		StartedAt: started,
		Status:    models.SessionCompleted,
		Exercises: []models.ExerciseExecution{{
			ID:         uuid.New(),
			ExerciseID: exerciseID,
			Sets:       sets,
		}},
	}
}

func reps(n, count int, completed bool) []models.ExerciseSet {
	out := make([]models.ExerciseSet, count)
	for i := range out {
		out[i] = models.ExerciseSet{SetNumber: i + 1, Reps: n, RPE: 8, Completed: completed}
	}
	return out
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 3, 4, 18, 30, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weekStart(tt.in), tt.in.String())
	}
}

func TestVolumeLandmarksDefaults(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{})

	lm, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleChest)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLandmarks(models.MuscleChest), lm)
	assert.NotNil(t, lm.WeeklyProgression)
	assert.Empty(t, lm.WeeklyProgression)
}

func TestVolumeLandmarksUnknownGroup(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{})

	_, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleGroup("core"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestVolumeLandmarksFromHistory(t *testing.T) {
	h := &fakeHistory{sessions: []models.WorkoutSession{
		session(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), "bench_press", reps(10, 3, true)...),
		session(time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), "Bench Press",
			append(reps(10, 2, true), models.ExerciseSet{Reps: 10})...),
		session(time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC), "bench_press", reps(10, 4, true)...),
		// Outside the twelve week window.
		session(time.Date(2025, 11, 1, 18, 0, 0, 0, time.UTC), "bench_press", reps(100, 5, true)...),
	}}
	a := newTestAnalyzer(h)

	lm, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleChest)
	require.NoError(t, err)
	assert.Equal(t, 20.0, lm.MEV)
	assert.InDelta(t, 48.0, lm.MRV, 1e-9)
	assert.InDelta(t, 39.6, lm.MAV, 1e-9)
	assert.Equal(t, 40.0, lm.CurrentVolume)
	assert.Equal(t, []float64{30, 20, 40}, lm.WeeklyProgression)
	assert.LessOrEqual(t, lm.MEV, lm.MAV)
	assert.LessOrEqual(t, lm.MAV, lm.MRV)
}

// A group the exercises never train keeps the defaults even though weeks exist.
func TestVolumeLandmarksUntrainedGroup(t *testing.T) {
	h := &fakeHistory{sessions: []models.WorkoutSession{
		session(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), "bench_press", reps(10, 3, true)...),
		session(time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC), "underwater_basket_weaving", reps(10, 3, true)...),
	}}
	a := newTestAnalyzer(h)

	lm, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleLegs)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLandmarks(models.MuscleLegs), lm)
}

func TestVolumeLandmarksMultiTagExercise(t *testing.T) {
	h := &fakeHistory{sessions: []models.WorkoutSession{
		session(time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC), "deadlift", reps(5, 3, true)...),
	}}
	a := newTestAnalyzer(h)

	for _, g := range []models.MuscleGroup{models.MuscleBack, models.MuscleLegs} {
		lm, err := a.VolumeLandmarks(context.Background(), "u1", g)
		require.NoError(t, err)
		assert.Equal(t, 15.0, lm.CurrentVolume, g)
	}
}

// The latest week counts as current even when it has no volume for the group.
func TestVolumeLandmarksCurrentWeekZero(t *testing.T) {
	h := &fakeHistory{sessions: []models.WorkoutSession{
		session(time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC), "squat", reps(10, 3, true)...),
		session(time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC), "bench_press", reps(10, 3, true)...),
	}}
	a := newTestAnalyzer(h)

	lm, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleLegs)
	require.NoError(t, err)
	assert.Equal(t, 30.0, lm.MEV)
	assert.Equal(t, 0.0, lm.CurrentVolume)
	assert.Equal(t, []float64{30, 0}, lm.WeeklyProgression)
}

func TestVolumeLandmarksProgressionKeepsEightWeeks(t *testing.T) {
	h := &fakeHistory{}
	// Ten consecutive weeks, volume 10, 20, ... 100.
	first := time.Date(2026, 1, 6, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		h.sessions = append(h.sessions, session(first.AddDate(0, 0, 7*i), "squat", reps(10, i+1, true)...))
	}
	a := newTestAnalyzer(h)

	lm, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleLegs)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 40, 50, 60, 70, 80, 90, 100}, lm.WeeklyProgression)
	assert.Equal(t, 10.0, lm.MEV)
	assert.Equal(t, 100.0, lm.CurrentVolume)
}

func TestVolumeLandmarksFetchError(t *testing.T) {
	boom := errors.New("boom")
	a := newTestAnalyzer(&fakeHistory{sessionErr: boom})

	_, err := a.VolumeLandmarks(context.Background(), "u1", models.MuscleBack)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

// Six completed sessions against five planned at RPE 2.5 give adherence 1.2
// and fatigue 3, so readiness lands at 9.4.
func TestMetricsReadinessExceedsPlan(t *testing.T) {
	h := &fakeHistory{planned: 5}
	for i := 0; i < 6; i++ {
		s := session(testNow.AddDate(0, 0, -i-1), "bench_press", reps(10, 1, true)...)
		s.RPE = 2.5
		s.TotalVolume = 1000
		h.sessions = append(h.sessions, s)
	}
	a := newTestAnalyzer(h)

	m, err := a.Metrics(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, m.AdherenceRate, 1e-9)
	assert.InDelta(t, 3.0, m.FatigueIndex, 1e-9)
	assert.InDelta(t, 9.4, m.ReadinessScore, 1e-9)
	assert.Equal(t, testNow, m.ComputedAt)
	assert.Len(t, m.Landmarks, len(models.MuscleGroups))
	assert.Len(t, m.WeeklyVolume, len(models.MuscleGroups))
}

func TestMetricsEmptyHistory(t *testing.T) {
	a := newTestAnalyzer(&fakeHistory{})

	m, err := a.Metrics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.AdherenceRate)
	assert.Equal(t, 0.0, m.ProgressionRate)
	assert.Equal(t, 0.0, m.FatigueIndex)
	assert.Equal(t, 10.0, m.ReadinessScore)
	assert.Equal(t, models.IntensityDistribution{}, m.IntensityDistribution)
	for _, g := range models.MuscleGroups {
		assert.Equal(t, models.DefaultLandmarks(g), m.Landmarks[g])
		assert.Equal(t, 0.0, m.WeeklyVolume[g])
	}
}

func TestMetricsDistributionAndProgression(t *testing.T) {
	sets := []models.ExerciseSet{
		{Reps: 5, RPE: 6, Completed: true},
		{Reps: 5, RPE: 7, Completed: true},
		{Reps: 5, RPE: 8.5, Completed: true},
		{Reps: 5, RPE: 9, Completed: true},
		{Reps: 5, RPE: 10, Completed: true},
		{Reps: 5, RPE: 10},
	}
	older := session(testNow.AddDate(0, 0, -10), "squat", sets[:3]...)
	older.TotalVolume = 1000
	older.RPE = 7
	newer := session(testNow.AddDate(0, 0, -2), "squat", sets[3:]...)
	newer.TotalVolume = 1100
	newer.RPE = 9
	// Returned newest first to check ordering by start.
	a := newTestAnalyzer(&fakeHistory{sessions: []models.WorkoutSession{newer, older}, planned: 4})

	m, err := a.Metrics(context.Background(), "u1")
	require.NoError(t, err)
	d := m.IntensityDistribution
	assert.InDelta(t, 20.0, d.Low, 1e-9)
	assert.InDelta(t, 40.0, d.Moderate, 1e-9)
	assert.InDelta(t, 40.0, d.High, 1e-9)
	assert.InDelta(t, 100.0, d.Low+d.Moderate+d.High, 1e-9)
	assert.InDelta(t, 0.1, m.ProgressionRate, 1e-9)
	assert.InDelta(t, 0.5, m.AdherenceRate, 1e-9)
	assert.InDelta(t, 9.6, m.FatigueIndex, 1e-9)
	assert.InDelta(t, 1.4, m.ReadinessScore, 1e-9)
	assert.Equal(t, 10.0, m.WeeklyVolume[models.MuscleLegs])
}

// Open, planned and skipped sessions have no final volume or RPE and must
// not pull progression or fatigue toward zero.
func TestMetricsIgnoreUnfinishedSessions(t *testing.T) {
	older := session(testNow.AddDate(0, 0, -10), "squat", reps(5, 3, true)...)
	older.TotalVolume = 1000
	older.RPE = 8
	newer := session(testNow.AddDate(0, 0, -5), "squat", reps(5, 3, true)...)
	newer.TotalVolume = 1100
	newer.RPE = 8

	open := session(testNow.AddDate(0, 0, -1), "squat", reps(5, 1, true)...)
	open.Status = models.SessionInProgress
	skipped := session(testNow.AddDate(0, 0, -2), "squat")
	skipped.Status = models.SessionSkipped
	planned := session(testNow.Add(-time.Hour), "squat")
	planned.Status = models.SessionPlanned

	tests := []struct {
		name  string
		extra []models.WorkoutSession
	}{
		{"in progress", []models.WorkoutSession{open}},
		{"skipped newest", []models.WorkoutSession{skipped}},
		{"all unfinished", []models.WorkoutSession{open, skipped, planned}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := append([]models.WorkoutSession{older, newer}, tt.extra...)
			a := newTestAnalyzer(&fakeHistory{sessions: sessions, planned: 2})

			m, err := a.Metrics(context.Background(), "u1")
			require.NoError(t, err)
			assert.InDelta(t, 0.1, m.ProgressionRate, 1e-9)
			assert.InDelta(t, 9.6, m.FatigueIndex, 1e-9)
			assert.InDelta(t, 1.0, m.AdherenceRate, 1e-9)
		})
	}
}

func TestMetricsFetchErrorCancels(t *testing.T) {
	boom := errors.New("planned table missing")
	a := newTestAnalyzer(&fakeHistory{plannedErr: boom})

	_, err := a.Metrics(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestFatigueIndexCapped(t *testing.T) {
	s := []models.WorkoutSession{
		{RPE: 10, Status: models.SessionCompleted},
		{RPE: 9.5, Status: models.SessionCompleted},
	}
	assert.Equal(t, 10.0, fatigueIndex(s))
}

func TestReadinessFloor(t *testing.T) {
	assert.Equal(t, 0.0, readinessScore(10, 0))
	assert.InDelta(t, 12.0, readinessScore(0, 1), 1e-9)
}
