package recommend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/metrics"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/storage"
	"github.com/meltforce/trainwise/internal/storage/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Wednesday.
var testNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	m   *models.TrainingMetrics
	err error
}

func (f fakeMetrics) Metrics(context.Context, string) (*models.TrainingMetrics, error) {
	return f.m, f.err
}

type fakeRules struct {
	recs []models.Recommendation
	err  error
}

func (f fakeRules) Recommendations(context.Context, string) ([]models.Recommendation, error) {
	return f.recs, f.err
}

// defaultMetrics is what the analyzer returns for a user with no history.
func defaultMetrics() *models.TrainingMetrics {
	m := &models.TrainingMetrics{
		UserID:       "u1",
		WeeklyVolume: map[models.MuscleGroup]float64{},
		Landmarks:    map[models.MuscleGroup]models.VolumeLandmarks{},
	}
	for _, g := range models.MuscleGroups {
		m.Landmarks[g] = models.DefaultLandmarks(g)
		m.WeeklyVolume[g] = 0
	}
	return m
}

// healthyMetrics trips none of the training rules.
func healthyMetrics() *models.TrainingMetrics {
	m := defaultMetrics()
	for _, g := range models.MuscleGroups {
		lm := m.Landmarks[g]
		lm.CurrentVolume = 12
		m.Landmarks[g] = lm
	}
	m.ProgressionRate = 0.05
	m.FatigueIndex = 4
	return m
}

func newTestGenerator(store *memory.Store, ms MetricsSource, rules RuleSource) *Generator {
	g := NewGenerator(store, store, ms, rules, metrics.NewTestManager(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	g.now = func() time.Time { return testNow }
	return g
}

func types(recs []models.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Type
		if r.Type == models.RecIncreaseVolume || r.Type == models.RecDeload {
			out[i] += ":" + r.Tags[2]
		}
	}
	return out
}

// A user with no data gets increase-volume for every group, hydration,
// vary-exercises, journaling and stretching, high priority first.
func TestGenerateEmptyHistory(t *testing.T) {
	store := memory.New()
	g := newTestGenerator(store, fakeMetrics{m: defaultMetrics()}, nil)

	recs, err := g.Generate(context.Background(), "u1", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"increase_volume:chest",
		"increase_volume:back",
		"increase_volume:legs",
		"increase_volume:shoulders",
		"increase_volume:arms",
		models.RecHydration,
		models.RecVaryExercises,
		models.RecJournaling,
		models.RecStretching,
	}, types(recs))

	for _, r := range recs {
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, testNow, r.CreatedAt)
	}
	assert.Len(t, store.AllRecommendations(), 9)
}

func TestGenerateDefaultCount(t *testing.T) {
	store := memory.New()
	g := newTestGenerator(store, fakeMetrics{m: defaultMetrics()}, nil)

	for _, count := range []int{0, -3} {
		recs, err := g.Generate(context.Background(), "u1", count)
		require.NoError(t, err)
		assert.Len(t, recs, DefaultCount)
		for _, r := range recs {
			assert.Equal(t, models.PriorityHigh, r.Priority)
		}
	}
}

func TestGenerateSortedAndTruncated(t *testing.T) {
	store := memory.New()
	rules := fakeRules{recs: []models.Recommendation{
		{Type: "ai_low", Priority: models.PriorityLow, Title: "low"},
		{Type: "ai_high", Priority: models.PriorityHigh, Title: "high"},
	}}
	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, rules)

	for count := 1; count <= 6; count++ {
		recs, err := g.Generate(context.Background(), "u1", count)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(recs), count)
		for i := 1; i < len(recs); i++ {
			assert.LessOrEqual(t, recs[i-1].Priority.Rank(), recs[i].Priority.Rank())
		}
	}

	recs, err := g.Generate(context.Background(), "u1", 10)
	require.NoError(t, err)
	// External rules follow threshold output within the same priority.
	assert.Equal(t, []string{
		models.RecHydration,
		"ai_high",
		models.RecJournaling,
		models.RecStretching,
		"ai_low",
	}, types(recs))
}

// Repeated calls insert duplicates; nothing is deduplicated.
func TestGenerateDuplicates(t *testing.T) {
	store := memory.New()
	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, nil)

	_, err := g.Generate(context.Background(), "u1", 5)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "u1", 5)
	require.NoError(t, err)

	active, err := g.Active(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, active, 6)
}

// External recommendations arriving with the same id on every call are
// stored under fresh ids, so the second batch does not collide.
func TestGenerateRepeatedExternalIDs(t *testing.T) {
	store := memory.New()
	fixed := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	rules := fakeRules{recs: []models.Recommendation{
		{ID: fixed, Type: "ai_high", Priority: models.PriorityHigh, Title: "high"},
	}}
	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, rules)

	first, err := g.Generate(context.Background(), "u1", 20)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), "u1", 20)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))

	ids := map[uuid.UUID]bool{}
	for _, r := range store.AllRecommendations() {
		assert.NotEqual(t, fixed, r.ID)
		assert.False(t, ids[r.ID], "id %s stored twice", r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, len(first)+len(second))
}

// Every failing input is replaced by an empty default and generation
// still succeeds.
func TestGenerateDegradesOnFetchErrors(t *testing.T) {
	store := memory.New()
	boom := errors.New("relation does not exist")
	for _, method := range []string{
		"GetUserPreferences", "QueryMeals", "QueryMetricHistory",
		"QueryWellnessScores", "QueryJournalEntries", "QueryRecoverySessions",
	} {
		store.FailOn(method, boom)
	}
	g := newTestGenerator(store, fakeMetrics{err: boom}, fakeRules{err: boom})

	recs, err := g.Generate(context.Background(), "u1", 10)
	require.NoError(t, err)
	// Training rules are skipped without metrics.
	assert.Equal(t, []string{models.RecHydration, models.RecJournaling, models.RecStretching}, types(recs))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.mm.CounterDegradedFetches.WithLabelValues("metrics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.mm.CounterDegradedFetches.WithLabelValues("ai_core")))
}

func TestGeneratePersistFailure(t *testing.T) {
	store := memory.New()
	boom := errors.New("insert failed")
	store.FailOn("InsertRecommendations", boom)
	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, nil)

	_, err := g.Generate(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestGenerateReadsHistory(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.UpsertUserPreferences(ctx, models.UserPreferences{
		UserID:         "u1",
		Goals:          []string{models.GoalMuscleGain, models.GoalFatLoss},
		PreferredDays:  []string{"wednesday"},
		WaterGoalMl:    2000,
		SleepGoalHours: 8,
	}))
	require.NoError(t, store.InsertMeal(ctx, models.MealEntry{ID: uuid.New(), UserID: "u1", WaterMl: 1500, EatenAt: testNow.Add(-2 * time.Hour)}))
	require.NoError(t, store.InsertMetricReading(ctx, models.MetricReading{ID: uuid.New(), UserID: "u1", MetricType: models.MetricWeight, Value: 80, RecordedAt: testNow.AddDate(0, 0, -7)}))
	require.NoError(t, store.InsertMetricReading(ctx, models.MetricReading{ID: uuid.New(), UserID: "u1", MetricType: models.MetricWeight, Value: 81, RecordedAt: testNow.AddDate(0, 0, -1)}))
	require.NoError(t, store.InsertMetricReading(ctx, models.MetricReading{ID: uuid.New(), UserID: "u1", MetricType: models.MetricSleepDuration, Value: 6.5, RecordedAt: testNow.Add(-8 * time.Hour)}))
	require.NoError(t, store.InsertWellnessScore(ctx, models.WellnessScore{ID: uuid.New(), UserID: "u1", ScoreType: models.ScoreStressLevel, Value: 9, RecordedAt: testNow.Add(-time.Hour)}))
	require.NoError(t, store.InsertJournalEntry(ctx, models.JournalEntry{ID: uuid.New(), UserID: "u1", CreatedAt: testNow.AddDate(0, 0, -1)}))
	require.NoError(t, store.InsertRecoverySession(ctx, models.RecoverySession{ID: uuid.New(), UserID: "u1", SessionType: models.RecoveryStretching, PerformedAt: testNow.AddDate(0, 0, -2)}))

	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, nil)
	recs, err := g.Generate(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		models.RecMeditation,
		models.RecSleep,
		models.RecStrengthSession,
		models.RecHIITSession,
		models.RecCalorieAdjustment,
	}, types(recs))
}

func TestRecommendationLifecycle(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	g := newTestGenerator(store, fakeMetrics{m: healthyMetrics()}, nil)

	recs, err := g.Generate(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.NoError(t, g.Dismiss(ctx, "u1", recs[0].ID))
	require.NoError(t, g.Complete(ctx, "u1", recs[1].ID))

	active, err := g.Active(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, r := range active {
		assert.NotEqual(t, recs[0].ID, r.ID)
		if r.ID == recs[1].ID {
			assert.True(t, r.Completed)
			require.NotNil(t, r.CompletedAt)
			assert.Equal(t, testNow, *r.CompletedAt)
		}
	}

	err = g.Dismiss(ctx, "u2", recs[2].ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	err = g.Complete(ctx, "u1", uuid.New())
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
