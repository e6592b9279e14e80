package recommend

import (
	"testing"
	"time"

	"github.com/meltforce/trainwise/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateTrainingRules(t *testing.T) {
	m := healthyMetrics()
	chest := m.Landmarks[models.MuscleChest]
	chest.CurrentVolume = 30
	chest.MRV = 24
	m.Landmarks[models.MuscleChest] = chest
	legs := m.Landmarks[models.MuscleLegs]
	legs.CurrentVolume = 4
	m.Landmarks[models.MuscleLegs] = legs
	m.FatigueIndex = 8
	m.ProgressionRate = 0.01

	recs := Evaluate(Inputs{Preferences: models.UserPreferences{}, Metrics: m}, testNow)
	assert.Equal(t, []string{
		"increase_volume:legs",
		"deload:chest",
		models.RecProgramDeload,
		models.RecVaryExercises,
		models.RecJournaling,
		models.RecStretching,
	}, types(recs))
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	prefs := models.UserPreferences{
		Goals:          []string{models.GoalFatLoss},
		WaterGoalMl:    2000,
		SleepGoalHours: 8,
	}
	in := Inputs{
		Preferences: prefs,
		Metrics: func() *models.TrainingMetrics {
			m := healthyMetrics()
			m.FatigueIndex = 7
			m.ProgressionRate = 0.02
			return m
		}(),
		MealsToday: []models.MealEntry{{WaterMl: 1000}, {WaterMl: 400}},
		WeightHistory: []models.MetricReading{
			{Value: 80, RecordedAt: testNow.AddDate(0, 0, -2)},
			{Value: 80.5, RecordedAt: testNow.AddDate(0, 0, -1)},
		},
		StressScores:     []models.WellnessScore{{Value: 9}, {Value: 7}},
		JournalEntries:   []models.JournalEntry{{CreatedAt: testNow.Add(-72 * time.Hour)}},
		SleepHistory:     []models.MetricReading{{Value: 5}, {Value: 7}},
		RecoverySessions: []models.RecoverySession{{SessionType: models.RecoveryStretching, PerformedAt: testNow.Add(-7 * 24 * time.Hour)}},
	}

	// Every value sits exactly on its threshold, so nothing fires.
	assert.Empty(t, Evaluate(in, testNow))
}

func TestEvaluateStretchingNeedsStretchType(t *testing.T) {
	in := Inputs{
		Preferences:      models.UserPreferences{},
		JournalEntries:   []models.JournalEntry{{CreatedAt: testNow}},
		RecoverySessions: []models.RecoverySession{{SessionType: "foam_rolling", PerformedAt: testNow}},
	}
	assert.Equal(t, []string{models.RecStretching}, types(Evaluate(in, testNow)))
}

func TestEvaluatePreferredDayOnly(t *testing.T) {
	prefs := models.UserPreferences{
		Goals:         []string{models.GoalMuscleGain},
		PreferredDays: []string{"Monday"},
	}
	in := Inputs{
		Preferences:      prefs,
		JournalEntries:   []models.JournalEntry{{CreatedAt: testNow}},
		RecoverySessions: []models.RecoverySession{{SessionType: models.RecoveryStretching, PerformedAt: testNow}},
	}
	assert.Empty(t, Evaluate(in, testNow))

	monday := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{models.RecStrengthSession}, types(Evaluate(in, monday)))
}
