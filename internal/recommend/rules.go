package recommend

import (
	"fmt"
	"time"

	"github.com/meltforce/trainwise/internal/models"
)

// Thresholds for the rule set.
const (
	fatigueDeloadThreshold = 7.0
	minProgressionRate     = 0.02
	weightGainThresholdKg  = 0.5
	hydrationShare         = 0.7
	stressThreshold        = 7.0
	sleepShortfallHours    = 1.0
	journalGap             = 3 * 24 * time.Hour
	stretchingGap          = 7 * 24 * time.Hour
)

// Inputs is everything the rules look at. A nil Metrics skips the training
// rules; every other field may be empty.
type Inputs struct {
	Preferences      models.UserPreferences
	Metrics          *models.TrainingMetrics
	MealsToday       []models.MealEntry
	WeightHistory    []models.MetricReading
	StressScores     []models.WellnessScore
	JournalEntries   []models.JournalEntry
	SleepHistory     []models.MetricReading
	RecoverySessions []models.RecoverySession
}

// Evaluate runs every threshold check in a fixed order and returns the
// resulting recommendations unsorted. IDs and timestamps are left empty.
func Evaluate(in Inputs, now time.Time) []models.Recommendation {
	var out []models.Recommendation
	add := func(r models.Recommendation) { out = append(out, r) }

	if m := in.Metrics; m != nil {
		for _, g := range models.MuscleGroups {
			lm, ok := m.Landmarks[g]
			if ok && lm.CurrentVolume < lm.MEV {
				add(models.Recommendation{
					Type:        models.RecIncreaseVolume,
					Priority:    models.PriorityHigh,
					Title:       fmt.Sprintf("Increase %s volume", g),
					Description: fmt.Sprintf("Add a few sets for %s this week to reach your minimum effective volume.", g),
					Reasoning:   fmt.Sprintf("Current weekly volume %.0f is below MEV %.0f.", lm.CurrentVolume, lm.MEV),
					ActionURL:   "/training/landmarks?muscle_group=" + string(g),
					Tags:        []string{"training", "volume", string(g)},
				})
			}
		}
		for _, g := range models.MuscleGroups {
			lm, ok := m.Landmarks[g]
			if ok && lm.CurrentVolume > lm.MRV {
				add(models.Recommendation{
					Type:        models.RecDeload,
					Priority:    models.PriorityHigh,
					Title:       fmt.Sprintf("Deload %s", g),
					Description: fmt.Sprintf("Cut back on %s sets to recover before the next block.", g),
					Reasoning:   fmt.Sprintf("Current weekly volume %.0f exceeds MRV %.0f.", lm.CurrentVolume, lm.MRV),
					ActionURL:   "/training/landmarks?muscle_group=" + string(g),
					Tags:        []string{"training", "recovery", string(g)},
				})
			}
		}
		if m.FatigueIndex > fatigueDeloadThreshold {
			add(models.Recommendation{
				Type:        models.RecProgramDeload,
				Priority:    models.PriorityHigh,
				Title:       "Schedule a deload week",
				Description: "Accumulated fatigue is high. Reduce volume and intensity for a week.",
				Reasoning:   fmt.Sprintf("Fatigue index %.1f is above %.0f.", m.FatigueIndex, fatigueDeloadThreshold),
				ActionURL:   "/periodization",
				Tags:        []string{"training", "recovery"},
			})
		}
		if m.ProgressionRate < minProgressionRate {
			add(models.Recommendation{
				Type:        models.RecVaryExercises,
				Priority:    models.PriorityMedium,
				Title:       "Vary your exercises",
				Description: "Progress has stalled. Swap in new exercise variations or rep ranges.",
				Reasoning:   fmt.Sprintf("Progression rate %.1f%% is below %.0f%%.", m.ProgressionRate*100, minProgressionRate*100),
				Tags:        []string{"training", "progression"},
			})
		}
	}

	prefs := in.Preferences
	if prefs.PrefersDay(now.Weekday()) {
		if prefs.HasGoal(models.GoalMuscleGain) {
			add(models.Recommendation{
				Type:        models.RecStrengthSession,
				Priority:    models.PriorityMedium,
				Title:       "Strength session today",
				Description: "Today is one of your training days. A hypertrophy-focused strength session fits your muscle gain goal.",
				ActionURL:   "/sessions",
				Tags:        []string{"training", models.GoalMuscleGain},
			})
		}
		if prefs.HasGoal(models.GoalFatLoss) {
			add(models.Recommendation{
				Type:        models.RecHIITSession,
				Priority:    models.PriorityMedium,
				Title:       "HIIT session today",
				Description: "Today is one of your training days. A short interval session supports your fat loss goal.",
				ActionURL:   "/sessions",
				Tags:        []string{"training", models.GoalFatLoss},
			})
		}
	}

	if n := len(in.WeightHistory); n >= 2 && prefs.HasGoal(models.GoalFatLoss) {
		gain := in.WeightHistory[n-1].Value - in.WeightHistory[n-2].Value
		if gain > weightGainThresholdKg {
			add(models.Recommendation{
				Type:        models.RecCalorieAdjustment,
				Priority:    models.PriorityMedium,
				Title:       "Adjust your calorie target",
				Description: "Your weight went up since the last reading. Consider trimming daily calories slightly.",
				Reasoning:   fmt.Sprintf("Weight increased by %.1f kg.", gain),
				ActionURL:   "/preferences",
				Tags:        []string{"nutrition", models.GoalFatLoss},
			})
		}
	}

	if prefs.WaterGoalMl > 0 {
		var water float64
		for _, meal := range in.MealsToday {
			water += meal.WaterMl
		}
		if water < hydrationShare*prefs.WaterGoalMl {
			add(models.Recommendation{
				Type:        models.RecHydration,
				Priority:    models.PriorityHigh,
				Title:       "Drink more water",
				Description: "You are behind on today's water intake.",
				Reasoning:   fmt.Sprintf("%.0f ml of %.0f ml goal logged today.", water, prefs.WaterGoalMl),
				ActionURL:   "/meals",
				Tags:        []string{"nutrition", "hydration"},
			})
		}
	}

	if n := len(in.StressScores); n > 0 && in.StressScores[n-1].Value > stressThreshold {
		add(models.Recommendation{
			Type:        models.RecMeditation,
			Priority:    models.PriorityHigh,
			Title:       "Take time to meditate",
			Description: "Your stress level is high. A ten minute breathing or meditation session can help.",
			Reasoning:   fmt.Sprintf("Latest stress level %.0f is above %.0f.", in.StressScores[n-1].Value, stressThreshold),
			Tags:        []string{"wellness", "stress"},
		})
	}

	if !journaledSince(in.JournalEntries, now.Add(-journalGap)) {
		add(models.Recommendation{
			Type:        models.RecJournaling,
			Priority:    models.PriorityMedium,
			Title:       "Write a journal entry",
			Description: "You have not journaled in a few days. A short entry helps track mood and recovery.",
			ActionURL:   "/journal",
			Tags:        []string{"wellness", "journal"},
		})
	}

	if n := len(in.SleepHistory); n > 0 && prefs.SleepGoalHours > 0 {
		latest := in.SleepHistory[n-1].Value
		if latest < prefs.SleepGoalHours-sleepShortfallHours {
			add(models.Recommendation{
				Type:        models.RecSleep,
				Priority:    models.PriorityHigh,
				Title:       "Prioritize sleep tonight",
				Description: "Your last night was well short of your sleep goal.",
				Reasoning:   fmt.Sprintf("Slept %.1f h against a %.1f h goal.", latest, prefs.SleepGoalHours),
				Tags:        []string{"wellness", "sleep"},
			})
		}
	}

	if !stretchedSince(in.RecoverySessions, now.Add(-stretchingGap)) {
		add(models.Recommendation{
			Type:        models.RecStretching,
			Priority:    models.PriorityMedium,
			Title:       "Add a stretching session",
			Description: "No stretching logged this week. Fifteen minutes of mobility work aids recovery.",
			ActionURL:   "/recovery-sessions",
			Tags:        []string{"recovery", "mobility"},
		})
	}

	return out
}

func journaledSince(entries []models.JournalEntry, since time.Time) bool {
	for _, e := range entries {
		if !e.CreatedAt.Before(since) {
			return true
		}
	}
	return false
}

func stretchedSince(sessions []models.RecoverySession, since time.Time) bool {
	for _, s := range sessions {
		if s.SessionType == models.RecoveryStretching && !s.PerformedAt.Before(since) {
			return true
		}
	}
	return false
}
