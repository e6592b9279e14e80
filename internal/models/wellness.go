package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Training goals understood by the recommendation and periodization rules.
const (
	GoalMuscleGain = "muscle_gain"
	GoalFatLoss    = "fat_loss"
	GoalStrength   = "strength"
	GoalEndurance  = "endurance"
)

// Metric types stored in user_metrics_history.
const (
	MetricWeight        = "weight"
	MetricSleepDuration = "sleep_duration"
)

// Wellness score types stored in wellness_scores.
const (
	ScoreStressLevel = "stress_level"
	ScoreMood        = "mood"
	ScoreEnergy      = "energy"
)

// RecoveryStretching is the recovery session type checked by the stretching rule.
const RecoveryStretching = "stretching"

// UserPreferences holds per-user goals and targets.
type UserPreferences struct {
	UserID         string    `json:"user_id"`
	Goals          []string  `json:"goals"`
	PreferredDays  []string  `json:"preferred_days"`
	WaterGoalMl    float64   `json:"water_goal_ml"`
	SleepGoalHours float64   `json:"sleep_goal_hours"`
	CalorieGoal    float64   `json:"calorie_goal"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultPreferences is substituted whenever preferences cannot be read.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:         userID,
		Goals:          []string{},
		PreferredDays:  []string{},
		WaterGoalMl:    2000,
		SleepGoalHours: 8,
		CalorieGoal:    2000,
	}
}

// HasGoal reports whether the goal list contains goal.
func (p UserPreferences) HasGoal(goal string) bool {
	for _, g := range p.Goals {
		if strings.EqualFold(g, goal) {
			return true
		}
	}
	return false
}

// ParseWeekday accepts a full weekday name or its three-letter
// abbreviation, in any case.
func ParseWeekday(raw string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// PrefersDay reports whether the weekday is one of the preferred training days.
func (p UserPreferences) PrefersDay(day time.Weekday) bool {
	for _, d := range p.PreferredDays {
		if strings.EqualFold(d, day.String()) {
			return true
		}
	}
	return false
}

// MealEntry is a logged meal with its water intake.
type MealEntry struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	WaterMl  float64   `json:"water_ml"`
	EatenAt  time.Time `json:"eaten_at"`
}

// MetricReading is one body metric sample (weight in kg, sleep in hours).
type MetricReading struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WellnessScore is a self-reported 0-10 score.
type WellnessScore struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	ScoreType  string    `json:"score_type"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// JournalEntry is an emotional journal entry.
type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RecoverySession is a logged recovery activity such as stretching.
type RecoverySession struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	SessionType string    `json:"session_type"`
	DurationMin int       `json:"duration_min"`
	PerformedAt time.Time `json:"performed_at"`
}
