package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority orders recommendations; high sorts first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort position of a priority. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Recommendation types emitted by the threshold rules.
const (
	RecIncreaseVolume    = "increase_volume"
	RecDeload            = "deload"
	RecProgramDeload     = "program_deload"
	RecVaryExercises     = "vary_exercises"
	RecStrengthSession   = "strength_session"
	RecHIITSession       = "hiit_session"
	RecCalorieAdjustment = "calorie_adjustment"
	RecHydration         = "hydration"
	RecMeditation        = "meditation"
	RecJournaling        = "journaling"
	RecSleep             = "sleep"
	RecStretching        = "stretching"
)

// Recommendation is a generated suggestion. Rows are never deleted; only the
// dismissed and completed flags change after insert.
type Recommendation struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	Priority    Priority   `json:"priority"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reasoning   string     `json:"reasoning,omitempty"`
	ActionURL   string     `json:"action_url,omitempty"`
	Tags        []string   `json:"tags"`
	Dismissed   bool       `json:"dismissed"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
