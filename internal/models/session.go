package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	SessionPlanned    SessionStatus = "planned"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionSkipped    SessionStatus = "skipped"
)

// WorkoutSession is one training occurrence owned by a single user.
type WorkoutSession struct {
	ID               uuid.UUID           `json:"id"`
	UserID           string              `json:"user_id"`
	Name             string              `json:"name,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	EndedAt          *time.Time          `json:"ended_at,omitempty"`
	Status           SessionStatus       `json:"status"`
	Exercises        []ExerciseExecution `json:"exercises"`
	TotalVolume      float64             `json:"total_volume"`
	AverageIntensity float64             `json:"average_intensity"`
	RPE              float64             `json:"rpe"`
}

// ExerciseExecution is one exercise performed within a session.
// Sets are stored in exercise_sets and attached on read.
type ExerciseExecution struct {
	ID         uuid.UUID     `json:"id"`
	ExerciseID string        `json:"exercise_id"`
	Name       string        `json:"name"`
	TargetSets int           `json:"target_sets"`
	Sets       []ExerciseSet `json:"sets,omitempty"`
}

// ExerciseSet is one performed set. Only Completed may change after insert.
type ExerciseSet struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	ExecutionID uuid.UUID `json:"execution_id"`
	UserID      string    `json:"user_id"`
	SetNumber   int       `json:"set_number"`
	WeightKg    float64   `json:"weight_kg"`
	Reps        int       `json:"reps"`
	RIR         *float64  `json:"rir,omitempty"`
	RPE         float64   `json:"rpe"`
	Completed   bool      `json:"completed"`
	PerformedAt time.Time `json:"performed_at"`
}

// CompletedSets returns all completed sets across the session's exercises.
func (s *WorkoutSession) CompletedSets() []ExerciseSet {
	var out []ExerciseSet
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				out = append(out, set)
			}
		}
	}
	return out
}

// Execution returns the exercise execution with the given id, or nil.
func (s *WorkoutSession) Execution(id uuid.UUID) *ExerciseExecution {
	for i := range s.Exercises {
		if s.Exercises[i].ID == id {
			return &s.Exercises[i]
		}
	}
	return nil
}

// PlannedWorkout is a scheduled session used as the adherence denominator.
type PlannedWorkout struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	ScheduledFor time.Time `json:"scheduled_for"`
}
