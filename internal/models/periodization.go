package models

import (
	"time"

	"github.com/google/uuid"
)

// CycleType names the granularity of a periodization cycle.
type CycleType string

const (
	Macrocycle CycleType = "macrocycle"
	Mesocycle  CycleType = "mesocycle"
	Microcycle CycleType = "microcycle"
)

// PeriodizationCycle is a named span of training. ParentID links a
// microcycle to its mesocycle and a mesocycle to its macrocycle.
// EndDate is exclusive.
type PeriodizationCycle struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	PlanID        uuid.UUID       `json:"plan_id"`
	ParentID      *uuid.UUID      `json:"parent_id,omitempty"`
	Type          CycleType       `json:"type"`
	Name          string          `json:"name"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	DurationWeeks int             `json:"duration_weeks"`
	Goals         []string        `json:"goals"`
	Phases        []TrainingPhase `json:"phases"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TrainingPhase is a sub-span of a cycle. Intensity is a percentage of 1RM.
type TrainingPhase struct {
	Name             string    `json:"name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	DurationWeeks    int       `json:"duration_weeks"`
	IntensityMin     float64   `json:"intensity_min"`
	IntensityMax     float64   `json:"intensity_max"`
	VolumeMultiplier float64   `json:"volume_multiplier"`
	Focus            []string  `json:"focus"`
	Deload           bool      `json:"deload"`
}

// TrainingPlan records one generation run and points at its macrocycle.
type TrainingPlan struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Goals         []string  `json:"goals"`
	DurationWeeks int       `json:"duration_weeks"`
	MacrocycleID  uuid.UUID `json:"macrocycle_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Plan is the full output of a periodization run.
type Plan struct {
	TrainingPlan
	Macrocycle  PeriodizationCycle   `json:"macrocycle"`
	Mesocycles  []PeriodizationCycle `json:"mesocycles"`
	Microcycles []PeriodizationCycle `json:"microcycles"`
}

// Cycles returns every cycle of the plan, coarse to fine.
func (p *Plan) Cycles() []PeriodizationCycle {
	out := make([]PeriodizationCycle, 0, 1+len(p.Mesocycles)+len(p.Microcycles))
	out = append(out, p.Macrocycle)
	out = append(out, p.Mesocycles...)
	out = append(out, p.Microcycles...)
	return out
}
