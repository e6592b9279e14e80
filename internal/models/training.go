package models

import "time"

// Default landmarks returned when a muscle group has no recorded volume.
const (
	DefaultMEV = 8.0
	DefaultMAV = 16.0
	DefaultMRV = 24.0
)

// VolumeLandmarks holds the weekly volume thresholds derived for one user and
// muscle group. MEV <= MAV <= MRV holds by construction.
type VolumeLandmarks struct {
	MuscleGroup       MuscleGroup `json:"muscle_group"`
	MEV               float64     `json:"mev"`
	MAV               float64     `json:"mav"`
	MRV               float64     `json:"mrv"`
	CurrentVolume     float64     `json:"current_volume"`
	WeeklyProgression []float64   `json:"weekly_progression"`
}

// DefaultLandmarks returns the fixed landmarks used when there is no history.
func DefaultLandmarks(group MuscleGroup) VolumeLandmarks {
	return VolumeLandmarks{
		MuscleGroup:       group,
		MEV:               DefaultMEV,
		MAV:               DefaultMAV,
		MRV:               DefaultMRV,
		WeeklyProgression: []float64{},
	}
}

// IntensityDistribution holds the percentage of completed sets per RPE band.
type IntensityDistribution struct {
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// TrainingMetrics is an ephemeral snapshot over the trailing four weeks.
//
// AdherenceRate and ReadinessScore are not clamped: adherence exceeds 1 when
// more sessions were completed than planned, which lifts readiness above 10.
type TrainingMetrics struct {
	UserID                string                          `json:"user_id"`
	ComputedAt            time.Time                       `json:"computed_at"`
	WeeklyVolume          map[MuscleGroup]float64         `json:"weekly_volume"`
	IntensityDistribution IntensityDistribution           `json:"intensity_distribution"`
	AdherenceRate         float64                         `json:"adherence_rate"`
	ProgressionRate       float64                         `json:"progression_rate"`
	FatigueIndex          float64                         `json:"fatigue_index"`
	ReadinessScore        float64                         `json:"readiness_score"`
	Landmarks             map[MuscleGroup]VolumeLandmarks `json:"volume_landmarks"`
}
