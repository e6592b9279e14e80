package training

import (
	"math"
	"sort"
	"time"

	"github.com/meltforce/trainwise/internal/models"
)

// weekStart returns midnight UTC of the Sunday starting t's week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

type weekTotal struct {
	start time.Time
	reps  float64
}

// weeklyVolume sums completed reps per week for exercises trained by group.
// Every week holding a session appears, even when its total is zero.
// The result is ordered oldest first.
func weeklyVolume(sessions []models.WorkoutSession, group models.MuscleGroup) []weekTotal {
	totals := make(map[time.Time]float64)
	for i := range sessions {
		s := &sessions[i]
		week := weekStart(s.StartedAt)
		if _, ok := totals[week]; !ok {
			totals[week] = 0
		}
		for _, ex := range s.Exercises {
			if !models.Trains(ex.ExerciseID, group) {
				continue
			}
			for _, set := range ex.Sets {
				if set.Completed {
					totals[week] += float64(set.Reps)
				}
			}
		}
	}

	weeks := make([]weekTotal, 0, len(totals))
	for start, reps := range totals {
		weeks = append(weeks, weekTotal{start: start, reps: reps})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].start.Before(weeks[j].start) })
	return weeks
}

func computeLandmarks(group models.MuscleGroup, weeks []weekTotal) models.VolumeLandmarks {
	mev, peak := math.Inf(1), 0.0
	for _, w := range weeks {
		if w.reps > 0 && w.reps < mev {
			mev = w.reps
		}
		if w.reps > peak {
			peak = w.reps
		}
	}
	if peak == 0 {
		return models.DefaultLandmarks(group)
	}

	mrv := peak * 1.2
	recent := weeks
	if len(recent) > progressionWeeks {
		recent = recent[len(recent)-progressionWeeks:]
	}
	progression := make([]float64, len(recent))
	for i, w := range recent {
		progression[i] = w.reps
	}

	return models.VolumeLandmarks{
		MuscleGroup:       group,
		MEV:               mev,
		MAV:               mev + 0.7*(mrv-mev),
		MRV:               mrv,
		CurrentVolume:     weeks[len(weeks)-1].reps,
		WeeklyProgression: progression,
	}
}

// RPE bands: low below 7, moderate from 7 up to 9, high from 9.
func intensityDistribution(sessions []models.WorkoutSession) models.IntensityDistribution {
	var low, moderate, high, total float64
	for i := range sessions {
		for _, set := range sessions[i].CompletedSets() {
			total++
			switch {
			case set.RPE >= 9:
				high++
			case set.RPE >= 7:
				moderate++
			default:
				low++
			}
		}
	}
	if total == 0 {
		return models.IntensityDistribution{}
	}
	return models.IntensityDistribution{
		Low:      low / total * 100,
		Moderate: moderate / total * 100,
		High:     high / total * 100,
	}
}

func adherenceRate(sessions []models.WorkoutSession, planned int) float64 {
	if planned <= 0 {
		return 0
	}
	completed := 0
	for _, s := range sessions {
		if s.Status == models.SessionCompleted {
			completed++
		}
	}
	return float64(completed) / float64(planned)
}

// completedSessions keeps sessions whose totals and RPE are final.
func completedSessions(sessions []models.WorkoutSession) []models.WorkoutSession {
	var out []models.WorkoutSession
	for _, s := range sessions {
		if s.Status == models.SessionCompleted {
			out = append(out, s)
		}
	}
	return out
}

// progressionRate compares the newest and oldest completed sessions.
func progressionRate(sessions []models.WorkoutSession) float64 {
	ordered := completedSessions(sessions)
	if len(ordered) < 2 {
		return 0
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartedAt.Before(ordered[j].StartedAt) })

	oldest, newest := ordered[0].TotalVolume, ordered[len(ordered)-1].TotalVolume
	if oldest == 0 {
		return 0
	}
	return (newest - oldest) / oldest
}

// fatigueIndex is the mean RPE of completed sessions, scaled and capped at 10.
func fatigueIndex(sessions []models.WorkoutSession) float64 {
	sessions = completedSessions(sessions)
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += s.RPE
	}
	return math.Min(sum/float64(len(sessions))*1.2, 10)
}

// readinessScore has no upper bound; adherence above 1 lifts it past 10.
func readinessScore(fatigue, adherence float64) float64 {
	return math.Max(0, 10-fatigue+2*adherence)
}
