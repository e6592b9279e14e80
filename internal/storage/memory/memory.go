// Package memory is an in-process store with the same methods as
// storage.DB. It backs tests and -demo mode; nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/storage"
)

// ErrDuplicateID is returned when an insert reuses a primary key.
var ErrDuplicateID = errors.New("duplicate id")

// Store holds all rows in maps and slices guarded by one mutex.
type Store struct {
	mu sync.Mutex

	sessions        map[uuid.UUID]models.WorkoutSession
	sets            []models.ExerciseSet
	planned         []models.PlannedWorkout
	cycles          []models.PeriodizationCycle
	plans           []models.TrainingPlan
	meals           []models.MealEntry
	metrics         []models.MetricReading
	scores          []models.WellnessScore
	journal         []models.JournalEntry
	recovery        []models.RecoverySession
	recommendations []models.Recommendation
	preferences     map[string]models.UserPreferences

	failures map[string]error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		sessions:    make(map[uuid.UUID]models.WorkoutSession),
		preferences: make(map[string]models.UserPreferences),
		failures:    make(map[string]error),
	}
}

// FailOn makes every later call of the named method return err.
// Passing a nil err clears the failure.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// InsertWorkoutSession stores a session.
func (s *Store) InsertWorkoutSession(_ context.Context, ws models.WorkoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertWorkoutSession"); err != nil {
		return err
	}
	ws.Exercises = stripSets(ws.Exercises)
	s.sessions[ws.ID] = ws
	return nil
}

// UpdateWorkoutSession replaces the mutable fields of a session.
func (s *Store) UpdateWorkoutSession(_ context.Context, ws models.WorkoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateWorkoutSession"); err != nil {
		return err
	}
	cur, ok := s.sessions[ws.ID]
	if !ok || cur.UserID != ws.UserID {
		return storage.ErrNotFound
	}
	cur.Status = ws.Status
	cur.EndedAt = ws.EndedAt
	cur.TotalVolume = ws.TotalVolume
	cur.AverageIntensity = ws.AverageIntensity
	cur.RPE = ws.RPE
	s.sessions[ws.ID] = cur
	return nil
}

// InsertExerciseSet stores a set.
func (s *Store) InsertExerciseSet(_ context.Context, set models.ExerciseSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertExerciseSet"); err != nil {
		return err
	}
	s.sets = append(s.sets, set)
	return nil
}

// GetWorkoutSession returns a session with its sets attached.
func (s *Store) GetWorkoutSession(_ context.Context, id uuid.UUID, userID string) (*models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetWorkoutSession"); err != nil {
		return nil, err
	}
	ws, ok := s.sessions[id]
	if !ok || ws.UserID != userID {
		return nil, storage.ErrNotFound
	}
	out := s.withSets(ws)
	return &out, nil
}

// QueryWorkoutSessions returns sessions started in [start, end), oldest first.
func (s *Store) QueryWorkoutSessions(_ context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryWorkoutSessions"); err != nil {
		return nil, err
	}
	var out []models.WorkoutSession
	for _, ws := range s.sessions {
		if ws.UserID == userID && inRange(ws.StartedAt, start, end) {
			out = append(out, s.withSets(ws))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (s *Store) withSets(ws models.WorkoutSession) models.WorkoutSession {
	exercises := stripSets(ws.Exercises)
	for _, set := range s.sets {
		if set.SessionID != ws.ID {
			continue
		}
		for i := range exercises {
			if exercises[i].ID == set.ExecutionID {
				exercises[i].Sets = append(exercises[i].Sets, set)
			}
		}
	}
	ws.Exercises = exercises
	return ws
}

func stripSets(in []models.ExerciseExecution) []models.ExerciseExecution {
	out := make([]models.ExerciseExecution, len(in))
	for i, ex := range in {
		ex.Sets = nil
		out[i] = ex
	}
	return out
}

// InsertPlannedWorkout stores a planned workout.
func (s *Store) InsertPlannedWorkout(_ context.Context, p models.PlannedWorkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertPlannedWorkout"); err != nil {
		return err
	}
	s.planned = append(s.planned, p)
	return nil
}

// CountPlannedWorkouts counts workouts scheduled in [start, end).
func (s *Store) CountPlannedWorkouts(_ context.Context, userID string, start, end time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountPlannedWorkouts"); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range s.planned {
		if p.UserID == userID && inRange(p.ScheduledFor, start, end) {
			n++
		}
	}
	return n, nil
}
