package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

// InsertWorkoutSession inserts a session with its exercise list.
func (db *DB) InsertWorkoutSession(ctx context.Context, s models.WorkoutSession) error {
	exercises, err := marshalExercises(s.Exercises)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, name, started_at, ended_at, status, exercises,
		 total_volume, average_intensity, rpe)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.UserID, s.Name, s.StartedAt, s.EndedAt, string(s.Status), exercises,
		s.TotalVolume, s.AverageIntensity, s.RPE)
	if err != nil {
		return fmt.Errorf("inserting workout session: %w", err)
	}
	return nil
}

// UpdateWorkoutSession writes the mutable fields of a session.
func (db *DB) UpdateWorkoutSession(ctx context.Context, s models.WorkoutSession) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions
		 SET status = $3, ended_at = $4, total_volume = $5, average_intensity = $6, rpe = $7
		 WHERE id = $1 AND user_id = $2`,
		s.ID, s.UserID, string(s.Status), s.EndedAt, s.TotalVolume, s.AverageIntensity, s.RPE)
	if err != nil {
		return fmt.Errorf("updating workout session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertExerciseSet records one performed set.
func (db *DB) InsertExerciseSet(ctx context.Context, set models.ExerciseSet) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_sets (id, session_id, execution_id, user_id, set_number,
		 weight_kg, reps, rir, rpe, completed, performed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		set.ID, set.SessionID, set.ExecutionID, set.UserID, set.SetNumber,
		set.WeightKg, set.Reps, set.RIR, set.RPE, set.Completed, set.PerformedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise set: %w", err)
	}
	return nil
}

// GetWorkoutSession retrieves a single session with its sets attached.
func (db *DB) GetWorkoutSession(ctx context.Context, id uuid.UUID, userID string) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, started_at, ended_at, status, exercises,
		 total_volume, average_intensity, rpe
		 FROM workout_sessions
		 WHERE id = $1 AND user_id = $2`,
		id, userID)

	s, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("querying workout session: %w", notFound(err))
	}

	sessions := []models.WorkoutSession{*s}
	if err := db.attachSets(ctx, sessions); err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// QueryWorkoutSessions retrieves sessions started in [start, end), oldest first.
func (db *DB) QueryWorkoutSessions(ctx context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, started_at, ended_at, status, exercises,
		 total_volume, average_intensity, rpe
		 FROM workout_sessions
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workout sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout session: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachSets(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// attachSets loads exercise_sets for the sessions and appends each set to
// its execution. Sets whose execution is not on the session are dropped.
func (db *DB) attachSets(ctx context.Context, sessions []models.WorkoutSession) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	byID := make(map[uuid.UUID]*models.WorkoutSession, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID.String()
		byID[sessions[i].ID] = &sessions[i]
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, execution_id, user_id, set_number, weight_kg, reps,
		 rir, rpe, completed, performed_at
		 FROM exercise_sets
		 WHERE session_id = ANY($1::uuid[])
		 ORDER BY performed_at ASC, set_number ASC`,
		ids)
	if err != nil {
		return fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var set models.ExerciseSet
		if err := rows.Scan(&set.ID, &set.SessionID, &set.ExecutionID, &set.UserID, &set.SetNumber,
			&set.WeightKg, &set.Reps, &set.RIR, &set.RPE, &set.Completed, &set.PerformedAt); err != nil {
			return fmt.Errorf("scanning exercise set: %w", err)
		}
		s, ok := byID[set.SessionID]
		if !ok {
			continue
		}
		if ex := s.Execution(set.ExecutionID); ex != nil {
			ex.Sets = append(ex.Sets, set)
		}
	}
	return rows.Err()
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var status string
	var exercises []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.StartedAt, &s.EndedAt, &status, &exercises,
		&s.TotalVolume, &s.AverageIntensity, &s.RPE); err != nil {
		return nil, err
	}
	s.Status = models.SessionStatus(status)
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises: %w", err)
		}
	}
	return &s, nil
}

// marshalExercises encodes the execution list without sets; sets live in
// their own table.
func marshalExercises(exercises []models.ExerciseExecution) ([]byte, error) {
	stripped := make([]models.ExerciseExecution, len(exercises))
	for i, ex := range exercises {
		ex.Sets = nil
		stripped[i] = ex
	}
	data, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}
	return data, nil
}

// InsertPlannedWorkout schedules a workout.
func (db *DB) InsertPlannedWorkout(ctx context.Context, p models.PlannedWorkout) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO planned_workouts (id, user_id, name, scheduled_for) VALUES ($1,$2,$3,$4)`,
		p.ID, p.UserID, p.Name, p.ScheduledFor)
	if err != nil {
		return fmt.Errorf("inserting planned workout: %w", err)
	}
	return nil
}

// CountPlannedWorkouts counts workouts scheduled in [start, end).
func (db *DB) CountPlannedWorkouts(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM planned_workouts
		 WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for < $3`,
		userID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting planned workouts: %w", err)
	}
	return n, nil
}
