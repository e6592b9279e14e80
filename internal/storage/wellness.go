package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/trainwise/internal/models"
)

// InsertMeal logs a meal entry.
func (db *DB) InsertMeal(ctx context.Context, m models.MealEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO meal_plans (id, user_id, name, calories, water_ml, eaten_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.UserID, m.Name, m.Calories, m.WaterMl, m.EatenAt)
	if err != nil {
		return fmt.Errorf("inserting meal: %w", err)
	}
	return nil
}

// QueryMeals retrieves meals eaten in [start, end), oldest first.
func (db *DB) QueryMeals(ctx context.Context, userID string, start, end time.Time) ([]models.MealEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, calories, water_ml, eaten_at
		 FROM meal_plans
		 WHERE user_id = $1 AND eaten_at >= $2 AND eaten_at < $3
		 ORDER BY eaten_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying meals: %w", err)
	}
	return collect(rows, "meal", func(r pgx.Rows) (models.MealEntry, error) {
		var m models.MealEntry
		err := r.Scan(&m.ID, &m.UserID, &m.Name, &m.Calories, &m.WaterMl, &m.EatenAt)
		return m, err
	})
}

// InsertMetricReading stores a body metric sample.
func (db *DB) InsertMetricReading(ctx context.Context, m models.MetricReading) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO user_metrics_history (id, user_id, metric_type, value, recorded_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.UserID, m.MetricType, m.Value, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting metric reading: %w", err)
	}
	return nil
}

// QueryMetricHistory retrieves samples of one metric type, oldest first.
func (db *DB) QueryMetricHistory(ctx context.Context, userID, metricType string, start, end time.Time) ([]models.MetricReading, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, metric_type, value, recorded_at
		 FROM user_metrics_history
		 WHERE user_id = $1 AND metric_type = $2 AND recorded_at >= $3 AND recorded_at < $4
		 ORDER BY recorded_at ASC`,
		userID, metricType, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying metric history: %w", err)
	}
	return collect(rows, "metric reading", func(r pgx.Rows) (models.MetricReading, error) {
		var m models.MetricReading
		err := r.Scan(&m.ID, &m.UserID, &m.MetricType, &m.Value, &m.RecordedAt)
		return m, err
	})
}

// InsertWellnessScore stores a self-reported score.
func (db *DB) InsertWellnessScore(ctx context.Context, s models.WellnessScore) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO wellness_scores (id, user_id, score_type, value, recorded_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.UserID, s.ScoreType, s.Value, s.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting wellness score: %w", err)
	}
	return nil
}

// QueryWellnessScores retrieves scores in [start, end), oldest first.
// An empty scoreType matches every type.
func (db *DB) QueryWellnessScores(ctx context.Context, userID, scoreType string, start, end time.Time) ([]models.WellnessScore, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, score_type, value, recorded_at
		 FROM wellness_scores
		 WHERE user_id = $1 AND ($2 = '' OR score_type = $2)
		   AND recorded_at >= $3 AND recorded_at < $4
		 ORDER BY recorded_at ASC`,
		userID, scoreType, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying wellness scores: %w", err)
	}
	return collect(rows, "wellness score", func(r pgx.Rows) (models.WellnessScore, error) {
		var s models.WellnessScore
		err := r.Scan(&s.ID, &s.UserID, &s.ScoreType, &s.Value, &s.RecordedAt)
		return s, err
	})
}

// InsertJournalEntry stores an emotional journal entry.
func (db *DB) InsertJournalEntry(ctx context.Context, e models.JournalEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO emotional_journal (id, user_id, mood, content, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.UserID, e.Mood, e.Content, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// QueryJournalEntries retrieves journal entries in [start, end), oldest first.
func (db *DB) QueryJournalEntries(ctx context.Context, userID string, start, end time.Time) ([]models.JournalEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, mood, content, created_at
		 FROM emotional_journal
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	return collect(rows, "journal entry", func(r pgx.Rows) (models.JournalEntry, error) {
		var e models.JournalEntry
		err := r.Scan(&e.ID, &e.UserID, &e.Mood, &e.Content, &e.CreatedAt)
		return e, err
	})
}

// InsertRecoverySession stores a recovery activity.
func (db *DB) InsertRecoverySession(ctx context.Context, s models.RecoverySession) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO recovery_sessions (id, user_id, session_type, duration_min, performed_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.UserID, s.SessionType, s.DurationMin, s.PerformedAt)
	if err != nil {
		return fmt.Errorf("inserting recovery session: %w", err)
	}
	return nil
}

// QueryRecoverySessions retrieves recovery sessions in [start, end), oldest first.
func (db *DB) QueryRecoverySessions(ctx context.Context, userID string, start, end time.Time) ([]models.RecoverySession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, session_type, duration_min, performed_at
		 FROM recovery_sessions
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		 ORDER BY performed_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying recovery sessions: %w", err)
	}
	return collect(rows, "recovery session", func(r pgx.Rows) (models.RecoverySession, error) {
		var s models.RecoverySession
		err := r.Scan(&s.ID, &s.UserID, &s.SessionType, &s.DurationMin, &s.PerformedAt)
		return s, err
	})
}

// collect drains rows through scan and closes them.
func collect[T any](rows pgx.Rows, noun string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var result []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", noun, err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
