package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

// InsertRecommendations batch-inserts generated recommendations as new rows.
func (db *DB) InsertRecommendations(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	query := `INSERT INTO user_recommendations (id, user_id, type, priority, title, description,
		reasoning, action_url, tags, created_at) VALUES `
	args := make([]any, 0, len(recs)*10)
	valueStrings := make([]string, 0, len(recs))

	for i, r := range recs {
		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		args = append(args, r.ID, r.UserID, r.Type, string(r.Priority), r.Title, r.Description,
			r.Reasoning, r.ActionURL, tags, r.CreatedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting recommendations: %w", err)
	}
	return nil
}

// ListActiveRecommendations returns non-dismissed recommendations, newest first.
func (db *DB) ListActiveRecommendations(ctx context.Context, userID string) ([]models.Recommendation, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, type, priority, title, description, reasoning, action_url, tags,
		 dismissed, completed, completed_at, created_at
		 FROM user_recommendations
		 WHERE user_id = $1 AND NOT dismissed
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	defer rows.Close()

	var result []models.Recommendation
	for rows.Next() {
		var r models.Recommendation
		var priority string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &priority, &r.Title, &r.Description,
			&r.Reasoning, &r.ActionURL, &r.Tags, &r.Dismissed, &r.Completed, &r.CompletedAt,
			&r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		r.Priority = models.Priority(priority)
		result = append(result, r)
	}
	return result, rows.Err()
}

// DismissRecommendation flags a recommendation as dismissed.
func (db *DB) DismissRecommendation(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE user_recommendations SET dismissed = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("dismissing recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteRecommendation flags a recommendation as completed at the given time.
func (db *DB) CompleteRecommendation(ctx context.Context, id uuid.UUID, userID string, at time.Time) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE user_recommendations SET completed = TRUE, completed_at = $3
		 WHERE id = $1 AND user_id = $2`,
		id, userID, at)
	if err != nil {
		return fmt.Errorf("completing recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
