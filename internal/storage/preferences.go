package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/trainwise/internal/models"
)

// GetUserPreferences returns the stored preferences or ErrNotFound.
func (db *DB) GetUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var p models.UserPreferences
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, goals, preferred_days, water_goal_ml, sleep_goal_hours, calorie_goal, updated_at
		 FROM user_preferences WHERE user_id = $1`,
		userID).Scan(&p.UserID, &p.Goals, &p.PreferredDays, &p.WaterGoalMl, &p.SleepGoalHours,
		&p.CalorieGoal, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", notFound(err))
	}
	return &p, nil
}

// UpsertUserPreferences creates or replaces a user's preferences.
func (db *DB) UpsertUserPreferences(ctx context.Context, p models.UserPreferences) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, goals, preferred_days, water_goal_ml, sleep_goal_hours,
			calorie_goal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
			SET goals = EXCLUDED.goals, preferred_days = EXCLUDED.preferred_days,
			    water_goal_ml = EXCLUDED.water_goal_ml, sleep_goal_hours = EXCLUDED.sleep_goal_hours,
			    calorie_goal = EXCLUDED.calorie_goal, updated_at = EXCLUDED.updated_at
	`, p.UserID, nonNil(p.Goals), nonNil(p.PreferredDays), p.WaterGoalMl, p.SleepGoalHours,
		p.CalorieGoal, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting preferences: %w", err)
	}
	return nil
}
