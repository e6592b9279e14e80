package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meltforce/trainwise/internal/models"
)

// InsertCycle writes one periodization cycle row.
func (db *DB) InsertCycle(ctx context.Context, c models.PeriodizationCycle) error {
	phases, err := json.Marshal(c.Phases)
	if err != nil {
		return fmt.Errorf("encoding phases: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO periodization_cycles (id, user_id, plan_id, parent_id, cycle_type, name,
		 start_date, end_date, duration_weeks, goals, phases, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.UserID, c.PlanID, c.ParentID, string(c.Type), c.Name,
		c.StartDate, c.EndDate, c.DurationWeeks, nonNil(c.Goals), phases, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", c.Type, err)
	}
	return nil
}

// InsertTrainingPlan writes the plan header row.
func (db *DB) InsertTrainingPlan(ctx context.Context, p models.TrainingPlan) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO training_plans (id, user_id, name, goals, duration_weeks, macrocycle_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.UserID, p.Name, nonNil(p.Goals), p.DurationWeeks, p.MacrocycleID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting training plan: %w", err)
	}
	return nil
}

// ListCycles returns all cycles of a user ordered by start date and granularity.
func (db *DB) ListCycles(ctx context.Context, userID string) ([]models.PeriodizationCycle, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, plan_id, parent_id, cycle_type, name, start_date, end_date,
		 duration_weeks, goals, phases, created_at
		 FROM periodization_cycles
		 WHERE user_id = $1
		 ORDER BY start_date ASC,
		   CASE cycle_type WHEN 'macrocycle' THEN 1 WHEN 'mesocycle' THEN 2 ELSE 3 END`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying cycles: %w", err)
	}
	defer rows.Close()

	var result []models.PeriodizationCycle
	for rows.Next() {
		var c models.PeriodizationCycle
		var cycleType string
		var phases []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.PlanID, &c.ParentID, &cycleType, &c.Name,
			&c.StartDate, &c.EndDate, &c.DurationWeeks, &c.Goals, &phases, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cycle: %w", err)
		}
		c.Type = models.CycleType(cycleType)
		if len(phases) > 0 {
			if err := json.Unmarshal(phases, &c.Phases); err != nil {
				return nil, fmt.Errorf("decoding phases: %w", err)
			}
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
