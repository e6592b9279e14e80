package storage

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool and provides repository methods.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Tables lists every table the service reads or writes.
var Tables = []string{
	"workout_sessions",
	"exercise_sets",
	"planned_workouts",
	"periodization_cycles",
	"training_plans",
	"meal_plans",
	"user_metrics_history",
	"wellness_scores",
	"emotional_journal",
	"recovery_sessions",
	"user_recommendations",
	"user_preferences",
}

// ProbeSchema returns the names of expected tables that do not exist.
func (db *DB) ProbeSchema(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range Tables {
		var reg *string
		err := db.Pool.QueryRow(ctx, `SELECT to_regclass($1)::text`, "public."+table).Scan(&reg)
		if err != nil {
			return nil, fmt.Errorf("probing table %s: %w", table, err)
		}
		if reg == nil {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
