package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/trainwise/internal/models"
)

// TestIsDegradable covers each branch of the read-path error taxonomy:
// connectivity, schema drift and empty driver errors degrade; not-found and
// ordinary query errors do not.
func TestIsDegradable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("querying preferences: %w", ErrNotFound), false},
		{"missing table", &pgconn.PgError{Code: "42P01", Message: `relation "meal_plans" does not exist`}, true},
		{"missing column", fmt.Errorf("querying: %w", &pgconn.PgError{Code: "42703"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"network", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"deadline", fmt.Errorf("querying: %w", context.DeadlineExceeded), true},
		{"empty", errors.New(""), true},
		{"empty object", fmt.Errorf("querying meals: %w", errors.New("{}")), true},
		{"other", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDegradable(tt.err); got != tt.want {
				t.Errorf("IsDegradable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestNotFoundMapping verifies pgx.ErrNoRows becomes ErrNotFound and other
// errors pass through unchanged.
func TestNotFoundMapping(t *testing.T) {
	if !errors.Is(notFound(pgx.ErrNoRows), ErrNotFound) {
		t.Error("ErrNoRows should map to ErrNotFound")
	}
	other := errors.New("boom")
	if notFound(other) != other {
		t.Error("other errors must pass through")
	}
}

// TestMarshalExercisesStripsSets verifies sets are not duplicated into the
// JSONB exercise column and that the caller's slice is left untouched.
func TestMarshalExercisesStripsSets(t *testing.T) {
	exercises := []models.ExerciseExecution{{
		ID:         uuid.New(),
		ExerciseID: "bench_press",
		TargetSets: 3,
		Sets:       []models.ExerciseSet{{Reps: 5, Completed: true}},
	}}

	data, err := marshalExercises(exercises)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), `"sets"`) {
		t.Errorf("encoded exercises contain sets: %s", data)
	}
	if len(exercises[0].Sets) != 1 {
		t.Error("input slice was modified")
	}
}
