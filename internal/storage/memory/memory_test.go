package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

// TestInsertRecommendationsDuplicateID verifies a reused id fails the batch
// and leaves earlier rows untouched.
func TestInsertRecommendationsDuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := uuid.New()

	if err := s.InsertRecommendations(ctx, []models.Recommendation{{ID: id, UserID: "u1"}}); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := s.InsertRecommendations(ctx, []models.Recommendation{{ID: uuid.New(), UserID: "u1"}, {ID: id, UserID: "u1"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if got := len(s.AllRecommendations()); got != 1 {
		t.Errorf("stored %d rows, want 1", got)
	}

	// Duplicates inside one batch are rejected too.
	dup := uuid.New()
	err = s.InsertRecommendations(ctx, []models.Recommendation{{ID: dup}, {ID: dup}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}
