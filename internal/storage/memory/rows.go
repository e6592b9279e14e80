package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/storage"
)

// InsertCycle stores a periodization cycle.
func (s *Store) InsertCycle(_ context.Context, c models.PeriodizationCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertCycle"); err != nil {
		return err
	}
	s.cycles = append(s.cycles, c)
	return nil
}

// InsertTrainingPlan stores a plan header.
func (s *Store) InsertTrainingPlan(_ context.Context, p models.TrainingPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertTrainingPlan"); err != nil {
		return err
	}
	s.plans = append(s.plans, p)
	return nil
}

// ListCycles returns a user's cycles in insertion order.
func (s *Store) ListCycles(_ context.Context, userID string) ([]models.PeriodizationCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListCycles"); err != nil {
		return nil, err
	}
	var out []models.PeriodizationCycle
	for _, c := range s.cycles {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// TrainingPlans returns every stored plan header.
func (s *Store) TrainingPlans() []models.TrainingPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TrainingPlan(nil), s.plans...)
}

// InsertMeal stores a meal entry.
func (s *Store) InsertMeal(_ context.Context, m models.MealEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertMeal"); err != nil {
		return err
	}
	s.meals = append(s.meals, m)
	return nil
}

// QueryMeals returns meals in [start, end), oldest first.
func (s *Store) QueryMeals(_ context.Context, userID string, start, end time.Time) ([]models.MealEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryMeals"); err != nil {
		return nil, err
	}
	out := filter(s.meals, func(m models.MealEntry) bool {
		return m.UserID == userID && inRange(m.EatenAt, start, end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].EatenAt.Before(out[j].EatenAt) })
	return out, nil
}

// InsertMetricReading stores a body metric sample.
func (s *Store) InsertMetricReading(_ context.Context, m models.MetricReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertMetricReading"); err != nil {
		return err
	}
	s.metrics = append(s.metrics, m)
	return nil
}

// QueryMetricHistory returns samples of one type in [start, end), oldest first.
func (s *Store) QueryMetricHistory(_ context.Context, userID, metricType string, start, end time.Time) ([]models.MetricReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryMetricHistory"); err != nil {
		return nil, err
	}
	out := filter(s.metrics, func(m models.MetricReading) bool {
		return m.UserID == userID && m.MetricType == metricType && inRange(m.RecordedAt, start, end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// InsertWellnessScore stores a wellness score.
func (s *Store) InsertWellnessScore(_ context.Context, w models.WellnessScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertWellnessScore"); err != nil {
		return err
	}
	s.scores = append(s.scores, w)
	return nil
}

// QueryWellnessScores returns scores in [start, end), oldest first.
// An empty scoreType matches every type.
func (s *Store) QueryWellnessScores(_ context.Context, userID, scoreType string, start, end time.Time) ([]models.WellnessScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryWellnessScores"); err != nil {
		return nil, err
	}
	out := filter(s.scores, func(w models.WellnessScore) bool {
		return w.UserID == userID && (scoreType == "" || w.ScoreType == scoreType) && inRange(w.RecordedAt, start, end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// InsertJournalEntry stores a journal entry.
func (s *Store) InsertJournalEntry(_ context.Context, e models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertJournalEntry"); err != nil {
		return err
	}
	s.journal = append(s.journal, e)
	return nil
}

// QueryJournalEntries returns entries in [start, end), oldest first.
func (s *Store) QueryJournalEntries(_ context.Context, userID string, start, end time.Time) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryJournalEntries"); err != nil {
		return nil, err
	}
	out := filter(s.journal, func(e models.JournalEntry) bool {
		return e.UserID == userID && inRange(e.CreatedAt, start, end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// InsertRecoverySession stores a recovery session.
func (s *Store) InsertRecoverySession(_ context.Context, r models.RecoverySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertRecoverySession"); err != nil {
		return err
	}
	s.recovery = append(s.recovery, r)
	return nil
}

// QueryRecoverySessions returns sessions in [start, end), oldest first.
func (s *Store) QueryRecoverySessions(_ context.Context, userID string, start, end time.Time) ([]models.RecoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("QueryRecoverySessions"); err != nil {
		return nil, err
	}
	out := filter(s.recovery, func(r models.RecoverySession) bool {
		return r.UserID == userID && inRange(r.PerformedAt, start, end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformedAt.Before(out[j].PerformedAt) })
	return out, nil
}

// InsertRecommendations appends recommendations as new rows. Like the
// primary key in postgres, a reused id fails the whole batch.
func (s *Store) InsertRecommendations(_ context.Context, recs []models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertRecommendations"); err != nil {
		return err
	}
	seen := make(map[uuid.UUID]bool, len(s.recommendations)+len(recs))
	for _, r := range s.recommendations {
		seen[r.ID] = true
	}
	for _, r := range recs {
		if seen[r.ID] {
			return fmt.Errorf("inserting recommendations: %w: id %s", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
	}
	s.recommendations = append(s.recommendations, recs...)
	return nil
}

// ListActiveRecommendations returns non-dismissed recommendations, newest first.
func (s *Store) ListActiveRecommendations(_ context.Context, userID string) ([]models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListActiveRecommendations"); err != nil {
		return nil, err
	}
	out := filter(s.recommendations, func(r models.Recommendation) bool {
		return r.UserID == userID && !r.Dismissed
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AllRecommendations returns every stored recommendation, dismissed included.
func (s *Store) AllRecommendations() []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Recommendation(nil), s.recommendations...)
}

// DismissRecommendation flags a recommendation as dismissed.
func (s *Store) DismissRecommendation(_ context.Context, id uuid.UUID, userID string) error {
	return s.updateRecommendation("DismissRecommendation", id, userID, func(r *models.Recommendation) {
		r.Dismissed = true
	})
}

// CompleteRecommendation flags a recommendation as completed.
func (s *Store) CompleteRecommendation(_ context.Context, id uuid.UUID, userID string, at time.Time) error {
	return s.updateRecommendation("CompleteRecommendation", id, userID, func(r *models.Recommendation) {
		r.Completed = true
		r.CompletedAt = &at
	})
}

func (s *Store) updateRecommendation(method string, id uuid.UUID, userID string, apply func(*models.Recommendation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(method); err != nil {
		return err
	}
	for i := range s.recommendations {
		if s.recommendations[i].ID == id && s.recommendations[i].UserID == userID {
			apply(&s.recommendations[i])
			return nil
		}
	}
	return storage.ErrNotFound
}

// GetUserPreferences returns stored preferences or storage.ErrNotFound.
func (s *Store) GetUserPreferences(_ context.Context, userID string) (*models.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserPreferences"); err != nil {
		return nil, err
	}
	p, ok := s.preferences[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

// UpsertUserPreferences creates or replaces preferences.
func (s *Store) UpsertUserPreferences(_ context.Context, p models.UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertUserPreferences"); err != nil {
		return err
	}
	s.preferences[p.UserID] = p
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
