// Package recommend turns training metrics and wellness history into
// prioritized recommendations.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/metrics"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/storage"
	"golang.org/x/sync/errgroup"
)

// DefaultCount is used when the caller asks for zero or fewer records.
const DefaultCount = 5

const (
	weightWindow   = 30 * 24 * time.Hour
	stressWindow   = 7 * 24 * time.Hour
	sleepWindow    = 7 * 24 * time.Hour
	recoveryWindow = stretchingGap
)

// HistorySource supplies the per-domain history the rules read.
type HistorySource interface {
	GetUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	QueryMeals(ctx context.Context, userID string, start, end time.Time) ([]models.MealEntry, error)
	QueryMetricHistory(ctx context.Context, userID, metricType string, start, end time.Time) ([]models.MetricReading, error)
	QueryWellnessScores(ctx context.Context, userID, scoreType string, start, end time.Time) ([]models.WellnessScore, error)
	QueryJournalEntries(ctx context.Context, userID string, start, end time.Time) ([]models.JournalEntry, error)
	QueryRecoverySessions(ctx context.Context, userID string, start, end time.Time) ([]models.RecoverySession, error)
}

// RecommendationStore persists recommendations and their lifecycle flags.
type RecommendationStore interface {
	InsertRecommendations(ctx context.Context, recs []models.Recommendation) error
	ListActiveRecommendations(ctx context.Context, userID string) ([]models.Recommendation, error)
	DismissRecommendation(ctx context.Context, id uuid.UUID, userID string) error
	CompleteRecommendation(ctx context.Context, id uuid.UUID, userID string, at time.Time) error
}

// MetricsSource computes training metrics for a user.
type MetricsSource interface {
	Metrics(ctx context.Context, userID string) (*models.TrainingMetrics, error)
}

// RuleSource is an external provider of additional recommendations.
type RuleSource interface {
	Recommendations(ctx context.Context, userID string) ([]models.Recommendation, error)
}

// Generator runs the threshold rules, merges external rules and persists
// the result.
type Generator struct {
	history HistorySource
	store   RecommendationStore
	metrics MetricsSource
	rules   RuleSource
	mm      *metrics.Manager
	logger  *slog.Logger
	now     func() time.Time
}

// NewGenerator creates a generator. rules and mm may be nil.
func NewGenerator(history HistorySource, store RecommendationStore, ms MetricsSource, rules RuleSource, mm *metrics.Manager, logger *slog.Logger) *Generator {
	return &Generator{
		history: history,
		store:   store,
		metrics: ms,
		rules:   rules,
		mm:      mm,
		logger:  logger,
		now:     time.Now,
	}
}

// Generate evaluates the rules, sorts the output high to low priority, keeps
// the first count records and inserts them as new rows. Input fetch failures
// degrade to empty data; only the insert can fail the call.
func (g *Generator) Generate(ctx context.Context, userID string, count int) ([]models.Recommendation, error) {
	if count <= 0 {
		count = DefaultCount
	}
	now := g.now().UTC()

	in := g.gather(ctx, userID, now)
	recs := Evaluate(in, now)
	recs = append(recs, g.external(ctx, userID)...)

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority.Rank() < recs[j].Priority.Rank() })
	if len(recs) > count {
		recs = recs[:count]
	}

	for i := range recs {
		// Every call inserts new rows, so ids are never reused.
		recs[i].ID = uuid.New()
		recs[i].UserID = userID
		recs[i].Dismissed = false
		recs[i].Completed = false
		recs[i].CompletedAt = nil
		recs[i].CreatedAt = now
		if recs[i].Tags == nil {
			recs[i].Tags = []string{}
		}
	}

	if len(recs) == 0 {
		return recs, nil
	}
	if err := g.store.InsertRecommendations(ctx, recs); err != nil {
		return nil, fmt.Errorf("save recommendations: %w", err)
	}
	if g.mm != nil {
		for _, r := range recs {
			g.mm.CounterRecommendations.WithLabelValues(string(r.Priority)).Inc()
		}
	}
	g.logger.Info("recommendations generated", "user", userID, "count", len(recs))
	return recs, nil
}

// Active lists the user's non-dismissed recommendations, newest first.
func (g *Generator) Active(ctx context.Context, userID string) ([]models.Recommendation, error) {
	recs, err := g.store.ListActiveRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return recs, nil
}

// Dismiss hides a recommendation. The row is kept.
func (g *Generator) Dismiss(ctx context.Context, userID string, id uuid.UUID) error {
	if err := g.store.DismissRecommendation(ctx, id, userID); err != nil {
		return fmt.Errorf("dismiss recommendation: %w", err)
	}
	return nil
}

// Complete marks a recommendation as acted on.
func (g *Generator) Complete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := g.store.CompleteRecommendation(ctx, id, userID, g.now().UTC()); err != nil {
		return fmt.Errorf("complete recommendation: %w", err)
	}
	return nil
}

// gather fetches every rule input concurrently. A failed fetch is logged and
// leaves the zero value in place.
func (g *Generator) gather(ctx context.Context, userID string, now time.Time) Inputs {
	in := Inputs{Preferences: models.DefaultPreferences(userID)}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var eg errgroup.Group
	eg.Go(func() error {
		prefs, err := g.history.GetUserPreferences(ctx, userID)
		if err == nil {
			in.Preferences = *prefs
		} else if !errors.Is(err, storage.ErrNotFound) {
			g.degraded("preferences", userID, err)
		}
		return nil
	})
	eg.Go(func() error {
		m, err := g.metrics.Metrics(ctx, userID)
		if err != nil {
			g.degraded("metrics", userID, err)
			return nil
		}
		in.Metrics = m
		return nil
	})
	eg.Go(func() error {
		meals, err := g.history.QueryMeals(ctx, userID, today, today.AddDate(0, 0, 1))
		if err != nil {
			g.degraded("meals", userID, err)
		}
		in.MealsToday = meals
		return nil
	})
	eg.Go(func() error {
		weights, err := g.history.QueryMetricHistory(ctx, userID, models.MetricWeight, now.Add(-weightWindow), now)
		if err != nil {
			g.degraded("weight", userID, err)
		}
		in.WeightHistory = weights
		return nil
	})
	eg.Go(func() error {
		scores, err := g.history.QueryWellnessScores(ctx, userID, models.ScoreStressLevel, now.Add(-stressWindow), now)
		if err != nil {
			g.degraded("stress", userID, err)
		}
		in.StressScores = scores
		return nil
	})
	eg.Go(func() error {
		entries, err := g.history.QueryJournalEntries(ctx, userID, now.Add(-journalGap), now)
		if err != nil {
			g.degraded("journal", userID, err)
		}
		in.JournalEntries = entries
		return nil
	})
	eg.Go(func() error {
		sleep, err := g.history.QueryMetricHistory(ctx, userID, models.MetricSleepDuration, now.Add(-sleepWindow), now)
		if err != nil {
			g.degraded("sleep", userID, err)
		}
		in.SleepHistory = sleep
		return nil
	})
	eg.Go(func() error {
		sessions, err := g.history.QueryRecoverySessions(ctx, userID, now.Add(-recoveryWindow), now)
		if err != nil {
			g.degraded("recovery", userID, err)
		}
		in.RecoverySessions = sessions
		return nil
	})
	// Fetch errors degrade inside each goroutine; Wait never fails.
	_ = eg.Wait()
	return in
}

func (g *Generator) external(ctx context.Context, userID string) []models.Recommendation {
	if g.rules == nil {
		return nil
	}
	recs, err := g.rules.Recommendations(ctx, userID)
	if err != nil {
		g.degraded("ai_core", userID, err)
		return nil
	}
	return recs
}

func (g *Generator) degraded(source, userID string, err error) {
	level := slog.LevelError
	if storage.IsDegradable(err) {
		level = slog.LevelWarn
	}
	g.logger.Log(context.Background(), level, "recommendation input unavailable, using default",
		"source", source, "user", userID, "error", err)
	if g.mm != nil {
		g.mm.CounterDegradedFetches.WithLabelValues(source).Inc()
	}
}
