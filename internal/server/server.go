package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/trainwise/internal/fixtures"
	trainmcp "github.com/meltforce/trainwise/internal/mcp"
	"github.com/meltforce/trainwise/internal/metrics"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/periodization"
	"github.com/meltforce/trainwise/internal/recommend"
	"github.com/meltforce/trainwise/internal/training"
)

// Store is the storage surface the handlers use directly. Both the
// PostgreSQL and the in-memory store satisfy it.
type Store interface {
	QueryWorkoutSessions(ctx context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error)
	GetUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpsertUserPreferences(ctx context.Context, p models.UserPreferences) error
	InsertMeal(ctx context.Context, m models.MealEntry) error
	InsertMetricReading(ctx context.Context, m models.MetricReading) error
	InsertWellnessScore(ctx context.Context, s models.WellnessScore) error
	QueryWellnessScores(ctx context.Context, userID, scoreType string, start, end time.Time) ([]models.WellnessScore, error)
	InsertJournalEntry(ctx context.Context, e models.JournalEntry) error
	InsertRecoverySession(ctx context.Context, s models.RecoverySession) error
}

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Store           Store
	Tracker         *training.Tracker
	Analyzer        *training.Analyzer
	Recommendations *recommend.Generator
	Periodization   *periodization.Generator
	Fixtures        *fixtures.Provider

	// Optional.
	MCP            *mcpserver.MCPServer
	Metrics        *metrics.Manager
	MetricsHandler http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	Deps
	log    *slog.Logger
	apiKey string
	router chi.Router
	now    func() time.Time
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		Deps:   deps,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.Metrics != nil {
		s.router.Use(RequestMetrics(s.Metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.MetricsHandler != nil {
		s.router.Handle("/metrics", s.MetricsHandler)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(UserIdentity)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions", s.handleQuerySessions)
		r.Post("/sessions/{id}/sets", s.handleLogSet)
		r.Post("/sessions/{id}/finish", s.handleFinishSession)
		r.Post("/sessions/{id}/skip", s.handleSkipSession)
		r.Post("/planned-workouts", s.handlePlanWorkout)

		r.Get("/training/landmarks", s.handleLandmarks)
		r.Get("/training/metrics", s.handleMetrics)

		r.Post("/recommendations/generate", s.handleGenerateRecommendations)
		r.Get("/recommendations", s.handleActiveRecommendations)
		r.Post("/recommendations/{id}/dismiss", s.handleDismissRecommendation)
		r.Post("/recommendations/{id}/complete", s.handleCompleteRecommendation)

		r.Post("/periodization", s.handleGeneratePlan)
		r.Get("/periodization", s.handleListCycles)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		r.Post("/meals", s.handleLogMeal)
		r.Post("/body-metrics", s.handleLogBodyMetric)
		r.Post("/wellness/scores", s.handleLogWellnessScore)
		r.Get("/wellness/scores", s.handleQueryWellnessScores)
		r.Post("/journal", s.handleLogJournal)
		r.Post("/recovery-sessions", s.handleLogRecovery)
	})

	if s.MCP != nil {
		h := mcpserver.NewStreamableHTTPServer(s.MCP,
			mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				return trainmcp.WithUserID(ctx, userIDFromContext(r))
			}),
		)
		s.router.With(APIKeyAuth(s.apiKey), UserIdentity).Handle("/mcp", h)
	}
}
