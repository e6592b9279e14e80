package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/trainwise/internal/models"
)

type contextKey int

const userIDKey contextKey = iota

// defaultUserID matches the HTTP layer's identity for anonymous callers.
const defaultUserID = "local"

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		return id
	}
	return defaultUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Analyzer computes training analytics.
type Analyzer interface {
	VolumeLandmarks(ctx context.Context, userID string, group models.MuscleGroup) (models.VolumeLandmarks, error)
	Metrics(ctx context.Context, userID string) (*models.TrainingMetrics, error)
}

// Recommender produces and lists recommendations.
type Recommender interface {
	Generate(ctx context.Context, userID string, count int) ([]models.Recommendation, error)
	Active(ctx context.Context, userID string) ([]models.Recommendation, error)
}

// Planner builds periodization plans.
type Planner interface {
	Generate(ctx context.Context, userID string, goals []string, weeks int, start time.Time) (*models.Plan, error)
}

// SessionReader lists recorded workout sessions.
type SessionReader interface {
	QueryWorkoutSessions(ctx context.Context, userID string, start, end time.Time) ([]models.WorkoutSession, error)
}

// Deps are the services exposed as tools.
type Deps struct {
	Analyzer        Analyzer
	Recommendations Recommender
	Periodization   Planner
	Sessions        SessionReader
}

// New creates an MCP server with all tools and resources registered.
func New(deps Deps, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrainWise", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrainWise training server. Query volume landmarks and training metrics, generate recommendations and periodization plans. All data is scoped to the authenticated user."),
	)

	h := &handlers{deps: deps, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetVolumeLandmarks, Handler: h.getVolumeLandmarks},
		server.ServerTool{Tool: toolGetTrainingMetrics, Handler: h.getTrainingMetrics},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGenerateRecommendations, Handler: h.generateRecommendations},
		server.ServerTool{Tool: toolListRecommendations, Handler: h.listRecommendations},
		server.ServerTool{Tool: toolGeneratePeriodization, Handler: h.generatePeriodization},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resMuscleGroups, Handler: h.muscleGroups},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	deps Deps
	log  *slog.Logger
	now  func() time.Time
}

// --- Resource definitions ---

var resMuscleGroups = mcp.NewResource(
	"trainwise://muscle_groups",
	"Muscle Groups",
	mcp.WithResourceDescription("Tracked muscle groups with the exercises counted toward each"),
	mcp.WithMIMEType("application/json"),
)

