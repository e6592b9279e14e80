package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/periodization"
	"github.com/meltforce/trainwise/internal/storage"
	"github.com/meltforce/trainwise/internal/training"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// splitList parses a comma separated argument, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func muscleGroupNames() []string {
	names := make([]string, len(models.MuscleGroups))
	for i, g := range models.MuscleGroups {
		names[i] = string(g)
	}
	return names
}

// --- Tool definitions ---

var toolGetVolumeLandmarks = mcp.NewTool("get_volume_landmarks",
	mcp.WithDescription("Estimate MEV, MAV and MRV weekly volume landmarks for a muscle group from the last 12 weeks of sessions. Weekly volume counts the reps of completed sets."),
	mcp.WithString("muscle_group", mcp.Required(), mcp.Description("Muscle group"), mcp.Enum(muscleGroupNames()...)),
)

var toolGetTrainingMetrics = mcp.NewTool("get_training_metrics",
	mcp.WithDescription("Training metrics over the last 4 weeks: weekly volume per muscle group, RPE distribution, adherence, progression, fatigue index, readiness score and landmarks."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List workout sessions with exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGenerateRecommendations = mcp.NewTool("generate_recommendations",
	mcp.WithDescription("Evaluate training, nutrition, sleep and wellness rules and store the resulting recommendations, highest priority first."),
	mcp.WithNumber("count", mcp.Description("Maximum number of recommendations. Defaults to 5.")),
)

var toolListRecommendations = mcp.NewTool("list_recommendations",
	mcp.WithDescription("List recommendations that have not been dismissed, newest first."),
)

var toolGeneratePeriodization = mcp.NewTool("generate_periodization",
	mcp.WithDescription("Build and store a periodization plan: one macrocycle, 4-week mesocycles and weekly microcycles with every 4th week a deload. The strength goal adds accumulation, intensification and realization phases."),
	mcp.WithString("goals", mcp.Required(), mcp.Description("Comma separated goals (e.g. 'strength,muscle_gain')")),
	mcp.WithNumber("weeks", mcp.Required(), mcp.Description("Plan length in weeks (1-104)")),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to today.")),
)

// --- Tool handlers ---

func (h *handlers) failure(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, training.ErrInvalid) || errors.Is(err, periodization.ErrInvalid) {
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	if storage.IsDegradable(err) {
		return mcp.NewToolResultError("storage is unavailable, please try again later")
	}
	return mcp.NewToolResultError(tool + " failed")
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

func (h *handlers) getVolumeLandmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("muscle_group")
	if err != nil {
		return mcp.NewToolResultError("muscle_group parameter is required"), nil
	}
	group, err := models.ParseMuscleGroup(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lm, err := h.deps.Analyzer.VolumeLandmarks(ctx, UserIDFromContext(ctx), group)
	if err != nil {
		return h.failure("get_volume_landmarks", err), nil
	}
	return jsonResult(lm), nil
}

func (h *handlers) getTrainingMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.deps.Analyzer.Metrics(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("get_training_metrics", err), nil
	}
	return jsonResult(m), nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now())
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.deps.Sessions.QueryWorkoutSessions(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		return h.failure("get_sessions", err), nil
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	return jsonResult(sessions), nil
}

func (h *handlers) generateRecommendations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := req.GetInt("count", 0)

	recs, err := h.deps.Recommendations.Generate(ctx, UserIDFromContext(ctx), count)
	if err != nil {
		return h.failure("generate_recommendations", err), nil
	}
	return jsonResult(map[string]any{
		"count":           len(recs),
		"recommendations": recs,
	}), nil
}

func (h *handlers) listRecommendations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := h.deps.Recommendations.Active(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("list_recommendations", err), nil
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return jsonResult(recs), nil
}

func (h *handlers) generatePeriodization(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalsStr, err := req.RequireString("goals")
	if err != nil {
		return mcp.NewToolResultError("goals parameter is required"), nil
	}
	weeks, err := req.RequireInt("weeks")
	if err != nil {
		return mcp.NewToolResultError("weeks parameter is required"), nil
	}

	var start time.Time
	if s := req.GetString("start", ""); s != "" {
		start, err = parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	plan, err := h.deps.Periodization.Generate(ctx, UserIDFromContext(ctx), splitList(goalsStr), weeks, start)
	if err != nil {
		return h.failure("generate_periodization", err), nil
	}
	return jsonResult(plan), nil
}
