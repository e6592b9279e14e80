package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

type startSessionRequest struct {
	Name      string `json:"name"`
	Exercises []struct {
		ExerciseID string `json:"exercise_id"`
		Name       string `json:"name"`
		TargetSets int    `json:"target_sets"`
	} `json:"exercises"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	execs := make([]models.ExerciseExecution, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		execs = append(execs, models.ExerciseExecution{ExerciseID: ex.ExerciseID, Name: ex.Name, TargetSets: ex.TargetSets})
	}

	session, err := s.Tracker.StartSession(r.Context(), userIDFromContext(r), req.Name, execs)
	if err != nil {
		s.writeError(w, r, "start session", err)
		return
	}
	writeSuccess(w, http.StatusCreated, session)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r, s.now(), 28)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.Store.QueryWorkoutSessions(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		s.writeError(w, r, "load sessions", err)
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type logSetRequest struct {
	ExecutionID uuid.UUID `json:"execution_id"`
	SetNumber   int       `json:"set_number"`
	WeightKg    float64   `json:"weight_kg"`
	Reps        int       `json:"reps"`
	RIR         *float64  `json:"rir"`
	RPE         float64   `json:"rpe"`
	Completed   *bool     `json:"completed"`
	PerformedAt time.Time `json:"performed_at"`
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req logSetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	set, err := s.Tracker.LogSet(r.Context(), userIDFromContext(r), sessionID, req.ExecutionID, models.ExerciseSet{
		SetNumber:   req.SetNumber,
		WeightKg:    req.WeightKg,
		Reps:        req.Reps,
		RIR:         req.RIR,
		RPE:         req.RPE,
		Completed:   completed,
		PerformedAt: req.PerformedAt,
	})
	if err != nil {
		s.writeError(w, r, "log set", err)
		return
	}
	writeSuccess(w, http.StatusCreated, set)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		RPE float64 `json:"rpe"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := s.Tracker.FinishSession(r.Context(), userIDFromContext(r), sessionID, req.RPE)
	if err != nil {
		s.writeError(w, r, "finish session", err)
		return
	}
	writeSuccess(w, http.StatusOK, session)
}

func (s *Server) handleSkipSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	session, err := s.Tracker.SkipSession(r.Context(), userIDFromContext(r), sessionID)
	if err != nil {
		s.writeError(w, r, "skip session", err)
		return
	}
	writeSuccess(w, http.StatusOK, session)
}

func (s *Server) handlePlanWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string    `json:"name"`
		ScheduledFor time.Time `json:"scheduled_for"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	planned, err := s.Tracker.PlanWorkout(r.Context(), userIDFromContext(r), req.Name, req.ScheduledFor)
	if err != nil {
		s.writeError(w, r, "plan workout", err)
		return
	}
	writeSuccess(w, http.StatusCreated, planned)
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("muscle_group")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "muscle_group parameter required"})
		return
	}
	group, err := models.ParseMuscleGroup(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	lm, err := s.Analyzer.VolumeLandmarks(r.Context(), userIDFromContext(r), group)
	if err != nil {
		s.writeError(w, r, "compute volume landmarks", err)
		return
	}
	writeJSON(w, http.StatusOK, lm)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.Analyzer.Metrics(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, "compute training metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
