package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/meltforce/trainwise/internal/storage"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	prefs, err := s.Store.GetUserPreferences(r.Context(), userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs, "default": false})
	case errors.Is(err, storage.ErrNotFound) || storage.IsDegradable(err):
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("preferences unavailable, serving defaults", "user", userID, "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"preferences": models.DefaultPreferences(userID), "default": true})
	default:
		s.writeError(w, r, "load preferences", err)
	}
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var p models.UserPreferences
	if !decodeBody(w, r, &p) {
		return
	}
	if p.WaterGoalMl < 0 || p.SleepGoalHours < 0 || p.CalorieGoal < 0 {
		writeFailure(w, http.StatusBadRequest, "goals must not be negative")
		return
	}
	days := make([]string, 0, len(p.PreferredDays))
	for _, raw := range p.PreferredDays {
		d, err := models.ParseWeekday(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "preferred_days must be weekday names such as Monday")
			return
		}
		days = append(days, d.String())
	}
	p.PreferredDays = days
	p.UserID = userIDFromContext(r)
	p.UpdatedAt = s.now().UTC()
	if p.Goals == nil {
		p.Goals = []string{}
	}

	if err := s.Store.UpsertUserPreferences(r.Context(), p); err != nil {
		s.writeError(w, r, "save preferences", err)
		return
	}
	writeSuccess(w, http.StatusOK, p)
}

func (s *Server) handleLogMeal(w http.ResponseWriter, r *http.Request) {
	var m models.MealEntry
	if !decodeBody(w, r, &m) {
		return
	}
	if strings.TrimSpace(m.Name) == "" {
		writeFailure(w, http.StatusBadRequest, "name is required")
		return
	}
	if m.Calories < 0 || m.WaterMl < 0 {
		writeFailure(w, http.StatusBadRequest, "calories and water_ml must not be negative")
		return
	}
	m.ID = uuid.New()
	m.UserID = userIDFromContext(r)
	m.EatenAt = orNow(m.EatenAt, s.now().UTC())

	if err := s.Store.InsertMeal(r.Context(), m); err != nil {
		s.writeError(w, r, "save meal", err)
		return
	}
	writeSuccess(w, http.StatusCreated, m)
}

func (s *Server) handleLogBodyMetric(w http.ResponseWriter, r *http.Request) {
	var m models.MetricReading
	if !decodeBody(w, r, &m) {
		return
	}
	switch m.MetricType {
	case models.MetricWeight, models.MetricSleepDuration:
	default:
		writeFailure(w, http.StatusBadRequest, "metric_type must be weight or sleep_duration")
		return
	}
	if m.Value < 0 {
		writeFailure(w, http.StatusBadRequest, "value must not be negative")
		return
	}
	m.ID = uuid.New()
	m.UserID = userIDFromContext(r)
	m.RecordedAt = orNow(m.RecordedAt, s.now().UTC())

	if err := s.Store.InsertMetricReading(r.Context(), m); err != nil {
		s.writeError(w, r, "save body metric", err)
		return
	}
	writeSuccess(w, http.StatusCreated, m)
}

func validScoreType(t string) bool {
	switch t {
	case models.ScoreStressLevel, models.ScoreMood, models.ScoreEnergy:
		return true
	}
	return false
}

func (s *Server) handleLogWellnessScore(w http.ResponseWriter, r *http.Request) {
	var sc models.WellnessScore
	if !decodeBody(w, r, &sc) {
		return
	}
	if !validScoreType(sc.ScoreType) {
		writeFailure(w, http.StatusBadRequest, "score_type must be stress_level, mood or energy")
		return
	}
	if sc.Value < 0 || sc.Value > 10 {
		writeFailure(w, http.StatusBadRequest, "value must be between 0 and 10")
		return
	}
	sc.ID = uuid.New()
	sc.UserID = userIDFromContext(r)
	sc.RecordedAt = orNow(sc.RecordedAt, s.now().UTC())

	if err := s.Store.InsertWellnessScore(r.Context(), sc); err != nil {
		s.writeError(w, r, "save wellness score", err)
		return
	}
	writeSuccess(w, http.StatusCreated, sc)
}

func (s *Server) handleQueryWellnessScores(w http.ResponseWriter, r *http.Request) {
	scoreType := r.URL.Query().Get("type")
	if scoreType != "" && !validScoreType(scoreType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown score type"})
		return
	}
	start, end, err := parseTimeRange(r, s.now(), 7)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	userID := userIDFromContext(r)

	scores, err := s.Store.QueryWellnessScores(r.Context(), userID, scoreType, start, end)
	if err != nil {
		s.writeError(w, r, "load wellness scores", err)
		return
	}
	sample := false
	if len(scores) == 0 && s.Fixtures.Enabled() {
		scores = s.Fixtures.WellnessScores(userID, scoreType, start, end)
		sample = true
	}
	if scores == nil {
		scores = []models.WellnessScore{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores, "sample": sample})
}

func (s *Server) handleLogJournal(w http.ResponseWriter, r *http.Request) {
	var e models.JournalEntry
	if !decodeBody(w, r, &e) {
		return
	}
	if strings.TrimSpace(e.Content) == "" {
		writeFailure(w, http.StatusBadRequest, "content is required")
		return
	}
	e.ID = uuid.New()
	e.UserID = userIDFromContext(r)
	e.CreatedAt = orNow(e.CreatedAt, s.now().UTC())

	if err := s.Store.InsertJournalEntry(r.Context(), e); err != nil {
		s.writeError(w, r, "save journal entry", err)
		return
	}
	writeSuccess(w, http.StatusCreated, e)
}

func (s *Server) handleLogRecovery(w http.ResponseWriter, r *http.Request) {
	var rs models.RecoverySession
	if !decodeBody(w, r, &rs) {
		return
	}
	rs.SessionType = strings.ToLower(strings.TrimSpace(rs.SessionType))
	if rs.SessionType == "" {
		writeFailure(w, http.StatusBadRequest, "session_type is required")
		return
	}
	if rs.DurationMin < 0 {
		writeFailure(w, http.StatusBadRequest, "duration_min must not be negative")
		return
	}
	rs.ID = uuid.New()
	rs.UserID = userIDFromContext(r)
	rs.PerformedAt = orNow(rs.PerformedAt, s.now().UTC())

	if err := s.Store.InsertRecoverySession(r.Context(), rs); err != nil {
		s.writeError(w, r, "save recovery session", err)
		return
	}
	writeSuccess(w, http.StatusCreated, rs)
}

