package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/trainwise/internal/models"
)

func (s *Server) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	count := 0
	if c := r.URL.Query().Get("count"); c != "" {
		parsed, err := strconv.Atoi(c)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = parsed
	}

	recs, err := s.Recommendations.Generate(r.Context(), userIDFromContext(r), count)
	if err != nil {
		s.writeError(w, r, "save recommendations", err)
		return
	}
	writeSuccess(w, http.StatusCreated, recs)
}

func (s *Server) handleActiveRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Recommendations.Active(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, "load recommendations", err)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleDismissRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Recommendations.Dismiss(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, "dismiss recommendation", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"id": id.String()})
}

func (s *Server) handleCompleteRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Recommendations.Complete(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, "complete recommendation", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"id": id.String()})
}

type generatePlanRequest struct {
	Goals     []string `json:"goals"`
	Weeks     int      `json:"weeks"`
	StartDate string   `json:"start_date"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var start time.Time
	if strings.TrimSpace(req.StartDate) != "" {
		t, err := parseFlexTime(req.StartDate)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD or RFC 3339")
			return
		}
		start = t
	}

	plan, err := s.Periodization.Generate(r.Context(), userIDFromContext(r), req.Goals, req.Weeks, start)
	if err != nil {
		s.writeError(w, r, "save training plan", err)
		return
	}
	writeSuccess(w, http.StatusCreated, plan)
}

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.Periodization.List(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, "load training plans", err)
		return
	}
	if cycles == nil {
		cycles = []models.PeriodizationCycle{}
	}
	writeJSON(w, http.StatusOK, cycles)
}
