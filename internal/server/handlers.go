package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/periodization"
	"github.com/meltforce/trainwise/internal/storage"
	"github.com/meltforce/trainwise/internal/training"
)

const maxBodyBytes = 1 << 20

// envelope is the response shape of every write path.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// writeError maps a service error to a status and a general message. The
// underlying error only goes to the log, except for validation failures
// whose text is meant for the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, training.ErrInvalid), errors.Is(err, periodization.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, training.ErrSessionClosed):
		status, msg = http.StatusConflict, "session is no longer in progress"
	case storage.IsDegradable(err):
		status, msg = http.StatusServiceUnavailable, "storage is unavailable, please try again later"
	default:
		status, msg = http.StatusInternalServerError, "could not "+action
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(action, "user", userIDFromContext(r), "path", r.URL.Path, "error", err)
	} else {
		s.log.Warn(action, "user", userIDFromContext(r), "path", r.URL.Path, "status", status, "error", err)
	}
	writeFailure(w, status, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseTimeRange(r *http.Request, now time.Time, defaultDays int) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		end = now
		start = end.AddDate(0, 0, -defaultDays)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = now
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}

func parseFlexTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// orNow returns t, or now when t is zero.
func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}
