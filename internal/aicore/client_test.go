package aicore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecommendations verifies the request path, the auth header and the
// cleanup of the decoded list.
func TestRecommendations(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/user%201/recommendations", r.URL.EscapedPath())
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"11111111-1111-1111-1111-111111111111","type":"protein","priority":"HIGH","title":"Eat more protein","tags":["nutrition"]},
			{"type":"mystery","priority":"urgent","title":"Unknown priority"},
			{"type":"","priority":"high","title":"no type"},
			{"type":"no_title","priority":"high"}
		]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "secret", time.Second)
	recs, err := c.Recommendations(context.Background(), "user 1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "protein", recs[0].Type)
	assert.Equal(t, uuid.Nil, recs[0].ID)
	assert.Equal(t, models.PriorityHigh, recs[0].Priority)
	assert.Equal(t, []string{"nutrition", "ai_core"}, recs[0].Tags)
	assert.Equal(t, models.PriorityLow, recs[1].Priority)
	assert.Equal(t, []string{"ai_core"}, recs[1].Tags)
}

func TestRecommendationsErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "segment model not loaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "", 0).Recommendations(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRecommendationsBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "", 0).Recommendations(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
