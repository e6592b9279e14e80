// Package aicore calls the external AI core service for rule-based
// recommendations.
package aicore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

// Client fetches recommendations over HTTP. It satisfies recommend.RuleSource.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A zero timeout means 10 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("aicore: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aicore: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("aicore: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aicore: %s returned %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}

// Recommendations returns the AI core's suggestions for a user. Entries
// without a type or title are dropped; unknown priorities become low.
// Upstream ids are discarded; the generator assigns its own.
func (c *Client) Recommendations(ctx context.Context, userID string) ([]models.Recommendation, error) {
	body, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/recommendations")
	if err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("aicore: decode recommendations: %w", err)
	}

	out := recs[:0]
	for _, r := range recs {
		if r.Type == "" || r.Title == "" {
			continue
		}
		r.ID = uuid.Nil
		r.Priority = models.Priority(strings.ToLower(string(r.Priority)))
		if r.Priority.Rank() > models.PriorityLow.Rank() {
			r.Priority = models.PriorityLow
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		r.Tags = append(r.Tags, "ai_core")
		out = append(out, r)
	}
	return out, nil
}
