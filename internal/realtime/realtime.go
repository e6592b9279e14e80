// Package realtime broadcasts live session progress to subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "trainwise:session-progress"

// SessionProgress is emitted every time a set is logged.
type SessionProgress struct {
	UserID        string    `json:"user_id"`
	SessionID     uuid.UUID `json:"session_id"`
	ExecutionID   uuid.UUID `json:"execution_id"`
	ExerciseID    string    `json:"exercise_id"`
	SetNumber     int       `json:"set_number"`
	WeightKg      float64   `json:"weight_kg"`
	Reps          int       `json:"reps"`
	RPE           float64   `json:"rpe"`
	CompletedSets int       `json:"completed_sets"`
	At            time.Time `json:"at"`
}

// Publisher delivers progress events. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, ev SessionProgress)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, SessionProgress) {}

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb      *redis.Client
	channel  string
	failures prometheus.Counter
	logger   *slog.Logger
}

// NewRedisPublisher creates a publisher. failures may be nil.
func NewRedisPublisher(rdb *redis.Client, channel string, failures prometheus.Counter, logger *slog.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel, failures: failures, logger: logger}
}

// Publish marshals and sends ev. Errors are logged and counted.
func (p *RedisPublisher) Publish(ctx context.Context, ev SessionProgress) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.fail("marshal session progress", err, ev)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.fail("publish session progress", err, ev)
		return
	}
	p.logger.Debug("session progress published", "channel", p.channel, "session", ev.SessionID, "set", ev.SetNumber)
}

func (p *RedisPublisher) fail(msg string, err error, ev SessionProgress) {
	if p.failures != nil {
		p.failures.Inc()
	}
	p.logger.Warn(msg, "error", err, "channel", p.channel, "session", ev.SessionID)
}
