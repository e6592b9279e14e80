// Package fixtures produces sample wellness data for users who have not
// logged any yet.
package fixtures

import (
	"hash/fnv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/meltforce/trainwise/internal/models"
)

// maxDays caps how many sample days one call returns.
const maxDays = 30

// Provider generates deterministic sample wellness scores.
type Provider struct {
	enabled bool
	seed    int64
}

// New returns a provider. A disabled provider never generates anything.
func New(enabled bool, seed int64) *Provider {
	return &Provider{enabled: enabled, seed: seed}
}

// Enabled reports whether sample data may be served.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// WellnessScores returns one sample score per type and day in [start, end),
// most recent thirty days only. An empty scoreType yields every type. The
// same user and window always give the same values.
func (p *Provider) WellnessScores(userID, scoreType string, start, end time.Time) []models.WellnessScore {
	if !p.Enabled() || !end.After(start) {
		return nil
	}
	types := []string{scoreType}
	if scoreType == "" {
		types = []string{models.ScoreStressLevel, models.ScoreMood, models.ScoreEnergy}
	}

	first := dayOf(start)
	if !first.Equal(start.UTC()) {
		first = first.AddDate(0, 0, 1)
	}
	if earliest := dayOf(end.Add(-time.Nanosecond)).AddDate(0, 0, -maxDays+1); first.Before(earliest) {
		first = earliest
	}

	faker := gofakeit.New(p.seedFor(userID, first))
	var out []models.WellnessScore
	for day := first; day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, t := range types {
			recorded := day.Add(time.Duration(faker.Number(7*60, 22*60)) * time.Minute)
			if !recorded.Before(end) {
				continue
			}
			out = append(out, models.WellnessScore{
				ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+t+recorded.String())),
				UserID:     userID,
				ScoreType:  t,
				Value:      float64(faker.Number(1, 10)),
				RecordedAt: recorded,
			})
		}
	}
	return out
}

func (p *Provider) seedFor(userID string, day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	return p.seed ^ int64(h.Sum64()>>1) ^ day.Unix()
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
