package ingest

import (
	"context"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// Dispatcher extracts an event record from a URL; nil means no material
type Dispatcher interface {
	Dispatch(ctx context.Context, rawURL string) *domain.EventRecord
}

// InflightGuard marks a URL as being extracted so that concurrent sightings
// can skip the work. Acquire hands out a token that Release must present.
type InflightGuard interface {
	Acquire(ctx context.Context, key string) (token string, ok bool)
	Release(ctx context.Context, key, token string)
}

// Recorder receives ingest outcomes
type Recorder interface {
	IngestOutcome(category, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) IngestOutcome(string, string) {}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string) (string, bool) { return "", true }
func (nopGuard) Release(context.Context, string, string)         {}
