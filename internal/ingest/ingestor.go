package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/repository"
)

// Outcome is the result of handling one URL sighting
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeTouched  Outcome = "touched"
	OutcomeRejected Outcome = "rejected"
	OutcomeIgnored  Outcome = "ignored"
)

// Rejection and skip reasons
const (
	ReasonMissingImage   = "missing_image"
	ReasonNoMaterial     = "no_material"
	ReasonDuplicate      = "duplicate"
	ReasonUnknownChannel = "unknown_channel"
	ReasonNotURL         = "not_a_url"
	ReasonInflight       = "in_flight"
)

// Result describes what happened to a URL
type Result struct {
	Outcome Outcome
	Reason  string
	HashKey string
}

// Ingestor stores each canonical URL at most once per category
type Ingestor struct {
	repo     repository.ActivityRepository
	now      func() time.Time
	recorder Recorder
	log      *zap.Logger
}

// NewIngestor creates a new ingestor. A nil clock uses time.Now.
func NewIngestor(repo repository.ActivityRepository, now func() time.Time, recorder Recorder, log *zap.Logger) *Ingestor {
	if now == nil {
		now = time.Now
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Ingestor{
		repo:     repo,
		now:      now,
		recorder: recorder,
		log:      log,
	}
}

// TouchExisting bumps updated_at of an already stored URL. It reports false
// when the URL has not been stored yet.
func (i *Ingestor) TouchExisting(ctx context.Context, category domain.Category, rawURL string) (Result, bool, error) {
	hashKey := HashKey(rawURL)

	found, err := i.repo.Touch(ctx, category, hashKey, i.now().UTC())
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to look up activity: %w", err)
	}
	if !found {
		return Result{HashKey: hashKey}, false, nil
	}

	i.log.Info("Activity already stored, touched",
		zap.String("category", string(category)),
		zap.String("hash_key", hashKey))
	return i.finish(category, Result{Outcome: OutcomeTouched, HashKey: hashKey}), true, nil
}

// Ingest applies one sighting of rawURL: an existing row is touched, a new
// record with an image is inserted and anything else is rejected. Only store
// failures other than a hash collision are returned as errors.
func (i *Ingestor) Ingest(ctx context.Context, category domain.Category, rawURL string, record *domain.EventRecord) (Result, error) {
	result, found, err := i.TouchExisting(ctx, category, rawURL)
	if err != nil || found {
		return result, err
	}
	hashKey := result.HashKey

	switch {
	case record == nil:
		return i.reject(category, hashKey, ReasonNoMaterial), nil
	case !record.HasImage():
		return i.reject(category, hashKey, ReasonMissingImage), nil
	}

	now := i.now().UTC()
	activity := &domain.Activity{
		HashKey:   hashKey,
		Link:      Canonicalize(rawURL),
		Topic:     record.Topic,
		ImageURL:  record.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	if record.Deadline != nil {
		deadline := record.Deadline.UTC()
		activity.Deadline = &deadline
	}

	if err := i.repo.Insert(ctx, category, activity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return i.reject(category, hashKey, ReasonDuplicate), nil
		}
		return Result{}, fmt.Errorf("failed to insert activity: %w", err)
	}

	i.log.Info("Activity inserted",
		zap.String("category", string(category)),
		zap.String("hash_key", hashKey),
		zap.String("topic", activity.Topic))
	return i.finish(category, Result{Outcome: OutcomeInserted, HashKey: hashKey}), nil
}

func (i *Ingestor) reject(category domain.Category, hashKey, reason string) Result {
	i.log.Info("Activity rejected",
		zap.String("category", string(category)),
		zap.String("hash_key", hashKey),
		zap.String("reason", reason))
	return i.finish(category, Result{Outcome: OutcomeRejected, Reason: reason, HashKey: hashKey})
}

func (i *Ingestor) finish(category domain.Category, result Result) Result {
	i.recorder.IngestOutcome(string(category), string(result.Outcome))
	return result
}
