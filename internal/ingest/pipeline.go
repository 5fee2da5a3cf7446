package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// Pipeline handles one chat message end to end: route, look up, extract and
// ingest
type Pipeline struct {
	router     *Router
	dispatcher Dispatcher
	ingestor   *Ingestor
	guard      InflightGuard
	log        *zap.Logger
}

// NewPipeline creates a new pipeline. A nil guard never blocks extraction.
func NewPipeline(router *Router, dispatcher Dispatcher, ingestor *Ingestor, guard InflightGuard, log *zap.Logger) *Pipeline {
	if guard == nil {
		guard = nopGuard{}
	}
	return &Pipeline{
		router:     router,
		dispatcher: dispatcher,
		ingestor:   ingestor,
		guard:      guard,
		log:        log,
	}
}

// Handle processes msg. Messages from unwatched channels and texts that are
// not a single URL are ignored. Stored URLs are touched without fetching.
func (p *Pipeline) Handle(ctx context.Context, msg domain.ChatMessage) (Result, error) {
	category, ok := p.router.Route(msg.ChannelID)
	if !ok {
		p.log.Debug("Message from unwatched channel",
			zap.String("channel_id", msg.ChannelID),
			zap.String("channel_name", msg.ChannelName))
		return Result{Outcome: OutcomeIgnored, Reason: ReasonUnknownChannel}, nil
	}

	rawURL, err := ParseURL(msg.Text)
	if err != nil {
		p.log.Debug("Message is not a link",
			zap.String("message_id", msg.MessageID),
			zap.Error(err))
		return Result{Outcome: OutcomeIgnored, Reason: ReasonNotURL}, nil
	}

	log := p.log.With(
		zap.String("message_id", msg.MessageID),
		zap.String("channel_name", msg.ChannelName),
		zap.String("category", string(category)),
		zap.String("url", rawURL))

	result, found, err := p.ingestor.TouchExisting(ctx, category, rawURL)
	if err != nil {
		return Result{}, err
	}
	if found {
		return result, nil
	}

	key := string(category) + ":" + result.HashKey
	token, acquired := p.guard.Acquire(ctx, key)
	if !acquired {
		log.Info("Link is already being extracted")
		return Result{Outcome: OutcomeIgnored, Reason: ReasonInflight, HashKey: result.HashKey}, nil
	}
	defer p.guard.Release(ctx, key, token)

	record := p.dispatcher.Dispatch(ctx, rawURL)

	result, err = p.ingestor.Ingest(ctx, category, rawURL, record)
	if err != nil {
		log.Error("Failed to ingest link", zap.Error(err))
		return Result{}, err
	}

	log.Info("Link processed",
		zap.String("outcome", string(result.Outcome)),
		zap.String("reason", result.Reason))
	return result, nil
}
