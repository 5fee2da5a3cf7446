package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/textanalysis"
)

// Dispatcher picks the first strategy that matches a URL and turns its raw
// material into an event record
type Dispatcher struct {
	strategies []Strategy
	analyzer   *textanalysis.Analyzer
	recorder   Recorder
	log        *zap.Logger
}

// NewDispatcher creates a new dispatcher. Strategies are tried in order, so a
// catch-all strategy belongs at the end.
func NewDispatcher(strategies []Strategy, analyzer *textanalysis.Analyzer, recorder Recorder, log *zap.Logger) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dispatcher{
		strategies: strategies,
		analyzer:   analyzer,
		recorder:   recorder,
		log:        log,
	}
}

// Dispatch extracts an event record from rawURL. It returns nil when no
// material could be obtained; failures are logged and counted, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, rawURL string) *domain.EventRecord {
	u, err := url.Parse(rawURL)
	if err != nil {
		d.log.Warn("Failed to parse url", zap.String("url", rawURL), zap.Error(err))
		return nil
	}

	strategy := d.selectStrategy(u)
	if strategy == nil {
		d.log.Warn("No extraction strategy matches url", zap.String("url", rawURL))
		return nil
	}

	start := time.Now()
	material, err := d.extract(ctx, strategy, rawURL)
	d.recorder.ObserveExtraction(strategy.Name(), time.Since(start))

	if err == nil && material == nil {
		err = ErrNoContent
	}
	if err != nil {
		reason := FailureReason(err)
		d.log.Warn("Extraction failed",
			zap.String("url", rawURL),
			zap.String("strategy", strategy.Name()),
			zap.String("reason", reason),
			zap.Error(err))
		d.recorder.ExtractionFailed(strategy.Name(), reason)
		return nil
	}

	record := d.buildRecord(material)

	d.log.Info("Extracted event record",
		zap.String("url", rawURL),
		zap.String("strategy", strategy.Name()),
		zap.String("topic", record.Topic),
		zap.Bool("has_image", record.HasImage()),
		zap.Bool("has_deadline", record.Deadline != nil))

	return record
}

func (d *Dispatcher) selectStrategy(u *url.URL) Strategy {
	for _, s := range d.strategies {
		if s.Matches(u) {
			return s
		}
	}
	return nil
}

// extract runs the strategy, turning a panic into ErrCrawlPanic
func (d *Dispatcher) extract(ctx context.Context, strategy Strategy, rawURL string) (material *RawMaterial, err error) {
	defer func() {
		if r := recover(); r != nil {
			material, err = nil, fmt.Errorf("%w: %v", ErrCrawlPanic, r)
		}
	}()
	return strategy.Extract(ctx, rawURL)
}

func (d *Dispatcher) buildRecord(material *RawMaterial) *domain.EventRecord {
	record := &domain.EventRecord{
		Topic:    material.TopicHint,
		Deadline: material.Deadline,
	}
	if len(material.ImageCandidates) > 0 {
		record.ImageURL = material.ImageCandidates[0]
	}

	if !material.Structured {
		analysis := d.analyzer.Analyze(material.BodyText)
		record.Topic = analysis.Topic
		record.Deadline = analysis.Deadline
	}

	if record.Deadline == nil {
		record.Deadline = material.FallbackDeadline
	}
	if strings.TrimSpace(record.Topic) == "" {
		record.Topic = domain.DefaultTopic
	}

	return record
}

// FailureReason maps an extraction error to a short metric label
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrNoContent):
		return "no_content"
	case errors.Is(err, ErrCrawlTimeout):
		return "timeout"
	case errors.Is(err, ErrCrawlPanic):
		return "panic"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
