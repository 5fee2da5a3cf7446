package consumer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// IngestStageConfig configures the ingest stage
type IngestStageConfig struct {
	Workers int
}

// IngestStage runs chat messages through the handler on a bounded pool of
// workers. Handled messages are acked; handler errors leave the message on
// the queue.
type IngestStage struct {
	handler  MessageHandler
	config   IngestStageConfig
	recorder Recorder
	log      *zap.Logger
}

// NewIngestStage creates a new ingest stage
func NewIngestStage(handler MessageHandler, config IngestStageConfig, recorder Recorder, log *zap.Logger) *IngestStage {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &IngestStage{
		handler:  handler,
		config:   config,
		recorder: recorder,
		log:      log,
	}
}

// Start processes envelopes until the input closes or ctx is done
func (s *IngestStage) Start(ctx context.Context, in <-chan *Envelope) {
	var wg sync.WaitGroup

	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			s.work(ctx, worker, in)
		}(i)
	}

	wg.Wait()
	s.log.Info("Ingest stage shutting down")
}

func (s *IngestStage) work(ctx context.Context, worker int, in <-chan *Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-in:
			if !ok {
				return
			}
			s.process(ctx, worker, envelope)
		}
	}
}

// process handles one envelope. A panicking handler nacks the message and
// keeps the worker alive.
func (s *IngestStage) process(ctx context.Context, worker int, envelope *Envelope) {
	msg := envelope.Message

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Message handler panicked",
				zap.Int("worker", worker),
				zap.String("message_id", msg.MessageID),
				zap.Any("panic", r))
			s.recorder.MessageConsumed("error")
			s.nack(ctx, envelope)
		}
	}()

	result, err := s.handler.Handle(ctx, *msg)
	if err != nil {
		s.log.Error("Failed to handle message",
			zap.Int("worker", worker),
			zap.String("message_id", msg.MessageID),
			zap.String("channel_id", msg.ChannelID),
			zap.Int("receive_count", envelope.ReceiveCount),
			zap.Error(err))
		s.recorder.MessageConsumed("error")
		s.nack(ctx, envelope)
		return
	}

	s.recorder.MessageConsumed(string(result.Outcome))

	if err := envelope.Ack(ctx); err != nil {
		s.log.Error("Failed to ack envelope",
			zap.String("message_id", msg.MessageID),
			zap.Error(err))
	}
}

func (s *IngestStage) nack(ctx context.Context, envelope *Envelope) {
	if err := envelope.Nack(ctx); err != nil {
		s.log.Error("Failed to nack envelope",
			zap.String("message_id", envelope.Message.MessageID),
			zap.Error(err))
	}
}
