package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
	"github.com/DIP-Sharing-Board/discord-bot/internal/queue"
)

// Consumer orchestrates a pipeline of stages to process SQS messages
type Consumer struct {
	receiver *Receiver
	parser   *ParserStage
	ingest   *IngestStage
	buffer   int
}

// NewConsumer creates a new consumer with a pipeline architecture
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, handler MessageHandler, recorder Recorder, log *zap.Logger) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     cfg.Consumer.MaxMessages,
		WaitTimeSeconds: cfg.Consumer.WaitTimeSeconds,
		ErrorBackoff:    time.Duration(cfg.Consumer.ReceiveBackoffMsec) * time.Millisecond,
		CrawlTimeout:    cfg.Consumer.CrawlTimeout(),
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONMessageParser(), log)

	ingest := NewIngestStage(handler, IngestStageConfig{
		Workers: cfg.Consumer.Workers,
	}, recorder, log)

	return &Consumer{
		receiver: receiver,
		parser:   parser,
		ingest:   ingest,
		buffer:   int(cfg.Consumer.MaxMessages),
	}
}

// Start begins the consumer pipeline
func (c *Consumer) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, c.buffer)
	envelopeChan := make(chan *Envelope, c.buffer)

	var wg sync.WaitGroup

	wg.Add(3)

	// Stage 1: Receive messages from SQS
	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messageChan)
	}()

	// Stage 2: Parse messages into envelopes
	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messageChan, envelopeChan)
	}()

	// Stage 3: Extract and ingest on the worker pool
	go func() {
		defer wg.Done()
		c.ingest.Start(ctx, envelopeChan)
	}()

	wg.Wait()
	return nil
}
