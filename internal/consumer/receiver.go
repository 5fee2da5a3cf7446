package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/queue"
)

// visibilityMargin is added on top of the crawl budget so a message is not
// redelivered while its link is still being extracted
const visibilityMargin = 30 * time.Second

// ReceiverConfig configures the SQS receiver
type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	ErrorBackoff    time.Duration
	// CrawlTimeout bounds one extraction; zero keeps the queue's default
	// visibility timeout
	CrawlTimeout time.Duration
}

// visibilityTimeout returns the per-receive visibility timeout in seconds
func (c ReceiverConfig) visibilityTimeout() int32 {
	if c.CrawlTimeout <= 0 {
		return 0
	}
	return int32((c.CrawlTimeout + visibilityMargin).Seconds())
}

// Receiver long-polls the queue for chat messages
type Receiver struct {
	consumer queue.QueueConsumer
	config   ReceiverConfig
	log      *zap.Logger
}

// NewReceiver creates a new SQS receiver
func NewReceiver(consumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	return &Receiver{
		consumer: consumer,
		config:   config,
		log:      log,
	}
}

func (r *Receiver) receiveInput() *awssqs.ReceiveMessageInput {
	return &awssqs.ReceiveMessageInput{
		QueueUrl:              aws.String(r.consumer.QueueURL()),
		MaxNumberOfMessages:   r.config.MaxMessages,
		WaitTimeSeconds:       r.config.WaitTimeSeconds,
		VisibilityTimeout:     r.config.visibilityTimeout(),
		MessageAttributeNames: []string{queue.ChannelAttribute},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	}
}

// Start polls until ctx is done and forwards every received message to out
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Receiver shutting down")
			return
		default:
			result, err := r.consumer.ReceiveMessages(ctx, r.receiveInput())
			if err != nil {
				r.log.Error("Error receiving messages from SQS", zap.Error(err))
				select {
				case <-ctx.Done():
					r.log.Info("Receiver shutting down")
					return
				case <-time.After(r.config.ErrorBackoff):
				}
				continue
			}

			if len(result.Messages) == 0 {
				continue
			}

			r.log.Info("Received messages from SQS",
				zap.Int("message_count", len(result.Messages)),
				zap.Any("channels", countByChannel(result.Messages)))

			for _, msg := range result.Messages {
				select {
				case <-ctx.Done():
					r.log.Info("Receiver shutting down while sending messages")
					return
				case out <- msg:
				}
			}
		}
	}
}

// countByChannel tallies a batch by its channel attribute; messages without
// one are counted under ""
func countByChannel(msgs []types.Message) map[string]int {
	counts := make(map[string]int, len(msgs))
	for _, msg := range msgs {
		counts[channelAttribute(msg)]++
	}
	return counts
}

func channelAttribute(msg types.Message) string {
	attr, ok := msg.MessageAttributes[queue.ChannelAttribute]
	if !ok {
		return ""
	}
	return aws.ToString(attr.StringValue)
}
