package consumer

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/queue"
)

var errMissingChannel = errors.New("message has no channel_id")

// ParserStage turns queue messages into chat message envelopes. Messages
// that cannot become a chat message are deleted from the queue.
type ParserStage struct {
	consumer queue.QueueConsumer
	parser   MessageParser
	log      *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(consumer queue.QueueConsumer, parser MessageParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		consumer: consumer,
		parser:   parser,
		log:      log,
	}
}

// Start parses messages from in until it closes or ctx is done
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- envelope:
			}
		}
	}
}

func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	queueID := aws.ToString(msg.MessageId)

	chatMsg, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err == nil {
		err = p.resolveChannel(chatMsg, msg)
	}
	if err != nil {
		p.log.Warn("Dropping unparseable message",
			zap.String("message_id", queueID),
			zap.Error(err))
		if err := p.deleteMessage(ctx, msg); err != nil {
			p.log.Error("Failed to delete malformed message",
				zap.String("message_id", queueID),
				zap.Error(err))
		}
		return nil
	}

	if chatMsg.MessageID == "" {
		chatMsg.MessageID = queueID
	}

	receiveCount := approximateReceiveCount(msg)

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	// Left alone, the message reappears once its visibility timeout lapses.
	nack := func(ctx context.Context) error {
		p.log.Info("Leaving message for redelivery",
			zap.String("message_id", queueID),
			zap.String("channel_id", chatMsg.ChannelID),
			zap.Int("receive_count", receiveCount))
		return nil
	}

	envelope := NewEnvelope(chatMsg, ack, nack)
	envelope.ReceiveCount = receiveCount

	if envelope.Redelivered() {
		p.log.Debug("Message redelivered",
			zap.String("message_id", chatMsg.MessageID),
			zap.String("channel_id", chatMsg.ChannelID),
			zap.String("channel_name", chatMsg.ChannelName),
			zap.Int("receive_count", receiveCount))
	}

	return envelope
}

// resolveChannel fills a missing channel id from the queue attribute set by
// the publisher. The body wins when both are present.
func (p *ParserStage) resolveChannel(chatMsg *domain.ChatMessage, msg types.Message) error {
	attr := strings.TrimSpace(channelAttribute(msg))

	if chatMsg.ChannelID == "" {
		chatMsg.ChannelID = attr
	} else if attr != "" && attr != chatMsg.ChannelID {
		p.log.Warn("Channel attribute disagrees with message body",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.String("channel_id", chatMsg.ChannelID),
			zap.String("attribute_channel_id", attr))
	}

	if chatMsg.ChannelID == "" {
		return errMissingChannel
	}
	return nil
}

func approximateReceiveCount(msg types.Message) int {
	n, err := strconv.Atoi(msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil {
		return 0
	}
	return n
}

func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.log.Error("Failed to delete message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	p.log.Debug("Deleted message from SQS",
		zap.String("message_id", aws.ToString(msg.MessageId)))
	return nil
}
