package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// ChannelAttribute names the message attribute carrying the source channel id
const ChannelAttribute = "ChannelID"

// QueuePublisher defines the interface for publishing chat messages to a queue
type QueuePublisher interface {
	PublishMessage(ctx context.Context, msg *domain.ChatMessage) error
}

// QueueConsumer defines the interface for consuming messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
