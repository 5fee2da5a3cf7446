package consumer

import (
	"context"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/ingest"
)

// MessageParser defines the interface for parsing raw message bytes into chat messages
type MessageParser interface {
	Parse(body []byte) (*domain.ChatMessage, error)
}

// MessageHandler processes one chat message
type MessageHandler interface {
	Handle(ctx context.Context, msg domain.ChatMessage) (ingest.Result, error)
}

// Recorder counts consumed messages by outcome
type Recorder interface {
	MessageConsumed(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) MessageConsumed(string) {}
