package consumer

import (
	"context"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// Envelope carries one chat message through the ingest stage together with
// the callbacks that settle it on the queue
type Envelope struct {
	Message *domain.ChatMessage
	// ReceiveCount is how many times the queue has delivered the message,
	// including this delivery. Zero when unknown.
	ReceiveCount int
	ack          func(context.Context) error
	nack         func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(msg *domain.ChatMessage, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Message: msg,
		ack:     ack,
		nack:    nack,
	}
}

// Redelivered reports whether an earlier delivery of the message was left
// unsettled
func (e *Envelope) Redelivered() bool {
	return e.ReceiveCount > 1
}

// Ack settles the message once ingestion reached a final outcome
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack leaves the message for another attempt
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
