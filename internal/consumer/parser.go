package consumer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// JSONMessageParser implements MessageParser for JSON-formatted chat messages
type JSONMessageParser struct {
	now func() time.Time
}

// NewJSONMessageParser creates a new JSON message parser
func NewJSONMessageParser() *JSONMessageParser {
	return &JSONMessageParser{now: time.Now}
}

// Parse parses a JSON message body into a ChatMessage. A missing channel id
// is left blank for the parser stage to resolve.
func (p *JSONMessageParser) Parse(body []byte) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	msg.ChannelID = strings.TrimSpace(msg.ChannelID)

	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = p.now().UTC()
	}

	return &msg, nil
}
