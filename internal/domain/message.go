package domain

import "time"

// ChatMessage is a message delivered by the chat gateway
type ChatMessage struct {
	MessageID   string    `json:"message_id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	Author      string    `json:"author,omitempty"`
	Text        string    `json:"text"`
	ReceivedAt  time.Time `json:"received_at"`
}
