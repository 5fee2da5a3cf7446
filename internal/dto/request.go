package dto

// SubmitMessageRequest represents one chat message forwarded by the gateway
type SubmitMessageRequest struct {
	MessageID   string `json:"message_id"`
	ChannelID   string `json:"channel_id" binding:"required"`
	ChannelName string `json:"channel_name"`
	Author      string `json:"author"`
	Text        string `json:"text" binding:"required"`
}

// SubmitMessagesBulkRequest represents a batch of chat messages
type SubmitMessagesBulkRequest struct {
	Messages []SubmitMessageRequest `json:"messages" binding:"required,min=1,max=100,dive"`
}

// ListActivitiesRequest represents an activity listing query
type ListActivitiesRequest struct {
	Category   string `uri:"category" binding:"required"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	ActiveOnly bool   `form:"active"`
}

// GetActivityRequest addresses one stored activity by its link hash
type GetActivityRequest struct {
	Category string `uri:"category" binding:"required"`
	HashKey  string `uri:"hash" binding:"required,len=32,hexadecimal"`
}
