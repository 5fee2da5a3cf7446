package ingest

import (
	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// Router maps chat channels to activity categories
type Router struct {
	channels map[string]domain.Category
}

// NewRouter creates a router from the configured channel identifiers
func NewRouter(channels config.Channels) *Router {
	return &Router{channels: map[string]domain.Category{
		channels.Camp:        domain.CategoryCamp,
		channels.Competition: domain.CategoryCompetition,
		channels.Other:       domain.CategoryOther,
	}}
}

// Route returns the category of channelID; false means the channel is not
// watched
func (r *Router) Route(channelID string) (domain.Category, bool) {
	if channelID == "" {
		return "", false
	}
	category, ok := r.channels[channelID]
	return category, ok
}
