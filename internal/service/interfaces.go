package service

import (
	"context"

	"github.com/DIP-Sharing-Board/discord-bot/internal/dto"
)

// ActivityServicer defines the interface for activity service operations
type ActivityServicer interface {
	SubmitMessage(ctx context.Context, req *dto.SubmitMessageRequest) (string, error)
	SubmitMessages(ctx context.Context, reqs []dto.SubmitMessageRequest) ([]string, []string, error)
	ListActivities(ctx context.Context, req *dto.ListActivitiesRequest) (*dto.ListActivitiesResponse, error)
	GetActivity(ctx context.Context, req *dto.GetActivityRequest) (*dto.ActivityResponse, error)
	Ping(ctx context.Context) error
}
