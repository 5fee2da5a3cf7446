package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/dto"
	"github.com/DIP-Sharing-Board/discord-bot/internal/queue"
	"github.com/DIP-Sharing-Board/discord-bot/internal/repository"
)

var (
	// ErrInvalidRequest marks caller mistakes that map to a 400 response
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks lookups of activities that were never stored
	ErrNotFound = errors.New("not found")
)

const deadlineLayout = "2006-01-02"

// ActivityService accepts chat messages for ingestion and serves stored activities
type ActivityService struct {
	publisher  queue.QueuePublisher
	repository repository.ActivityRepository
	now        func() time.Time
	log        *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(publisher queue.QueuePublisher, repo repository.ActivityRepository, log *zap.Logger) *ActivityService {
	return &ActivityService{
		publisher:  publisher,
		repository: repo,
		now:        time.Now,
		log:        log,
	}
}

// SubmitMessage queues a single chat message and returns its message id.
// A missing message id is replaced with a random one.
func (s *ActivityService) SubmitMessage(ctx context.Context, req *dto.SubmitMessageRequest) (string, error) {
	channelID := strings.TrimSpace(req.ChannelID)
	if channelID == "" {
		return "", fmt.Errorf("%w: channel_id must not be blank", ErrInvalidRequest)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", fmt.Errorf("%w: text must not be blank", ErrInvalidRequest)
	}

	messageID := strings.TrimSpace(req.MessageID)
	if messageID == "" {
		messageID = uuid.NewString()
	}

	msg := &domain.ChatMessage{
		MessageID:   messageID,
		ChannelID:   channelID,
		ChannelName: req.ChannelName,
		Author:      req.Author,
		Text:        text,
		ReceivedAt:  s.now().UTC(),
	}

	if err := s.publisher.PublishMessage(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to publish message to queue: %w", err)
	}

	return messageID, nil
}

// SubmitMessages queues each message independently and collects per-message errors
func (s *ActivityService) SubmitMessages(ctx context.Context, reqs []dto.SubmitMessageRequest) ([]string, []string, error) {
	var messageIDs []string
	var errs []string

	for i := range reqs {
		messageID, err := s.SubmitMessage(ctx, &reqs[i])
		if err != nil {
			errs = append(errs, err.Error())
			s.log.Warn("Failed to submit message in bulk",
				zap.Int("index", i),
				zap.String("channel_id", reqs[i].ChannelID),
				zap.Error(err))
			continue
		}
		messageIDs = append(messageIDs, messageID)
	}

	return messageIDs, errs, nil
}

// ListActivities returns stored activities of one category, most recently seen first
func (s *ActivityService) ListActivities(ctx context.Context, req *dto.ListActivitiesRequest) (*dto.ListActivitiesResponse, error) {
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		s.log.Warn("Invalid activity category",
			zap.String("category", req.Category))
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	query := repository.ListQuery{
		Limit:      req.Limit,
		ActiveOnly: req.ActiveOnly,
	}

	s.log.Debug("Listing activities",
		zap.String("category", string(category)),
		zap.Int("limit", query.Limit),
		zap.Bool("active_only", query.ActiveOnly))

	activities, err := s.repository.List(ctx, category, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities from repository: %w", err)
	}

	response := &dto.ListActivitiesResponse{
		Category:   string(category),
		Count:      len(activities),
		Activities: make([]dto.ActivityResponse, 0, len(activities)),
	}

	for _, a := range activities {
		response.Activities = append(response.Activities, toActivityResponse(a))
	}

	return response, nil
}

// GetActivity returns the stored activity of one category with the given hash key
func (s *ActivityService) GetActivity(ctx context.Context, req *dto.GetActivityRequest) (*dto.ActivityResponse, error) {
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	hashKey := strings.ToLower(strings.TrimSpace(req.HashKey))

	activity, err := s.repository.FindByHash(ctx, category, hashKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %s activity with hash key %s", ErrNotFound, category, hashKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find activity in repository: %w", err)
	}

	resp := toActivityResponse(*activity)
	return &resp, nil
}

// Ping checks the backing store
func (s *ActivityService) Ping(ctx context.Context) error {
	if err := s.repository.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping repository: %w", err)
	}
	return nil
}

func toActivityResponse(a domain.Activity) dto.ActivityResponse {
	resp := dto.ActivityResponse{
		HashKey:   a.HashKey,
		Link:      a.Link,
		Topic:     a.Topic,
		ImageURL:  a.ImageURL,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
	if a.Deadline != nil {
		resp.Deadline = a.Deadline.UTC().Format(deadlineLayout)
	}
	return resp
}
