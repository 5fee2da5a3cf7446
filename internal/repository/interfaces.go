package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

var (
	// ErrDuplicate is returned when an insert collides with an existing hash key
	ErrDuplicate = errors.New("activity already exists")
	// ErrNotFound is returned when no activity has the requested hash key
	ErrNotFound = errors.New("activity not found")
)

// ListQuery represents activity listing parameters
type ListQuery struct {
	Limit      int
	ActiveOnly bool
}

// ActivityRepository defines the interface for activity storage operations
type ActivityRepository interface {
	// InitSchema creates the category tables and their indexes if they don't exist
	InitSchema(ctx context.Context) error

	// Touch bumps updated_at of the row with hashKey and reports whether one existed
	Touch(ctx context.Context, category domain.Category, hashKey string, at time.Time) (bool, error)

	// FindByHash returns the row with hashKey or ErrNotFound
	FindByHash(ctx context.Context, category domain.Category, hashKey string) (*domain.Activity, error)

	// Insert stores a new row; a hash key collision returns ErrDuplicate
	Insert(ctx context.Context, category domain.Category, activity *domain.Activity) error

	// List returns rows ordered by updated_at, newest first
	List(ctx context.Context, category domain.Category, query ListQuery) ([]domain.Activity, error)

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
