package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Repository implements ActivityRepository with gorm
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new gorm repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

func (r *Repository) table(ctx context.Context, category domain.Category) *gorm.DB {
	return r.client.DB().WithContext(ctx).Table(category.Table())
}

// InitSchema migrates the camps, competitions and others tables
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.client.DB().WithContext(ctx).AutoMigrate(domain.SchemaModels()...); err != nil {
		return fmt.Errorf("failed to migrate activity tables: %w", err)
	}

	r.log.Info("Database schema initialized successfully")
	return nil
}

func (r *Repository) Touch(ctx context.Context, category domain.Category, hashKey string, at time.Time) (bool, error) {
	result := r.table(ctx, category).
		Where("hash_link = ?", hashKey).
		UpdateColumn("updated_at", at.UTC())
	if result.Error != nil {
		return false, fmt.Errorf("failed to touch activity: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindByHash(ctx context.Context, category domain.Category, hashKey string) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.table(ctx, category).Where("hash_link = ?", hashKey).Take(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	return &activity, nil
}

func (r *Repository) Insert(ctx context.Context, category domain.Category, activity *domain.Activity) error {
	if err := r.table(ctx, category).Create(activity).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, activity.HashKey)
		}
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, category domain.Category, query repository.ListQuery) ([]domain.Activity, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	tx := r.table(ctx, category)
	if query.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var activities []domain.Activity
	if err := tx.Order("updated_at DESC").Order("id DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.client.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.client.Close()
}

// isDuplicate recognizes unique violations whether or not the dialect
// translated them
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
