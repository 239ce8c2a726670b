package notifications

import (
	"context"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists in-app notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, before *time.Time, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed notification repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) List(ctx context.Context, userID uuid.UUID, before *time.Time, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		UpdateColumn("read_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", at)
	return result.RowsAffected, result.Error
}
