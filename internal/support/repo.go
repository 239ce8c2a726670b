package support

import (
	"context"
	"errors"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists support tickets and their threads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.SupportTicket) error
	Save(ctx context.Context, ticket *models.SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]models.SupportTicket, error)
	InsertMessage(ctx context.Context, message *models.SupportTicketMessage) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed support repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repositoryImpl) Save(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Omit("Messages").Save(ticket).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ticket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repositoryImpl) ListByStatus(ctx context.Context, status string, limit int) ([]models.SupportTicket, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tickets []models.SupportTicket
	err := query.Order("created_at DESC").Limit(limit).Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repositoryImpl) InsertMessage(ctx context.Context, message *models.SupportTicketMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
