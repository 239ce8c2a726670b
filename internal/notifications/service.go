package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyInput carries one notification to deliver.
type NotifyInput struct {
	UserID  uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Link    *string
}

// ListInput pages through a user's notifications. Cursor is the RFC3339
// created_at of the last item of the previous page.
type ListInput struct {
	UserID     uuid.UUID
	Cursor     string
	UnreadOnly bool
	Limit      int
}

// Page is one page of notifications plus the cursor for the next one.
type Page struct {
	Items      []models.Notification `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
	Unread     int64                 `json:"unread"`
}

// Service delivers and serves in-app notifications.
type Service interface {
	Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) error
	List(ctx context.Context, input ListInput) (*Page, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the notification service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Notify appends a notification, joining the caller's transaction when one
// is provided.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   input.Title,
		Message: input.Message,
		Link:    input.Link,
	}
	if err := repo.Insert(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, input ListInput) (*Page, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	limit := pagination.Clamp(input.Limit, pagination.DefaultLimit)

	before, err := pagination.ParseTimeCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	items, err := s.repo.List(ctx, input.UserID, before, input.UnreadOnly, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	unread, err := s.repo.CountUnread(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}

	page := &Page{Items: items, Unread: unread}
	if len(items) == limit {
		page.NextCursor = pagination.EncodeTimeCursor(items[len(items)-1].CreatedAt)
	}
	return page, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and notification ids required")
	}
	updated, err := s.repo.MarkRead(ctx, userID, id, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return count, nil
}
