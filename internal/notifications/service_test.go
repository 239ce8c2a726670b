package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubNotificationRepo struct {
	items []models.Notification
}

func (s *stubNotificationRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, *notification)
	return nil
}

func (s *stubNotificationRepo) List(ctx context.Context, userID uuid.UUID, before *time.Time, unreadOnly bool, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.UserID != userID {
			continue
		}
		if before != nil && !n.CreatedAt.Before(*before) {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range s.items {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	for i := range s.items {
		n := &s.items[i]
		if n.ID == id && n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var count int64
	for i := range s.items {
		n := &s.items[i]
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func seedNotifications(t *testing.T, svc Service, userID uuid.UUID, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := svc.Notify(context.Background(), nil, NotifyInput{
			UserID:  userID,
			Type:    enums.NotificationTypeSystem,
			Title:   "bienvenue",
			Message: "votre compte est prêt",
		})
		if err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
}

func TestNotifyValidatesInput(t *testing.T) {
	svc, err := NewService(&stubNotificationRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Notify(context.Background(), nil, NotifyInput{
		Type:  enums.NotificationTypeSystem,
		Title: "x",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	err = svc.Notify(context.Background(), nil, NotifyInput{
		UserID: uuid.New(),
		Type:   enums.NotificationType("carrier_pigeon"),
		Title:  "x",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestListPagesWithCursor(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	seedNotifications(t, svc, userID, 5)
	// spread created_at so cursor ordering is deterministic
	base := time.Now().UTC().Add(-time.Hour)
	for i := range repo.items {
		repo.items[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	page, err := svc.List(context.Background(), ListInput{UserID: userID, Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor on a full page")
	}
	if page.Unread != 5 {
		t.Fatalf("expected 5 unread, got %d", page.Unread)
	}

	rest, err := svc.List(context.Background(), ListInput{UserID: userID, Limit: 3, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Items) != 2 {
		t.Fatalf("expected 2 items on second page, got %d", len(rest.Items))
	}
	if rest.NextCursor != "" {
		t.Fatalf("expected no cursor on final page, got %q", rest.NextCursor)
	}

	if _, err := svc.List(context.Background(), ListInput{UserID: userID, Cursor: "not-a-time"}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad cursor, got %v", err)
	}
}

func TestMarkReadRequiresOwnership(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	seedNotifications(t, svc, userID, 1)
	target := repo.items[0].ID

	if err := svc.MarkRead(context.Background(), uuid.New(), target); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), userID, target); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkRead(context.Background(), userID, target); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for already-read, got %v", err)
	}
}

func TestMarkAllReadCounts(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	seedNotifications(t, svc, userID, 3)
	seedNotifications(t, svc, uuid.New(), 2)

	count, err := svc.MarkAllRead(context.Background(), userID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 marked, got %d", count)
	}

	unread, err := repo.CountUnread(context.Background(), userID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}
