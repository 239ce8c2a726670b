package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/internal/notifications"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type dbClient interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sequenceService interface {
	NextTicketNumber(tx *gorm.DB, now time.Time) (string, error)
}

// CreateInput opens a new ticket.
type CreateInput struct {
	UserID   uuid.UUID
	Subject  string
	Message  string
	Priority enums.TicketPriority
}

// ReplyInput appends a message to a ticket thread.
type ReplyInput struct {
	TicketID  uuid.UUID
	AuthorID  uuid.UUID
	FromStaff bool
	Body      string
}

// Service manages the support ticket desk.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.SupportTicket, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]models.SupportTicket, error)
	Reply(ctx context.Context, input ReplyInput) (*models.SupportTicketMessage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.TicketStatus) (*models.SupportTicket, error)
}

// ServiceParams carries support service dependencies.
type ServiceParams struct {
	DB            dbClient
	Repo          Repository
	Sequence      sequenceService
	Notifications notifications.Service
	Outbox        eventEmitter
}

type service struct {
	db     dbClient
	repo   Repository
	seq    sequenceService
	notify notifications.Service
	events eventEmitter
	now    func() time.Time
}

// NewService wires support dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "support repository required")
	}
	if params.Sequence == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sequence service required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		seq:    params.Sequence,
		notify: params.Notifications,
		events: params.Outbox,
		now:    time.Now,
	}, nil
}

// Create opens a ticket under a fresh daily-sequenced number.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.SupportTicket, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.TicketPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	var ticket *models.SupportTicket
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.seq.NextTicketNumber(tx, s.now().UTC())
		if err != nil {
			return err
		}
		ticket = &models.SupportTicket{
			ID:       uuid.New(),
			Number:   number,
			UserID:   input.UserID,
			Subject:  strings.TrimSpace(input.Subject),
			Message:  strings.TrimSpace(input.Message),
			Status:   enums.TicketStatusOpen,
			Priority: priority,
		}
		if err := s.repo.WithTx(tx).Create(ctx, ticket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket")
		}
		if s.events != nil {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventTicketCreated,
				AggregateType: enums.AggregateTicket,
				AggregateID:   ticket.ID,
				Data: map[string]any{
					"number":   ticket.Number,
					"user_id":  ticket.UserID.String(),
					"priority": string(ticket.Priority),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
	}
	if ticket == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	return ticket, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	tickets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	return tickets, nil
}

func (s *service) ListByStatus(ctx context.Context, status string, limit int) ([]models.SupportTicket, error) {
	if status != "" {
		if _, err := enums.ParseTicketStatus(status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket status")
		}
	}
	tickets, err := s.repo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	return tickets, nil
}

// Reply appends to the thread. A staff reply moves an open ticket to pending
// and notifies the requester; a requester reply on a closed ticket is
// rejected.
func (s *service) Reply(ctx context.Context, input ReplyInput) (*models.SupportTicketMessage, error) {
	if input.TicketID == uuid.Nil || input.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket and author ids required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}

	var message *models.SupportTicketMessage
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ticket, err := repo.GetByID(ctx, input.TicketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if ticket == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		if ticket.Status == enums.TicketStatusClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is closed")
		}
		if !input.FromStaff && ticket.UserID != input.AuthorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "ticket belongs to another user")
		}

		message = &models.SupportTicketMessage{
			ID:        uuid.New(),
			TicketID:  ticket.ID,
			AuthorID:  input.AuthorID,
			FromStaff: input.FromStaff,
			Body:      strings.TrimSpace(input.Body),
		}
		if err := repo.InsertMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert message")
		}

		if input.FromStaff && ticket.Status == enums.TicketStatusOpen {
			ticket.Status = enums.TicketStatusPending
			if err := repo.Save(ctx, ticket); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket")
			}
		}

		if input.FromStaff && s.notify != nil {
			return s.notify.Notify(ctx, tx, notifications.NotifyInput{
				UserID:  ticket.UserID,
				Type:    enums.NotificationTypeSupportReply,
				Title:   fmt.Sprintf("Réponse au ticket %s", ticket.Number),
				Message: "Le support a répondu à votre demande.",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// UpdateStatus moves a ticket forward along open→pending→resolved→closed.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.TicketStatus) (*models.SupportTicket, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket status")
	}

	var ticket *models.SupportTicket
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		if !current.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move ticket from %s to %s", current.Status, next))
		}

		current.Status = next
		if err := repo.Save(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket")
		}
		ticket = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}
