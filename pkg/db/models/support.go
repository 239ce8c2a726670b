package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
)

// SupportTicket is a user-raised issue with a daily-sequenced number.
type SupportTicket struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number    string                 `gorm:"column:number;not null;uniqueIndex"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Subject   string                 `gorm:"column:subject;not null"`
	Message   string                 `gorm:"column:message;not null"`
	Status    enums.TicketStatus     `gorm:"column:status;type:text;not null;default:'open'"`
	Priority  enums.TicketPriority   `gorm:"column:priority;type:text;not null;default:'medium'"`
	Messages  []SupportTicketMessage `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// SupportTicketMessage is one reply in a ticket thread.
type SupportTicketMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TicketID  uuid.UUID `gorm:"column:ticket_id;type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	FromStaff bool      `gorm:"column:from_staff;not null;default:false"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
