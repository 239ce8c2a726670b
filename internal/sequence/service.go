package sequence

import (
	"fmt"
	"time"

	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	scopeInvoice = "invoice"
	scopeTicket  = "support_ticket"
)

// Service mints legal document numbers from the counter table.
type Service interface {
	NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error)
	NextTicketNumber(tx *gorm.DB, now time.Time) (string, error)
}

type service struct {
	repo Repository
}

// NewService wires the numbering service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sequence repository required")
	}
	return &service{repo: repo}, nil
}

// NextInvoiceNumber returns FAC-<year>-<5-digit sequence>, sequenced per year.
func (s *service) NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	period := now.UTC().Format("2006")
	value, err := s.repo.NextTx(tx, scopeInvoice, period)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next invoice sequence")
	}
	return fmt.Sprintf("FAC-%s-%05d", period, value), nil
}

// NextTicketNumber returns SUP-<YYYYMMDD>-<3-digit sequence>, sequenced per day.
func (s *service) NextTicketNumber(tx *gorm.DB, now time.Time) (string, error) {
	period := now.UTC().Format("20060102")
	value, err := s.repo.NextTx(tx, scopeTicket, period)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next ticket sequence")
	}
	return fmt.Sprintf("SUP-%s-%03d", period, value), nil
}
