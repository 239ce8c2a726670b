package users

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Phone       *string           `json:"phone,omitempty"`
	AccountType enums.AccountType `json:"account_type"`
	IsActive    bool              `json:"is_active"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SellerDTO is the transport shape of a professional shop profile.
type SellerDTO struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ShopName       string          `json:"shop_name"`
	LegalName      string          `json:"legal_name"`
	SIRET          string          `json:"siret"`
	TVANumber      *string         `json:"tva_number,omitempty"`
	Address        types.Address   `json:"address"`
	DefaultTVARate decimal.Decimal `json:"default_tva_rate"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	AccountType  enums.AccountType
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		AccountType: u.AccountType,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func SellerFromModel(s *models.Seller) *SellerDTO {
	if s == nil {
		return nil
	}
	return &SellerDTO{
		ID:             s.ID,
		UserID:         s.UserID,
		ShopName:       s.ShopName,
		LegalName:      s.LegalName,
		SIRET:          s.SIRET,
		TVANumber:      s.TVANumber,
		Address:        s.Address,
		DefaultTVARate: s.DefaultTVARate,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	accountType := c.AccountType
	if accountType == "" {
		accountType = enums.AccountTypeBuyer
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		AccountType:  accountType,
		IsActive:     true,
	}
}
