package auth

import (
	"github.com/ayoubterari/entrecoiffeur-backend/internal/users"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *users.UserDTO   `json:"user"`
	Seller       *users.SellerDTO `json:"seller,omitempty"`
}

// RefreshRequest carries the expired access token and its paired refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SellerProfileRequest holds the shop details required for professional signup.
type SellerProfileRequest struct {
	ShopName       string        `json:"shop_name" validate:"required"`
	LegalName      string        `json:"legal_name" validate:"required"`
	SIRET          string        `json:"siret" validate:"required,len=14"`
	TVANumber      *string       `json:"tva_number,omitempty"`
	Address        types.Address `json:"address" validate:"required"`
	DefaultTVARate *string       `json:"default_tva_rate,omitempty"`
}

// RegisterRequest contains the payload required to onboard a new account.
type RegisterRequest struct {
	FirstName   string                `json:"first_name" validate:"required"`
	LastName    string                `json:"last_name" validate:"required"`
	Email       string                `json:"email" validate:"required,email"`
	Password    string                `json:"password" validate:"required,min=8"`
	Phone       *string               `json:"phone,omitempty"`
	AccountType string                `json:"account_type" validate:"required"`
	Seller      *SellerProfileRequest `json:"seller,omitempty"`
	AcceptTOS   bool                  `json:"accept_tos"`
}

// RegisterResponse returns the created account and, for professionals, the shop profile.
type RegisterResponse struct {
	User   *users.UserDTO   `json:"user"`
	Seller *users.SellerDTO `json:"seller,omitempty"`
}
