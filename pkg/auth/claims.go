package auth

import (
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	SellerID    *uuid.UUID
	AccountType enums.AccountType
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID         `json:"user_id"`
	SellerID    *uuid.UUID        `json:"seller_id,omitempty"`
	AccountType enums.AccountType `json:"account_type"`
	jwt.RegisteredClaims
}
