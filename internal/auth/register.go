package auth

import (
	"context"
	"strings"

	"github.com/ayoubterari/entrecoiffeur-backend/internal/users"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/config"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterService handles account onboarding.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             dbClient
	Users          users.Repository
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          dbClient
	users       users.Repository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &registerService{
		db:          params.DB,
		users:       params.Users,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.AcceptTOS {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	accountType, err := enums.ParseAccountType(strings.TrimSpace(req.AccountType))
	if err != nil || accountType == enums.AccountTypeAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}
	if accountType == enums.AccountTypeProfessional && req.Seller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller profile required for professional accounts")
	}
	if accountType != enums.AccountTypeProfessional && req.Seller != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller profile only allowed for professional accounts")
	}

	var tvaRate decimal.Decimal
	if req.Seller != nil {
		if strings.TrimSpace(req.Seller.ShopName) == "" || strings.TrimSpace(req.Seller.LegalName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and legal names are required")
		}
		if len(strings.TrimSpace(req.Seller.SIRET)) != 14 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "siret must be 14 digits")
		}
		tvaRate, err = resolveDefaultTVARate(req.Seller.DefaultTVARate)
		if err != nil {
			return nil, err
		}
	}

	if err := security.CheckPasswordStrength(req.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var response *RegisterResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		existing, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        req.Phone,
			AccountType:  accountType,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		response = &RegisterResponse{User: users.FromModel(user)}

		if req.Seller == nil {
			return nil
		}
		seller := &models.Seller{
			ID:             uuid.New(),
			UserID:         user.ID,
			ShopName:       strings.TrimSpace(req.Seller.ShopName),
			LegalName:      strings.TrimSpace(req.Seller.LegalName),
			SIRET:          strings.TrimSpace(req.Seller.SIRET),
			TVANumber:      req.Seller.TVANumber,
			Address:        req.Seller.Address,
			DefaultTVARate: tvaRate,
			IsActive:       true,
		}
		if err := repo.CreateSeller(ctx, seller); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller profile")
		}
		response.Seller = users.SellerFromModel(seller)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func resolveDefaultTVARate(raw *string) (decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return decimal.NewFromInt(20), nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid default tva rate")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "default tva rate must be between 0 and 100")
	}
	return rate, nil
}
