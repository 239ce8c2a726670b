package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/internal/users"
	pkgauth "github.com/ayoubterari/entrecoiffeur-backend/pkg/auth"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/auth/session"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/config"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "entrecoiffeur",
	ExpirationMinutes: 15,
}

type stubDB struct{}

func (stubDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubUserRepo struct {
	usersByEmail map[string]*models.User
	sellers      map[uuid.UUID]*models.Seller
	lastLogin    map[uuid.UUID]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		usersByEmail: map[string]*models.User{},
		sellers:      map[uuid.UUID]*models.Seller{},
		lastLogin:    map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	s.usersByEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.usersByEmail[email], nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func (s *stubUserRepo) CreateSeller(ctx context.Context, seller *models.Seller) error {
	s.sellers[seller.UserID] = seller
	return nil
}

func (s *stubUserRepo) GetSellerByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	return s.sellers[userID], nil
}

func (s *stubUserRepo) GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	for _, seller := range s.sellers {
		if seller.ID == id {
			return seller, nil
		}
	}
	return nil, nil
}

type stubSession struct {
	tokens  map[string]string
	revoked []string
}

func newStubSession() *stubSession {
	return &stubSession{tokens: map[string]string{}}
}

func (s *stubSession) Generate(ctx context.Context, accessID string) (string, error) {
	token := fmt.Sprintf("refresh-%s", accessID)
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSession) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token := fmt.Sprintf("refresh-%s", newAccessID)
	s.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSession) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, accountType enums.AccountType) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Claire",
		LastName:     "Moreau",
		AccountType:  accountType,
		IsActive:     true,
	}
	repo.usersByEmail[email] = user
	return user
}

func newAuthService(t *testing.T, repo *stubUserRepo, sess *stubSession) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:          repo,
		SessionManager: sess,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newStubUserRepo()
	sess := newStubSession()
	user := seedUser(t, repo, "claire@example.fr", "motdepasse123", enums.AccountTypeBuyer)
	svc := newAuthService(t, repo, sess)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Claire@Example.fr", Password: "motdepasse123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.AccountType != enums.AccountTypeBuyer {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.SellerID != nil {
		t.Fatal("buyer token must not carry a seller id")
	}
	if resp.RefreshToken == "" || sess.tokens[claims.ID] != resp.RefreshToken {
		t.Fatalf("refresh token not stored under jti %q", claims.ID)
	}
	if _, ok := repo.lastLogin[user.ID]; !ok {
		t.Fatal("last login not recorded")
	}
	if resp.User == nil || resp.User.Email != "claire@example.fr" {
		t.Fatalf("unexpected user payload %+v", resp.User)
	}
}

func TestLoginProfessionalCarriesSellerClaim(t *testing.T) {
	repo := newStubUserRepo()
	sess := newStubSession()
	user := seedUser(t, repo, "salon@lumiere.fr", "motdepasse123", enums.AccountTypeProfessional)
	seller := &models.Seller{ID: uuid.New(), UserID: user.ID, ShopName: "Salon Lumière"}
	repo.sellers[user.ID] = seller
	svc := newAuthService(t, repo, sess)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "salon@lumiere.fr", Password: "motdepasse123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.SellerID == nil || *claims.SellerID != seller.ID {
		t.Fatalf("expected seller claim %s, got %v", seller.ID, claims.SellerID)
	}
	if resp.Seller == nil || resp.Seller.ShopName != "Salon Lumière" {
		t.Fatalf("unexpected seller payload %+v", resp.Seller)
	}
}

func TestLoginRejections(t *testing.T) {
	repo := newStubUserRepo()
	sess := newStubSession()
	user := seedUser(t, repo, "claire@example.fr", "motdepasse123", enums.AccountTypeBuyer)
	svc := newAuthService(t, repo, sess)

	cases := []struct {
		name string
		req  LoginRequest
		prep func()
	}{
		{name: "wrong password", req: LoginRequest{Email: "claire@example.fr", Password: "incorrect"}},
		{name: "unknown email", req: LoginRequest{Email: "autre@example.fr", Password: "motdepasse123"}},
		{name: "blank email", req: LoginRequest{Email: "  ", Password: "motdepasse123"}},
		{name: "deactivated account", req: LoginRequest{Email: "claire@example.fr", Password: "motdepasse123"}, prep: func() { user.IsActive = false }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prep != nil {
				tc.prep()
			}
			if _, err := svc.Login(context.Background(), tc.req); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	repo := newStubUserRepo()
	sess := newStubSession()
	seedUser(t, repo, "claire@example.fr", "motdepasse123", enums.AccountTypeBuyer)
	svc := newAuthService(t, repo, sess)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "claire@example.fr", Password: "motdepasse123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	oldClaims, _ := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	newClaims, err := pkgauth.ParseAccessToken(testJWTConfig, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatal("rotation must issue a fresh jti")
	}
	if newClaims.UserID != oldClaims.UserID || newClaims.AccountType != oldClaims.AccountType {
		t.Fatalf("identity claims must carry over, got %+v", newClaims)
	}

	// The consumed pair cannot be replayed.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(t, repo, newStubSession())

	_, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "not-a-jwt", RefreshToken: "x"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubUserRepo()
	sess := newStubSession()
	seedUser(t, repo, "claire@example.fr", "motdepasse123", enums.AccountTypeBuyer)
	svc := newAuthService(t, repo, sess)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "claire@example.fr", Password: "motdepasse123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, _ := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sess.revoked) != 1 || sess.revoked[0] != claims.ID {
		t.Fatalf("session not revoked: %+v", sess.revoked)
	}
	if err := svc.Logout(context.Background(), "  "); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
