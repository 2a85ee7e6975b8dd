package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	identityrepo "github.com/devlabsgt/backend/internal/data/repos/identity"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
	"github.com/devlabsgt/backend/internal/platform/requestdata"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*identity.User, error)
	Login(ctx context.Context, email, password string) (access string, refresh string, user *identity.User, err error)
	Refresh(ctx context.Context, refreshToken string) (access string, refresh string, err error)
	Logout(ctx context.Context, refreshToken string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      identityrepo.UserRepo
	tokens     identityrepo.TokenRepo
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	users identityrepo.UserRepo,
	tokens identityrepo.TokenRepo,
	jwtSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:         db,
		log:        log.With("service", "AuthService"),
		users:      users,
		tokens:     tokens,
		secret:     []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) AccessTTL() time.Duration { return s.accessTTL }

func (s *authService) Register(ctx context.Context, name, email, password, role string) (*identity.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "auth.register", "name and email are required", nil)
	}
	if len(password) < 8 {
		return nil, domainagg.NewError(domainagg.CodeValidation, "auth.register", "password must be at least 8 characters", nil)
	}
	if role == "" {
		role = identity.RoleEncargado
	}
	if !identity.ValidRole(role) {
		return nil, domainagg.NewError(domainagg.CodeValidation, "auth.register", fmt.Sprintf("unrecognized role %q", role), nil)
	}

	existing, err := s.users.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainagg.NewError(domainagg.CodeConflict, "auth.register", "email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &identity.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     role,
		Active:   true,
	}
	if _, err := s.users.Create(dbctx.New(ctx), user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, *identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return "", "", nil, err
	}
	if user == nil || !user.Active {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}

	access, err := s.signAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}
	refresh, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return "", "", nil, err
	}
	return access, refresh, user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	row, err := s.tokens.GetByHash(dbctx.New(ctx), hashToken(refreshToken))
	if err != nil {
		return "", "", err
	}
	if row == nil || row.RevokedAt != nil || time.Now().After(row.ExpiresAt) {
		return "", "", fmt.Errorf("refresh token invalid or expired")
	}
	user, err := s.users.GetByID(dbctx.New(ctx), row.UserID)
	if err != nil {
		return "", "", err
	}
	if user == nil || !user.Active {
		return "", "", fmt.Errorf("refresh token invalid or expired")
	}

	var access, refresh string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if err := s.tokens.RevokeByHash(dbc, row.TokenHash); err != nil {
			return err
		}
		refresh, err = s.issueRefreshTokenTx(dbc, user.ID)
		if err != nil {
			return err
		}
		access, err = s.signAccessToken(user)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.RevokeByHash(dbctx.New(ctx), hashToken(refreshToken))
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SetContextFromToken validates the bearer token and stashes the
// resolved identity in the request context.
func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}

	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject")
	}
	user, err := s.users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return ctx, err
	}
	if user == nil || !user.Active {
		return ctx, fmt.Errorf("user not active")
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Role:        user.Role,
	}), nil
}

func (s *authService) signAccessToken(user *identity.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) issueRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.issueRefreshTokenTx(dbctx.New(ctx), userID)
}

func (s *authService) issueRefreshTokenTx(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	token := hex.EncodeToString(raw)
	_, err := s.tokens.Create(dbc, &identity.UserToken{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
