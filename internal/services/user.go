package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	identityrepo "github.com/devlabsgt/backend/internal/data/repos/identity"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/envutil"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*identity.User, error)
	List(ctx context.Context) ([]*identity.User, error)
	Update(ctx context.Context, id uuid.UUID, name, role *string, active *bool) (*identity.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error
	EnsureDefaultSuper(ctx context.Context) error
}

type userService struct {
	db    *gorm.DB
	log   *logger.Logger
	users identityrepo.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, users identityrepo.UserRepo) UserService {
	return &userService{db: db, log: log.With("service", "UserService"), users: users}
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.users.GetByID(dbctx.New(ctx), id)
}

func (s *userService) List(ctx context.Context) ([]*identity.User, error) {
	return s.users.List(dbctx.New(ctx))
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, name, role *string, active *bool) (*identity.User, error) {
	user, err := s.users.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "user.update", "user not found", nil)
	}
	updates := map[string]interface{}{}
	if name != nil && strings.TrimSpace(*name) != "" {
		updates["name"] = strings.TrimSpace(*name)
	}
	if role != nil {
		if !identity.ValidRole(*role) {
			return nil, domainagg.NewError(domainagg.CodeValidation, "user.update", fmt.Sprintf("unrecognized role %q", *role), nil)
		}
		updates["role"] = *role
	}
	if active != nil {
		updates["active"] = *active
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.users.UpdateFields(dbctx.New(ctx), id, updates); err != nil {
		return nil, err
	}
	return s.users.GetByID(dbctx.New(ctx), id)
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return domainagg.NewError(domainagg.CodeValidation, "user.change_password", "password must be at least 8 characters", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdateFields(dbctx.New(ctx), id, map[string]interface{}{"password": string(hash)})
}

// EnsureDefaultSuper seeds the bootstrap Super user so a fresh install
// is never locked out. A no-op once any Super exists.
func (s *userService) EnsureDefaultSuper(ctx context.Context) error {
	count, err := s.users.CountByRole(dbctx.New(ctx), identity.RoleSuper)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := envutil.Get("SUPER_EMAIL", "super@localhost")
	password := envutil.Get("SUPER_PASSWORD", "")
	if password == "" {
		s.log.Warn("SUPER_PASSWORD unset, skipping default super seeding")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash super password: %w", err)
	}
	_, err = s.users.Create(dbctx.New(ctx), &identity.User{
		Email:    strings.ToLower(email),
		Password: string(hash),
		Name:     "Super",
		Role:     identity.RoleSuper,
		Active:   true,
	})
	if err != nil {
		return err
	}
	s.log.Info("default super user seeded", "email", email)
	return nil
}
