package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, row *identity.User) (*identity.User, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*identity.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*identity.User, error)

	List(dbc dbctx.Context) ([]*identity.User, error)
	ListByRole(dbc dbctx.Context, role string) ([]*identity.User, error)
	CountByRole(dbc dbctx.Context, role string) (int64, error)

	Update(dbc dbctx.Context, row *identity.User) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, row *identity.User) (*identity.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*identity.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out identity.User
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*identity.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if email == "" {
		return nil, nil
	}
	var out identity.User
	err := t.WithContext(dbc.Ctx).Where("email = ?", email).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) List(dbc dbctx.Context) ([]*identity.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*identity.User
	if err := t.WithContext(dbc.Ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) ListByRole(dbc dbctx.Context, role string) ([]*identity.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*identity.User
	if role == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) CountByRole(dbc dbctx.Context, role string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(dbc.Ctx).
		Model(&identity.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *userRepo) Update(dbc dbctx.Context, row *identity.User) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&identity.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&identity.User{}).Error
}
