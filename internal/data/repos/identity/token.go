package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type TokenRepo interface {
	Create(dbc dbctx.Context, row *identity.UserToken) (*identity.UserToken, error)
	GetByHash(dbc dbctx.Context, hash string) (*identity.UserToken, error)
	RevokeByHash(dbc dbctx.Context, hash string) error
	RevokeByUserID(dbc dbctx.Context, userID uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type tokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenRepo(db *gorm.DB, baseLog *logger.Logger) TokenRepo {
	return &tokenRepo{db: db, log: baseLog.With("repo", "TokenRepo")}
}

func (r *tokenRepo) Create(dbc dbctx.Context, row *identity.UserToken) (*identity.UserToken, error) {
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

func (r *tokenRepo) GetByHash(dbc dbctx.Context, hash string) (*identity.UserToken, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if hash == "" {
		return nil, nil
	}
	var out identity.UserToken
	err := t.WithContext(dbc.Ctx).Where("token_hash = ?", hash).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *tokenRepo) RevokeByHash(dbc dbctx.Context, hash string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if hash == "" {
		return nil
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&identity.UserToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Updates(map[string]interface{}{"revoked_at": now, "updated_at": now}).Error
}

func (r *tokenRepo) RevokeByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&identity.UserToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Updates(map[string]interface{}{"revoked_at": now, "updated_at": now}).Error
}

func (r *tokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("expires_at < ?", before).
		Delete(&identity.UserToken{})
	return res.RowsAffected, res.Error
}
