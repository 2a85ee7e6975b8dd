package registry

import (
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// MailConfigRepo treats mail_config as a singleton row. Get lazily
// creates the default when the table is empty; Upsert replaces whatever
// row exists.
type MailConfigRepo interface {
	Get(dbc dbctx.Context) (*registry.MailConfig, error)
	Upsert(dbc dbctx.Context, row *registry.MailConfig) (*registry.MailConfig, error)
}

type mailConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMailConfigRepo(db *gorm.DB, baseLog *logger.Logger) MailConfigRepo {
	return &mailConfigRepo{db: db, log: baseLog.With("repo", "MailConfigRepo")}
}

func (r *mailConfigRepo) Get(dbc dbctx.Context) (*registry.MailConfig, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out registry.MailConfig
	err := t.WithContext(dbc.Ctx).Order("created_at ASC").First(&out).Error
	if err == nil {
		return &out, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	def := registry.DefaultMailConfig()
	if err := t.WithContext(dbc.Ctx).Create(&def).Error; err != nil {
		return nil, err
	}
	r.log.Info("mail config initialized with defaults")
	return &def, nil
}

func (r *mailConfigRepo) Upsert(dbc dbctx.Context, row *registry.MailConfig) (*registry.MailConfig, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	current, err := r.Get(dbc)
	if err != nil {
		return nil, err
	}
	row.ID = current.ID
	row.CreatedAt = current.CreatedAt
	if err := t.WithContext(dbc.Ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
