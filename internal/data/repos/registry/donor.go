package registry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type DonorRepo interface {
	Create(dbc dbctx.Context, row *registry.Donor) (*registry.Donor, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.Donor, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.Donor, error)
	List(dbc dbctx.Context, activeOnly bool) ([]*registry.Donor, error)
	Update(dbc dbctx.Context, row *registry.Donor) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	CountProjectReferences(dbc dbctx.Context, id uuid.UUID) (int64, error)
	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type donorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDonorRepo(db *gorm.DB, baseLog *logger.Logger) DonorRepo {
	return &donorRepo{db: db, log: baseLog.With("repo", "DonorRepo")}
}

func (r *donorRepo) Create(dbc dbctx.Context, row *registry.Donor) (*registry.Donor, error) {
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

func (r *donorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.Donor, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out registry.Donor
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *donorRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.Donor, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*registry.Donor
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *donorRepo) List(dbc dbctx.Context, activeOnly bool) ([]*registry.Donor, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []*registry.Donor
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *donorRepo) Update(dbc dbctx.Context, row *registry.Donor) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *donorRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&registry.Donor{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *donorRepo) CountProjectReferences(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Table("project_donor").
		Where("donor_id = ?", id).
		Count(&n).Error
	return n, err
}

func (r *donorRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&registry.Donor{}).Error
}
