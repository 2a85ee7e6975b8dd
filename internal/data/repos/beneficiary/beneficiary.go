package beneficiary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/beneficiary"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type BeneficiaryRepo interface {
	Create(dbc dbctx.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*beneficiary.Beneficiary, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*beneficiary.Beneficiary, error)
	GetByDocumentID(dbc dbctx.Context, documentID string) (*beneficiary.Beneficiary, error)

	List(dbc dbctx.Context) ([]*beneficiary.Beneficiary, error)

	Update(dbc dbctx.Context, row *beneficiary.Beneficiary) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type beneficiaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBeneficiaryRepo(db *gorm.DB, baseLog *logger.Logger) BeneficiaryRepo {
	return &beneficiaryRepo{db: db, log: baseLog.With("repo", "BeneficiaryRepo")}
}

func (r *beneficiaryRepo) Create(dbc dbctx.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error) {
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

func (r *beneficiaryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*beneficiary.Beneficiary, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *beneficiaryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*beneficiary.Beneficiary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*beneficiary.Beneficiary
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *beneficiaryRepo) GetByDocumentID(dbc dbctx.Context, documentID string) (*beneficiary.Beneficiary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if documentID == "" {
		return nil, nil
	}
	var out beneficiary.Beneficiary
	err := t.WithContext(dbc.Ctx).Where("document_id = ?", documentID).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *beneficiaryRepo) List(dbc dbctx.Context) ([]*beneficiary.Beneficiary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*beneficiary.Beneficiary
	if err := t.WithContext(dbc.Ctx).Order("last_name ASC, first_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *beneficiaryRepo) Update(dbc dbctx.Context, row *beneficiary.Beneficiary) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *beneficiaryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&beneficiary.Beneficiary{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *beneficiaryRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&beneficiary.Beneficiary{}).Error
}
