package registry

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// ObjectiveRepo and LineRepo back the two reference catalogs projects
// link against. Neither carries derived state.

type ObjectiveRepo interface {
	Create(dbc dbctx.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.GlobalObjective, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.GlobalObjective, error)
	List(dbc dbctx.Context) ([]*registry.GlobalObjective, error)
	Update(dbc dbctx.Context, row *registry.GlobalObjective) error
	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type objectiveRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObjectiveRepo(db *gorm.DB, baseLog *logger.Logger) ObjectiveRepo {
	return &objectiveRepo{db: db, log: baseLog.With("repo", "ObjectiveRepo")}
}

func (r *objectiveRepo) Create(dbc dbctx.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error) {
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

func (r *objectiveRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.GlobalObjective, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out registry.GlobalObjective
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *objectiveRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.GlobalObjective, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*registry.GlobalObjective
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *objectiveRepo) List(dbc dbctx.Context) ([]*registry.GlobalObjective, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*registry.GlobalObjective
	if err := t.WithContext(dbc.Ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *objectiveRepo) Update(dbc dbctx.Context, row *registry.GlobalObjective) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *objectiveRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&registry.GlobalObjective{}).Error
}

type LineRepo interface {
	Create(dbc dbctx.Context, row *registry.StrategicLine) (*registry.StrategicLine, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.StrategicLine, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.StrategicLine, error)
	List(dbc dbctx.Context) ([]*registry.StrategicLine, error)
	Update(dbc dbctx.Context, row *registry.StrategicLine) error
	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type lineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLineRepo(db *gorm.DB, baseLog *logger.Logger) LineRepo {
	return &lineRepo{db: db, log: baseLog.With("repo", "LineRepo")}
}

func (r *lineRepo) Create(dbc dbctx.Context, row *registry.StrategicLine) (*registry.StrategicLine, error) {
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

func (r *lineRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*registry.StrategicLine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out registry.StrategicLine
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *lineRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*registry.StrategicLine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*registry.StrategicLine
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lineRepo) List(dbc dbctx.Context) ([]*registry.StrategicLine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*registry.StrategicLine
	if err := t.WithContext(dbc.Ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lineRepo) Update(dbc dbctx.Context, row *registry.StrategicLine) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *lineRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&registry.StrategicLine{}).Error
}
