package projects

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// ProjectRepo persists the project aggregate. Loads always bring the
// full aggregate back so the consistency rules can be evaluated over
// every child collection.
type ProjectRepo interface {
	Create(dbc dbctx.Context, row *project.Project) (*project.Project, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*project.Project, error)

	List(dbc dbctx.Context) ([]*project.Project, error)
	ListByStatus(dbc dbctx.Context, statuses []string) ([]*project.Project, error)
	ListByEncargado(dbc dbctx.Context, userID uuid.UUID) ([]*project.Project, error)
	ListNumbersByYear(dbc dbctx.Context, year int) ([]string, error)
	ListExpiredActive(dbc dbctx.Context, now time.Time) ([]*project.Project, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	ReplaceDonors(dbc dbctx.Context, projectID uuid.UUID, rows []project.Donor) error
	SaveDonorPercentages(dbc dbctx.Context, rows []project.Donor) error
	ReplaceObjectives(dbc dbctx.Context, projectID uuid.UUID, objectiveIDs []uuid.UUID) error
	ReplaceStrategicLines(dbc dbctx.Context, projectID uuid.UUID, lineIDs []uuid.UUID) error
	ReplaceLocations(dbc dbctx.Context, projectID uuid.UUID, rows []project.Location) error
	ReplaceBeneficiaries(dbc dbctx.Context, projectID uuid.UUID, rows []project.ProjectBeneficiary) error

	CreateActivity(dbc dbctx.Context, row *project.Activity) (*project.Activity, error)
	SaveActivity(dbc dbctx.Context, row *project.Activity) error
	SaveActivityPercentages(dbc dbctx.Context, rows []project.Activity) error

	CreateAssociations(dbc dbctx.Context, rows []project.ActivityBeneficiary) error
	GetAssociation(dbc dbctx.Context, activityID, beneficiaryID uuid.UUID) (*project.ActivityBeneficiary, error)
	UpdateAssociation(dbc dbctx.Context, row *project.ActivityBeneficiary) error

	CreateEvidences(dbc dbctx.Context, rows []project.Evidence) error
	GetEvidence(dbc dbctx.Context, evidenceID uuid.UUID) (*project.Evidence, error)
	DeleteEvidence(dbc dbctx.Context, evidenceID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) base(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func withAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Donors").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Activities.Beneficiaries").
		Preload("Beneficiaries").
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return db.Order("rank ASC")
		}).
		Preload("Evidences").
		Preload("Objectives").
		Preload("StrategicLines")
}

func (r *projectRepo) Create(dbc dbctx.Context, row *project.Project) (*project.Project, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*project.Project, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out project.Project
	err := withAggregate(r.base(dbc)).Where("id = ?", id).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) List(dbc dbctx.Context) ([]*project.Project, error) {
	var out []*project.Project
	if err := withAggregate(r.base(dbc)).Order("number DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListByStatus(dbc dbctx.Context, statuses []string) ([]*project.Project, error) {
	var out []*project.Project
	if len(statuses) == 0 {
		return out, nil
	}
	if err := withAggregate(r.base(dbc)).
		Where("status IN ?", statuses).
		Order("number DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListByEncargado(dbc dbctx.Context, userID uuid.UUID) ([]*project.Project, error) {
	var out []*project.Project
	if userID == uuid.Nil {
		return out, nil
	}
	if err := withAggregate(r.base(dbc)).
		Where("encargado_id = ?", userID).
		Order("number DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListNumbersByYear(dbc dbctx.Context, year int) ([]string, error) {
	var out []string
	prefix := strconv.Itoa(year) + "-"
	if err := r.base(dbc).
		Model(&project.Project{}).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListExpiredActive(dbc dbctx.Context, now time.Time) ([]*project.Project, error) {
	var out []*project.Project
	if err := r.base(dbc).
		Where("status = ? AND end_date < ?", project.StatusActive, now).
		Order("end_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.base(dbc).
		Model(&project.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *projectRepo) ReplaceDonors(dbc dbctx.Context, projectID uuid.UUID, rows []project.Donor) error {
	if projectID == uuid.Nil {
		return nil
	}
	q := r.base(dbc)
	if err := q.Where("project_id = ?", projectID).Delete(&project.Donor{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ProjectID = projectID
	}
	return q.Create(&rows).Error
}

// SaveDonorPercentages writes back only the derived share of each
// funding line after a recomputation.
func (r *projectRepo) SaveDonorPercentages(dbc dbctx.Context, rows []project.Donor) error {
	q := r.base(dbc)
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			continue
		}
		if err := q.Model(&project.Donor{}).
			Where("id = ?", rows[i].ID).
			Updates(map[string]interface{}{
				"percentage": rows[i].Percentage,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *projectRepo) ReplaceObjectives(dbc dbctx.Context, projectID uuid.UUID, objectiveIDs []uuid.UUID) error {
	if projectID == uuid.Nil {
		return nil
	}
	q := r.base(dbc)
	if err := q.Where("project_id = ?", projectID).Delete(&project.ProjectObjective{}).Error; err != nil {
		return err
	}
	if len(objectiveIDs) == 0 {
		return nil
	}
	rows := make([]project.ProjectObjective, 0, len(objectiveIDs))
	for _, id := range objectiveIDs {
		rows = append(rows, project.ProjectObjective{ProjectID: projectID, ObjectiveID: id})
	}
	return q.Create(&rows).Error
}

func (r *projectRepo) ReplaceStrategicLines(dbc dbctx.Context, projectID uuid.UUID, lineIDs []uuid.UUID) error {
	if projectID == uuid.Nil {
		return nil
	}
	q := r.base(dbc)
	if err := q.Where("project_id = ?", projectID).Delete(&project.ProjectStrategicLine{}).Error; err != nil {
		return err
	}
	if len(lineIDs) == 0 {
		return nil
	}
	rows := make([]project.ProjectStrategicLine, 0, len(lineIDs))
	for _, id := range lineIDs {
		rows = append(rows, project.ProjectStrategicLine{ProjectID: projectID, StrategicLineID: id})
	}
	return q.Create(&rows).Error
}

func (r *projectRepo) ReplaceLocations(dbc dbctx.Context, projectID uuid.UUID, rows []project.Location) error {
	if projectID == uuid.Nil {
		return nil
	}
	q := r.base(dbc)
	if err := q.Where("project_id = ?", projectID).Delete(&project.Location{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ProjectID = projectID
	}
	return q.Create(&rows).Error
}

func (r *projectRepo) ReplaceBeneficiaries(dbc dbctx.Context, projectID uuid.UUID, rows []project.ProjectBeneficiary) error {
	if projectID == uuid.Nil {
		return nil
	}
	q := r.base(dbc)
	if err := q.Where("project_id = ?", projectID).Delete(&project.ProjectBeneficiary{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ProjectID = projectID
	}
	return q.Create(&rows).Error
}

func (r *projectRepo) CreateActivity(dbc dbctx.Context, row *project.Activity) (*project.Activity, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *projectRepo) SaveActivity(dbc dbctx.Context, row *project.Activity) error {
	if row == nil {
		return nil
	}
	return r.base(dbc).Omit("Beneficiaries").Save(row).Error
}

// SaveActivityPercentages writes back only the derived budget share of
// each activity after a recomputation.
func (r *projectRepo) SaveActivityPercentages(dbc dbctx.Context, rows []project.Activity) error {
	q := r.base(dbc)
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			continue
		}
		if err := q.Model(&project.Activity{}).
			Where("id = ?", rows[i].ID).
			Updates(map[string]interface{}{
				"percentage_of_budget": rows[i].PctOfBudget,
				"updated_at":           now,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *projectRepo) CreateAssociations(dbc dbctx.Context, rows []project.ActivityBeneficiary) error {
	if len(rows) == 0 {
		return nil
	}
	return r.base(dbc).Create(&rows).Error
}

func (r *projectRepo) GetAssociation(dbc dbctx.Context, activityID, beneficiaryID uuid.UUID) (*project.ActivityBeneficiary, error) {
	if activityID == uuid.Nil || beneficiaryID == uuid.Nil {
		return nil, nil
	}
	var out project.ActivityBeneficiary
	err := r.base(dbc).
		Where("activity_id = ? AND beneficiary_id = ?", activityID, beneficiaryID).
		First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) UpdateAssociation(dbc dbctx.Context, row *project.ActivityBeneficiary) error {
	if row == nil {
		return nil
	}
	return r.base(dbc).Save(row).Error
}

func (r *projectRepo) CreateEvidences(dbc dbctx.Context, rows []project.Evidence) error {
	if len(rows) == 0 {
		return nil
	}
	return r.base(dbc).Create(&rows).Error
}

func (r *projectRepo) GetEvidence(dbc dbctx.Context, evidenceID uuid.UUID) (*project.Evidence, error) {
	if evidenceID == uuid.Nil {
		return nil, nil
	}
	var out project.Evidence
	err := r.base(dbc).Where("id = ?", evidenceID).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) DeleteEvidence(dbc dbctx.Context, evidenceID uuid.UUID) error {
	if evidenceID == uuid.Nil {
		return nil
	}
	return r.base(dbc).Where("id = ?", evidenceID).Delete(&project.Evidence{}).Error
}
