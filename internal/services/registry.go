package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	registryrepo "github.com/devlabsgt/backend/internal/data/repos/registry"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// RegistryService fronts the three reference catalogs: donors, global
// objectives and strategic lines. Plain keyed records, no derived state.
type RegistryService interface {
	CreateDonor(ctx context.Context, row *registry.Donor) (*registry.Donor, error)
	GetDonor(ctx context.Context, id uuid.UUID) (*registry.Donor, error)
	ListDonors(ctx context.Context, activeOnly bool) ([]*registry.Donor, error)
	UpdateDonor(ctx context.Context, row *registry.Donor) (*registry.Donor, error)
	DeleteDonor(ctx context.Context, id uuid.UUID) error

	CreateObjective(ctx context.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error)
	ListObjectives(ctx context.Context) ([]*registry.GlobalObjective, error)
	UpdateObjective(ctx context.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error)

	CreateLine(ctx context.Context, row *registry.StrategicLine) (*registry.StrategicLine, error)
	ListLines(ctx context.Context) ([]*registry.StrategicLine, error)
	UpdateLine(ctx context.Context, row *registry.StrategicLine) (*registry.StrategicLine, error)
}

type registryService struct {
	db         *gorm.DB
	log        *logger.Logger
	donors     registryrepo.DonorRepo
	objectives registryrepo.ObjectiveRepo
	lines      registryrepo.LineRepo
}

func NewRegistryService(
	db *gorm.DB,
	log *logger.Logger,
	donors registryrepo.DonorRepo,
	objectives registryrepo.ObjectiveRepo,
	lines registryrepo.LineRepo,
) RegistryService {
	return &registryService{
		db:         db,
		log:        log.With("service", "RegistryService"),
		donors:     donors,
		objectives: objectives,
		lines:      lines,
	}
}

func (s *registryService) CreateDonor(ctx context.Context, row *registry.Donor) (*registry.Donor, error) {
	if row == nil || row.Name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.create_donor", "donor name is required", nil)
	}
	row.Active = true
	return s.donors.Create(dbctx.New(ctx), row)
}

func (s *registryService) GetDonor(ctx context.Context, id uuid.UUID) (*registry.Donor, error) {
	return s.donors.GetByID(dbctx.New(ctx), id)
}

func (s *registryService) ListDonors(ctx context.Context, activeOnly bool) ([]*registry.Donor, error) {
	return s.donors.List(dbctx.New(ctx), activeOnly)
}

func (s *registryService) UpdateDonor(ctx context.Context, row *registry.Donor) (*registry.Donor, error) {
	if row == nil || row.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.update_donor", "donor id is required", nil)
	}
	if err := s.donors.Update(dbctx.New(ctx), row); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteDonor refuses when any project still carries a contribution
// line from the donor; those records keep their history.
func (s *registryService) DeleteDonor(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, "registry.delete_donor", "donor id is required", nil)
	}
	refs, err := s.donors.CountProjectReferences(dbctx.New(ctx), id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domainagg.NewError(domainagg.CodePreconditionFailed, "registry.delete_donor",
			"donor is referenced by projects; deactivate it instead", nil)
	}
	return s.donors.SoftDeleteByID(dbctx.New(ctx), id)
}

func (s *registryService) CreateObjective(ctx context.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error) {
	if row == nil || row.Name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.create_objective", "objective name is required", nil)
	}
	row.Active = true
	return s.objectives.Create(dbctx.New(ctx), row)
}

func (s *registryService) ListObjectives(ctx context.Context) ([]*registry.GlobalObjective, error) {
	return s.objectives.List(dbctx.New(ctx))
}

func (s *registryService) UpdateObjective(ctx context.Context, row *registry.GlobalObjective) (*registry.GlobalObjective, error) {
	if row == nil || row.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.update_objective", "objective id is required", nil)
	}
	if err := s.objectives.Update(dbctx.New(ctx), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *registryService) CreateLine(ctx context.Context, row *registry.StrategicLine) (*registry.StrategicLine, error) {
	if row == nil || row.Name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.create_line", "strategic line name is required", nil)
	}
	row.Active = true
	return s.lines.Create(dbctx.New(ctx), row)
}

func (s *registryService) ListLines(ctx context.Context) ([]*registry.StrategicLine, error) {
	return s.lines.List(dbctx.New(ctx))
}

func (s *registryService) UpdateLine(ctx context.Context, row *registry.StrategicLine) (*registry.StrategicLine, error) {
	if row == nil || row.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "registry.update_line", "strategic line id is required", nil)
	}
	if err := s.lines.Update(dbctx.New(ctx), row); err != nil {
		return nil, err
	}
	return row, nil
}
