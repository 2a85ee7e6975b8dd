package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	beneficiaryrepo "github.com/devlabsgt/backend/internal/data/repos/beneficiary"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/beneficiary"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type BeneficiaryService interface {
	Create(ctx context.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error)
	Get(ctx context.Context, id uuid.UUID) (*beneficiary.Beneficiary, error)
	List(ctx context.Context) ([]*beneficiary.Beneficiary, error)
	Update(ctx context.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type beneficiaryService struct {
	db            *gorm.DB
	log           *logger.Logger
	beneficiaries beneficiaryrepo.BeneficiaryRepo
}

func NewBeneficiaryService(db *gorm.DB, log *logger.Logger, repo beneficiaryrepo.BeneficiaryRepo) BeneficiaryService {
	return &beneficiaryService{
		db:            db,
		log:           log.With("service", "BeneficiaryService"),
		beneficiaries: repo,
	}
}

func (s *beneficiaryService) Create(ctx context.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error) {
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "beneficiary.create", "beneficiary is required", nil)
	}
	if row.FirstName == "" || row.LastName == "" || row.DocumentID == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "beneficiary.create", "first_name, last_name and document_id are required", nil)
	}
	existing, err := s.beneficiaries.GetByDocumentID(dbctx.New(ctx), row.DocumentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainagg.NewError(domainagg.CodeConflict, "beneficiary.create", "document_id already registered", nil)
	}
	if row.Status == "" {
		row.Status = beneficiary.StatusActive
	}
	return s.beneficiaries.Create(dbctx.New(ctx), row)
}

func (s *beneficiaryService) Get(ctx context.Context, id uuid.UUID) (*beneficiary.Beneficiary, error) {
	return s.beneficiaries.GetByID(dbctx.New(ctx), id)
}

func (s *beneficiaryService) List(ctx context.Context) ([]*beneficiary.Beneficiary, error) {
	return s.beneficiaries.List(dbctx.New(ctx))
}

func (s *beneficiaryService) Update(ctx context.Context, row *beneficiary.Beneficiary) (*beneficiary.Beneficiary, error) {
	if row == nil || row.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "beneficiary.update", "beneficiary id is required", nil)
	}
	if err := s.beneficiaries.Update(dbctx.New(ctx), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *beneficiaryService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != beneficiary.StatusActive && status != beneficiary.StatusInactive {
		return domainagg.NewError(domainagg.CodeValidation, "beneficiary.set_status", fmt.Sprintf("unrecognized status %q", status), nil)
	}
	return s.beneficiaries.UpdateFields(dbctx.New(ctx), id, map[string]interface{}{"status": status})
}
