package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	dataagg "github.com/devlabsgt/backend/internal/data/aggregates"
	identityrepo "github.com/devlabsgt/backend/internal/data/repos/identity"
	projectsrepo "github.com/devlabsgt/backend/internal/data/repos/projects"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
	"github.com/devlabsgt/backend/internal/platform/requestdata"
)

// EvidenceFile is one file of a multipart evidence upload.
type EvidenceFile struct {
	Filename    string
	ContentType string
	Size        int64
	Description string
	Open        func() (io.ReadCloser, error)
}

type ProjectService interface {
	Create(ctx context.Context, in dataagg.CreateProjectInput) (*project.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
	List(ctx context.Context, status string) ([]*project.Project, error)
	Update(ctx context.Context, id uuid.UUID, in dataagg.UpdateProjectInput) (*project.Project, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*project.Project, error)

	AddActivity(ctx context.Context, projectID uuid.UUID, in dataagg.ActivityInput) (*project.Project, error)
	UpdateActivityProgress(ctx context.Context, projectID, activityID uuid.UUID, progress int, status string) (*project.Project, error)
	AssociateBeneficiaries(ctx context.Context, projectID, activityID uuid.UUID, beneficiaryIDs []uuid.UUID) (*project.Project, error)
	UpdateAssociationStatus(ctx context.Context, projectID, activityID, beneficiaryID uuid.UUID, status string, notes *string) (*project.Project, error)

	UploadEvidences(ctx context.Context, projectID uuid.UUID, files []EvidenceFile) (*project.Project, error)
	RemoveEvidence(ctx context.Context, projectID, evidenceID uuid.UUID) error
}

type projectService struct {
	log       *logger.Logger
	aggregate *dataagg.ProjectAggregate
	projects  projectsrepo.ProjectRepo
	users     identityrepo.UserRepo
	bucket    BucketService
}

func NewProjectService(
	log *logger.Logger,
	aggregate *dataagg.ProjectAggregate,
	projects projectsrepo.ProjectRepo,
	users identityrepo.UserRepo,
	bucket BucketService,
) ProjectService {
	return &projectService{
		log:       log.With("service", "ProjectService"),
		aggregate: aggregate,
		projects:  projects,
		users:     users,
		bucket:    bucket,
	}
}

// checkEncargado verifies the responsible user exists and is active.
func (s *projectService) checkEncargado(ctx context.Context, id *uuid.UUID) error {
	if id == nil || s.users == nil {
		return nil
	}
	u, err := s.users.GetByID(dbctx.New(ctx), *id)
	if err != nil {
		return err
	}
	if u == nil {
		return domainagg.NewError(domainagg.CodeValidation, "project.check_encargado", "responsible user not found", nil)
	}
	if !u.Active {
		return domainagg.NewError(domainagg.CodeValidation, "project.check_encargado", "responsible user is inactive", nil)
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, in dataagg.CreateProjectInput) (*project.Project, error) {
	if err := s.checkEncargado(ctx, in.EncargadoID); err != nil {
		return nil, err
	}
	return s.aggregate.Create(ctx, in)
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return s.aggregate.Get(ctx, id)
}

// List scopes results by caller role: Encargados only see their own
// projects, everyone else sees the full set. A non-empty status narrows
// the result to projects currently in that status.
func (s *projectService) List(ctx context.Context, status string) ([]*project.Project, error) {
	if status != "" && !project.ValidStatus(status) {
		return nil, domainagg.NewError(domainagg.CodeValidation, "project.list", "unrecognized status "+status, nil)
	}

	rd, ok := requestdata.GetRequestData(ctx)
	if ok && rd.Role == identity.RoleEncargado {
		rows, err := s.projects.ListByEncargado(dbctx.New(ctx), rd.UserID)
		if err != nil || status == "" {
			return rows, err
		}
		filtered := rows[:0]
		for _, p := range rows {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		return filtered, nil
	}

	if status != "" {
		return s.projects.ListByStatus(dbctx.New(ctx), []string{status})
	}
	return s.projects.List(dbctx.New(ctx))
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, in dataagg.UpdateProjectInput) (*project.Project, error) {
	if err := s.checkEncargado(ctx, in.EncargadoID); err != nil {
		return nil, err
	}
	return s.aggregate.Update(ctx, id, in)
}

func (s *projectService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*project.Project, error) {
	return s.aggregate.SetStatus(ctx, id, status)
}

func (s *projectService) AddActivity(ctx context.Context, projectID uuid.UUID, in dataagg.ActivityInput) (*project.Project, error) {
	return s.aggregate.AddActivity(ctx, projectID, in)
}

func (s *projectService) UpdateActivityProgress(ctx context.Context, projectID, activityID uuid.UUID, progress int, status string) (*project.Project, error) {
	return s.aggregate.UpdateActivityProgress(ctx, projectID, activityID, progress, status)
}

func (s *projectService) AssociateBeneficiaries(ctx context.Context, projectID, activityID uuid.UUID, beneficiaryIDs []uuid.UUID) (*project.Project, error) {
	return s.aggregate.AssociateBeneficiaries(ctx, projectID, activityID, beneficiaryIDs)
}

func (s *projectService) UpdateAssociationStatus(ctx context.Context, projectID, activityID, beneficiaryID uuid.UUID, status string, notes *string) (*project.Project, error) {
	return s.aggregate.UpdateAssociationStatus(ctx, projectID, activityID, beneficiaryID, status, notes)
}

// UploadEvidences pushes every file to the bucket concurrently, then
// records the batch on the aggregate. If the record step fails the
// already-uploaded objects are orphaned; cleanup is best effort.
func (s *projectService) UploadEvidences(ctx context.Context, projectID uuid.UUID, files []EvidenceFile) (*project.Project, error) {
	if s.bucket == nil {
		return nil, domainagg.NewError(domainagg.CodeRetryable, "project.upload_evidences", "evidence storage unavailable", nil)
	}
	if len(files) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, "project.upload_evidences", "no files provided", nil)
	}
	if len(files) > MaxEvidenceFiles {
		return nil, domainagg.NewError(domainagg.CodeValidation, "project.upload_evidences", fmt.Sprintf("at most %d files per upload", MaxEvidenceFiles), nil)
	}
	for _, f := range files {
		if err := ValidateEvidenceUpload(len(files), f.Size, f.ContentType); err != nil {
			return nil, domainagg.Wrap(domainagg.CodeValidation, "project.upload_evidences", err)
		}
	}

	inputs := make([]dataagg.EvidenceInput, len(files))
	keys := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range files {
		key := fmt.Sprintf("projects/%s/evidences/%s-%s", projectID, uuid.New().String(), f.Filename)
		keys[i] = key
		g.Go(func() error {
			r, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Filename, err)
			}
			defer r.Close()
			if err := s.bucket.UploadFile(gctx, key, r); err != nil {
				return fmt.Errorf("upload %s: %w", f.Filename, err)
			}
			inputs[i] = dataagg.EvidenceInput{
				Type:        EvidenceTypeOf(f.ContentType),
				BucketKey:   key,
				URL:         s.bucket.GetPublicURL(key),
				Description: f.Description,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.cleanupObjects(keys)
		return nil, err
	}

	updated, err := s.aggregate.AddEvidences(ctx, projectID, inputs)
	if err != nil {
		s.cleanupObjects(keys)
		return nil, err
	}
	return updated, nil
}

func (s *projectService) RemoveEvidence(ctx context.Context, projectID, evidenceID uuid.UUID) error {
	if s.bucket == nil {
		return domainagg.NewError(domainagg.CodeRetryable, "project.remove_evidence", "evidence storage unavailable", nil)
	}
	removed, err := s.aggregate.RemoveEvidence(ctx, projectID, evidenceID)
	if err != nil {
		return err
	}
	if removed != nil && removed.BucketKey != "" {
		s.cleanupObjects([]string{removed.BucketKey})
	}
	return nil
}

// cleanupObjects removes uploaded files that no evidence row points at.
// Failures are logged and swallowed; an orphaned object is not worth
// failing the request over.
func (s *projectService) cleanupObjects(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.bucket.DeleteFile(ctx, key); err != nil {
			s.log.Warn("orphaned bucket object cleanup failed", "key", key, "error", err)
		}
	}
}
