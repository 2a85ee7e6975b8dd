package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	beneficiaryrepo "github.com/devlabsgt/backend/internal/data/repos/beneficiary"
	projectsrepo "github.com/devlabsgt/backend/internal/data/repos/projects"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
)

// creation retries cover unique-index collisions on number and code.
const maxCreateAttempts = 3

// ProjectAggregate owns every write to the project aggregate. Each
// operation runs the full validate/normalize pass and persists the raw
// mutation together with the recomputed derived fields in one
// transaction, so the aggregate is never observable in an inconsistent
// state.
type ProjectAggregate struct {
	deps          BaseDeps
	projects      projectsrepo.ProjectRepo
	beneficiaries beneficiaryrepo.BeneficiaryRepo
}

func NewProjectAggregate(deps BaseDeps, projects projectsrepo.ProjectRepo, beneficiaries beneficiaryrepo.BeneficiaryRepo) *ProjectAggregate {
	return &ProjectAggregate{deps: deps, projects: projects, beneficiaries: beneficiaries}
}

type DonorLine struct {
	DonorID        uuid.UUID
	Amount         float64
	CommitmentDate *time.Time
}

type LocationInput struct {
	Description string
	Rank        int
}

type BeneficiaryLine struct {
	BeneficiaryID uuid.UUID
	Status        string
	Notes         string
}

type CreateProjectInput struct {
	Name        string
	Description string
	BudgetTotal float64
	StartDate   time.Time
	EndDate     time.Time
	EncargadoID *uuid.UUID

	Department   string
	Municipality string
	Locality     string

	FollowUpFrequency     string
	FollowUpVisitRequired bool
	FollowUpNextDate      *time.Time

	Donors           []DonorLine
	Locations        []LocationInput
	ObjectiveIDs     []uuid.UUID
	StrategicLineIDs []uuid.UUID
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	BudgetTotal *float64
	StartDate   *time.Time
	EndDate     *time.Time
	EncargadoID *uuid.UUID

	Department   *string
	Municipality *string
	Locality     *string

	FollowUpFrequency     *string
	FollowUpVisitRequired *bool
	FollowUpNextDate      *time.Time

	// Nil slice means "leave as is"; empty slice clears.
	Donors           []DonorLine
	Locations        []LocationInput
	Beneficiaries    []BeneficiaryLine
	ObjectiveIDs     []uuid.UUID
	StrategicLineIDs []uuid.UUID
}

type ActivityInput struct {
	Name            string
	Description     string
	AllocatedBudget float64
	StartDate       *time.Time
	EndDate         *time.Time
	ExpectedResults string
	Milestones      datatypes.JSON
}

type EvidenceInput struct {
	Type        string
	BucketKey   string
	URL         string
	Description string
}

// Create assigns number and code, normalizes and persists the new
// aggregate. Unique-index collisions on either identifier regenerate
// and retry a bounded number of times before surfacing as a conflict.
func (a *ProjectAggregate) Create(ctx context.Context, in CreateProjectInput) (*project.Project, error) {
	const op = "project.create"

	var created *project.Project
	year := time.Now().Year()

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
			numbers, err := a.projects.ListNumbersByYear(dbc, year)
			if err != nil {
				return &project.GenerationError{Kind: "number", Cause: err}
			}

			row := &project.Project{
				Number:                project.NextNumber(numbers, year),
				Code:                  project.NewCode(),
				Name:                  in.Name,
				Description:           in.Description,
				BudgetTotal:           in.BudgetTotal,
				Status:                project.StatusActive,
				StartDate:             in.StartDate,
				EndDate:               in.EndDate,
				EncargadoID:           in.EncargadoID,
				Department:            in.Department,
				Municipality:          in.Municipality,
				Locality:              in.Locality,
				FollowUpFrequency:     in.FollowUpFrequency,
				FollowUpVisitRequired: in.FollowUpVisitRequired,
				FollowUpNextDate:      in.FollowUpNextDate,
				Version:               1,
			}
			for _, d := range in.Donors {
				row.Donors = append(row.Donors, project.Donor{
					DonorID:        d.DonorID,
					Amount:         d.Amount,
					CommitmentDate: d.CommitmentDate,
				})
			}
			for _, l := range in.Locations {
				row.Locations = append(row.Locations, project.Location{
					Description: l.Description,
					Rank:        l.Rank,
				})
			}
			for _, id := range in.ObjectiveIDs {
				row.Objectives = append(row.Objectives, project.ProjectObjective{ObjectiveID: id})
			}
			for _, id := range in.StrategicLineIDs {
				row.StrategicLines = append(row.StrategicLines, project.ProjectStrategicLine{StrategicLineID: id})
			}

			if err := project.Normalize(row); err != nil {
				return err
			}
			if _, err := a.projects.Create(dbc, row); err != nil {
				return err
			}
			created = row
			return nil
		})
		if err == nil {
			return created, nil
		}
		lastErr = err
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			return nil, err
		}
		a.deps.Hooks.IncRetry(op)
	}
	return nil, lastErr
}

// Get loads the aggregate read-only.
func (a *ProjectAggregate) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	const op = "project.get"
	row, err := a.projects.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
	}
	return row, nil
}

// Update applies mutable root fields and replaceable child collections.
// Number and code are immutable and silently kept. The whole aggregate
// is re-normalized before commit.
func (a *ProjectAggregate) Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (*project.Project, error) {
	const op = "project.update"

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		if in.Name != nil {
			row.Name = *in.Name
		}
		if in.Description != nil {
			row.Description = *in.Description
		}
		if in.BudgetTotal != nil {
			row.BudgetTotal = *in.BudgetTotal
		}
		if in.StartDate != nil {
			row.StartDate = *in.StartDate
		}
		if in.EndDate != nil {
			row.EndDate = *in.EndDate
		}
		if in.EncargadoID != nil {
			row.EncargadoID = in.EncargadoID
		}
		if in.Department != nil {
			row.Department = *in.Department
		}
		if in.Municipality != nil {
			row.Municipality = *in.Municipality
		}
		if in.Locality != nil {
			row.Locality = *in.Locality
		}
		if in.FollowUpFrequency != nil {
			row.FollowUpFrequency = *in.FollowUpFrequency
		}
		if in.FollowUpVisitRequired != nil {
			row.FollowUpVisitRequired = *in.FollowUpVisitRequired
		}
		if in.FollowUpNextDate != nil {
			row.FollowUpNextDate = in.FollowUpNextDate
		}

		if in.Donors != nil {
			row.Donors = row.Donors[:0]
			for _, d := range in.Donors {
				row.Donors = append(row.Donors, project.Donor{
					ProjectID:      row.ID,
					DonorID:        d.DonorID,
					Amount:         d.Amount,
					CommitmentDate: d.CommitmentDate,
				})
			}
		}
		if in.Locations != nil {
			row.Locations = row.Locations[:0]
			for _, l := range in.Locations {
				row.Locations = append(row.Locations, project.Location{
					ProjectID:   row.ID,
					Description: l.Description,
					Rank:        l.Rank,
				})
			}
		}
		if in.Beneficiaries != nil {
			row.Beneficiaries = row.Beneficiaries[:0]
			for _, b := range in.Beneficiaries {
				status := b.Status
				if status == "" {
					status = project.AssociationStatusActive
				}
				row.Beneficiaries = append(row.Beneficiaries, project.ProjectBeneficiary{
					ProjectID:     row.ID,
					BeneficiaryID: b.BeneficiaryID,
					Status:        status,
					IntakeDate:    time.Now().UTC(),
					Notes:         b.Notes,
				})
			}
		}

		if in.Beneficiaries != nil {
			if err := a.resolveBeneficiaries(dbc, beneficiaryIDsOf(row.Beneficiaries)); err != nil {
				return err
			}
		}
		if err := project.Normalize(row); err != nil {
			return err
		}

		if in.Donors != nil {
			if err := a.projects.ReplaceDonors(dbc, row.ID, row.Donors); err != nil {
				return err
			}
		} else {
			if err := a.projects.SaveDonorPercentages(dbc, row.Donors); err != nil {
				return err
			}
		}
		if in.Locations != nil {
			if err := a.projects.ReplaceLocations(dbc, row.ID, row.Locations); err != nil {
				return err
			}
		}
		if in.Beneficiaries != nil {
			if err := a.projects.ReplaceBeneficiaries(dbc, row.ID, row.Beneficiaries); err != nil {
				return err
			}
		}
		if in.ObjectiveIDs != nil {
			if err := a.projects.ReplaceObjectives(dbc, row.ID, in.ObjectiveIDs); err != nil {
				return err
			}
		}
		if in.StrategicLineIDs != nil {
			if err := a.projects.ReplaceStrategicLines(dbc, row.ID, in.StrategicLineIDs); err != nil {
				return err
			}
		}
		if err := a.projects.SaveActivityPercentages(dbc, row.Activities); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, map[string]any{
			"name":                     row.Name,
			"description":              row.Description,
			"budget_total":             row.BudgetTotal,
			"start_date":               row.StartDate,
			"end_date":                 row.EndDate,
			"encargado_id":             row.EncargadoID,
			"department":               row.Department,
			"municipality":             row.Municipality,
			"locality":                 row.Locality,
			"follow_up_frequency":      row.FollowUpFrequency,
			"follow_up_visit_required": row.FollowUpVisitRequired,
			"follow_up_next_date":      row.FollowUpNextDate,
		}); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddActivity appends one activity, checking the request against the
// budget still unallocated. The shortfall check and the write share one
// transaction so concurrent adds cannot both slip past a stale total.
func (a *ProjectAggregate) AddActivity(ctx context.Context, projectID uuid.UUID, in ActivityInput) (*project.Project, error) {
	const op = "project.add_activity"

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		available := project.AvailableBudget(row)
		if in.AllocatedBudget > available {
			return &project.BudgetExceededError{Available: available, Requested: in.AllocatedBudget}
		}

		activity := project.Activity{
			ProjectID:       row.ID,
			Name:            in.Name,
			Description:     in.Description,
			AllocatedBudget: in.AllocatedBudget,
			Status:          project.ActivityStatusPending,
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			ExpectedResults: in.ExpectedResults,
			Milestones:      in.Milestones,
		}
		row.Activities = append(row.Activities, activity)
		if err := project.Normalize(row); err != nil {
			return err
		}

		created, err := a.projects.CreateActivity(dbc, &row.Activities[len(row.Activities)-1])
		if err != nil {
			return err
		}
		row.Activities[len(row.Activities)-1] = *created
		if err := a.projects.SaveActivityPercentages(dbc, row.Activities); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, nil); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateActivityProgress sets one activity's progress and optionally
// its status. Unrecognized status values are ignored, matching the
// tolerant update surface the frontend relies on.
func (a *ProjectAggregate) UpdateActivityProgress(ctx context.Context, projectID, activityID uuid.UUID, progress int, status string) (*project.Project, error) {
	const op = "project.update_activity_progress"

	if progress < 0 || progress > 100 {
		return nil, MapError(op, &project.ValidationError{Field: "progress", Reason: "must be between 0 and 100"})
	}

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		idx := -1
		for i := range row.Activities {
			if row.Activities[i].ID == activityID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, "activity not found", nil)
		}

		row.Activities[idx].Progress = progress
		if project.ValidActivityStatus(status) {
			row.Activities[idx].Status = status
		}
		if err := project.Normalize(row); err != nil {
			return err
		}

		if err := a.projects.SaveActivity(dbc, &row.Activities[idx]); err != nil {
			return err
		}
		if err := a.projects.SaveActivityPercentages(dbc, row.Activities); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, nil); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssociateBeneficiaries attaches candidate beneficiaries to an
// activity. Ids already associated are skipped so the operation is
// idempotent; candidates that do not resolve to registry records reject
// the whole call.
func (a *ProjectAggregate) AssociateBeneficiaries(ctx context.Context, projectID, activityID uuid.UUID, beneficiaryIDs []uuid.UUID) (*project.Project, error) {
	const op = "project.associate_beneficiaries"

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		idx := -1
		for i := range row.Activities {
			if row.Activities[i].ID == activityID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, "activity not found", nil)
		}

		candidates := dedupeIDs(beneficiaryIDs)
		if err := a.resolveBeneficiaries(dbc, candidates); err != nil {
			return err
		}

		existing := map[uuid.UUID]struct{}{}
		for _, ab := range row.Activities[idx].Beneficiaries {
			existing[ab.BeneficiaryID] = struct{}{}
		}

		now := time.Now().UTC()
		var fresh []project.ActivityBeneficiary
		for _, id := range candidates {
			if _, ok := existing[id]; ok {
				continue
			}
			fresh = append(fresh, project.ActivityBeneficiary{
				ActivityID:    activityID,
				BeneficiaryID: id,
				Status:        project.AssociationStatusActive,
				AssignedAt:    now,
			})
		}
		if len(fresh) > 0 {
			if err := a.projects.CreateAssociations(dbc, fresh); err != nil {
				return err
			}
			row.Activities[idx].Beneficiaries = append(row.Activities[idx].Beneficiaries, fresh...)
		}

		if err := project.Normalize(row); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, nil); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAssociationStatus flips one association between Active and
// Inactive and optionally replaces its notes.
func (a *ProjectAggregate) UpdateAssociationStatus(ctx context.Context, projectID, activityID, beneficiaryID uuid.UUID, status string, notes *string) (*project.Project, error) {
	const op = "project.update_association_status"

	if !project.ValidAssociationStatus(status) {
		return nil, MapError(op, &project.ValidationError{Field: "status", Reason: "unrecognized value " + status})
	}

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		assoc, err := a.projects.GetAssociation(dbc, activityID, beneficiaryID)
		if err != nil {
			return err
		}
		if assoc == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "association not found", nil)
		}
		assoc.Status = status
		if notes != nil {
			assoc.Notes = *notes
		}
		if err := a.projects.UpdateAssociation(dbc, assoc); err != nil {
			return err
		}

		for i := range row.Activities {
			if row.Activities[i].ID != activityID {
				continue
			}
			for j := range row.Activities[i].Beneficiaries {
				if row.Activities[i].Beneficiaries[j].BeneficiaryID == beneficiaryID {
					row.Activities[i].Beneficiaries[j] = *assoc
				}
			}
		}
		if err := project.Normalize(row); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, nil); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddEvidences binds already-stored file references to the project.
func (a *ProjectAggregate) AddEvidences(ctx context.Context, projectID uuid.UUID, inputs []EvidenceInput) (*project.Project, error) {
	const op = "project.add_evidences"

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version

		now := time.Now().UTC()
		rows := make([]project.Evidence, 0, len(inputs))
		for _, in := range inputs {
			rows = append(rows, project.Evidence{
				ProjectID:   row.ID,
				Type:        in.Type,
				BucketKey:   in.BucketKey,
				URL:         in.URL,
				Description: in.Description,
				UploadedAt:  now,
			})
		}
		// Insert first so the generated ids land on the rows the
		// returned aggregate carries.
		if err := a.projects.CreateEvidences(dbc, rows); err != nil {
			return err
		}
		row.Evidences = append(row.Evidences, rows...)
		if err := project.Normalize(row); err != nil {
			return err
		}
		if err := a.commitRoot(dbc, row, expectedVersion, nil); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveEvidence deletes the record and returns it so the caller can
// drop the underlying file afterwards.
func (a *ProjectAggregate) RemoveEvidence(ctx context.Context, projectID, evidenceID uuid.UUID) (*project.Evidence, error) {
	const op = "project.remove_evidence"

	var removed *project.Evidence
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		ev, err := a.projects.GetEvidence(dbc, evidenceID)
		if err != nil {
			return err
		}
		if ev == nil || ev.ProjectID != projectID {
			return domainagg.NewError(domainagg.CodeNotFound, op, "evidence not found", nil)
		}
		if err := a.projects.DeleteEvidence(dbc, evidenceID); err != nil {
			return err
		}
		removed = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// SetStatus applies a manual status transition.
func (a *ProjectAggregate) SetStatus(ctx context.Context, projectID uuid.UUID, status string) (*project.Project, error) {
	const op = "project.set_status"

	if !project.ValidStatus(status) {
		return nil, MapError(op, &project.ValidationError{Field: "status", Reason: "unrecognized value " + status})
	}

	var out *project.Project
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		row, err := a.projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "project not found", nil)
		}
		expectedVersion := row.Version
		row.Status = status
		if err := project.Normalize(row); err != nil {
			return err
		}
		return a.commitRoot(dbc, row, expectedVersion, map[string]any{"status": status})
	})
	if err != nil {
		return nil, err
	}
	out, err = a.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinishExpired transitions every Active project whose end date passed
// to Finished. Each project commits on its own; a failure is counted
// and left for the next run.
func (a *ProjectAggregate) FinishExpired(ctx context.Context, now time.Time) (finished, failed int, err error) {
	const op = "project.finish_expired"

	expired, err := a.projects.ListExpiredActive(dbctx.New(ctx), now)
	if err != nil {
		return 0, 0, MapError(op, err)
	}
	for _, p := range expired {
		p := p
		txErr := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
			ok, casErr := a.deps.CASGuard.UpdateByStatus(dbc, "project", p.ID,
				[]string{project.StatusActive},
				map[string]any{
					"status":     project.StatusFinished,
					"version":    gorm.Expr("version + 1"),
					"updated_at": time.Now().UTC(),
				})
			if casErr != nil {
				return casErr
			}
			return RequireCASSuccess(ok, "project no longer active")
		})
		if txErr != nil {
			if a.deps.Log != nil {
				a.deps.Log.Warn("expiry sweep skipped project", "project_number", p.Number, "error", txErr)
			}
			failed++
			continue
		}
		finished++
	}
	return finished, failed, nil
}

// commitRoot writes the derived fields (and any extra root columns)
// guarded by the aggregate version token.
func (a *ProjectAggregate) commitRoot(dbc dbctx.Context, row *project.Project, expectedVersion int64, extra map[string]any) error {
	updates := map[string]any{
		"budget_executed": row.BudgetExecuted,
		"reached_people":  row.ReachedPeople,
		"progress_level":  row.ProgressLevel,
		"version":         expectedVersion + 1,
		"updated_at":      time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	ok, err := a.deps.CASGuard.UpdateByVersion(dbc, "project", row.ID, expectedVersion, updates)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "project modified concurrently"); err != nil {
		return err
	}
	row.Version = expectedVersion + 1
	return nil
}

func (a *ProjectAggregate) resolveBeneficiaries(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := a.beneficiaries.GetByIDs(dbc, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return &project.BeneficiaryCountMismatchError{Requested: len(ids), Found: len(found)}
	}
	return nil
}

func beneficiaryIDsOf(rows []project.ProjectBeneficiary) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].BeneficiaryID)
	}
	return dedupeIDs(out)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
