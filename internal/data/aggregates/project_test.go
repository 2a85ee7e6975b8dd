package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	beneficiaryrepo "github.com/devlabsgt/backend/internal/data/repos/beneficiary"
	projectsrepo "github.com/devlabsgt/backend/internal/data/repos/projects"
	"github.com/devlabsgt/backend/internal/data/repos/testutil"
	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
)

func newAggregate(t *testing.T) (*ProjectAggregate, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	deps := BaseDeps{
		DB:       tx,
		Log:      log,
		Runner:   NewGormTxRunner(tx),
		CASGuard: NewCASGuard(tx),
	}
	agg := NewProjectAggregate(deps,
		projectsrepo.NewProjectRepo(tx, log),
		beneficiaryrepo.NewBeneficiaryRepo(tx, log),
	)
	return agg, context.Background()
}

func validCreateInput(total float64, donors ...DonorLine) CreateProjectInput {
	now := time.Now().UTC()
	return CreateProjectInput{
		Name:        "Seguridad alimentaria",
		BudgetTotal: total,
		StartDate:   now,
		EndDate:     now.AddDate(1, 0, 0),
		Donors:      donors,
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	agg, ctx := newAggregate(t)
	year := time.Now().Year()

	first, err := agg.Create(ctx, validCreateInput(0))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := agg.Create(ctx, validCreateInput(0))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if want := project.FormatNumber(year, 1); first.Number != want {
		t.Fatalf("first number = %q, want %q", first.Number, want)
	}
	if want := project.FormatNumber(year, 2); second.Number != want {
		t.Fatalf("second number = %q, want %q", second.Number, want)
	}
	if !project.ValidCode(first.Code) || !project.ValidCode(second.Code) {
		t.Fatalf("codes %q / %q do not match LLL-DDD", first.Code, second.Code)
	}
	if first.Code == second.Code {
		t.Fatal("codes must be unique")
	}
	if first.Status != project.StatusActive {
		t.Fatalf("status = %q, want Active", first.Status)
	}
}

func TestCreateRejectsDonorMismatch(t *testing.T) {
	agg, ctx := newAggregate(t)

	_, err := agg.Create(ctx, validCreateInput(1000, DonorLine{DonorID: uuid.New(), Amount: 900}))
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("create = %v, want invariant_violation", err)
	}
	var mismatch *project.BudgetMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("cause = %v, want BudgetMismatchError", err)
	}
	if mismatch.Expected != 1000 || mismatch.Actual != 900 {
		t.Fatalf("mismatch figures = %+v", mismatch)
	}

	rows, listErr := agg.projects.ListNumbersByYear(dbctx.New(ctx), time.Now().Year())
	if listErr != nil {
		t.Fatalf("list numbers: %v", listErr)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected create persisted %d rows", len(rows))
	}
}

func TestBudgetChain(t *testing.T) {
	agg, ctx := newAggregate(t)

	created, err := agg.Create(ctx, validCreateInput(1000, DonorLine{DonorID: uuid.New(), Amount: 1000}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Donors[0].Percentage != 100 {
		t.Fatalf("donor percentage = %v, want 100", created.Donors[0].Percentage)
	}

	afterFirst, err := agg.AddActivity(ctx, created.ID, ActivityInput{Name: "Fase 1", AllocatedBudget: 400})
	if err != nil {
		t.Fatalf("add first activity: %v", err)
	}
	if afterFirst.Activities[0].PctOfBudget != 40 {
		t.Fatalf("percentage_of_budget = %v, want 40", afterFirst.Activities[0].PctOfBudget)
	}
	if afterFirst.BudgetExecuted != 400 {
		t.Fatalf("budget_executed = %v, want 400", afterFirst.BudgetExecuted)
	}

	_, err = agg.AddActivity(ctx, created.ID, ActivityInput{Name: "Fase 2", AllocatedBudget: 700})
	var exceeded *project.BudgetExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("add second activity = %v, want BudgetExceededError", err)
	}
	if exceeded.Available != 600 || exceeded.Requested != 700 {
		t.Fatalf("exceeded = {available %v, requested %v}, want {600, 700}", exceeded.Available, exceeded.Requested)
	}
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("code = %v, want invariant_violation", domainagg.CodeOf(err))
	}

	reloaded, err := agg.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Activities) != 1 {
		t.Fatalf("rejected activity persisted, have %d", len(reloaded.Activities))
	}
	if reloaded.BudgetExecuted != 400 {
		t.Fatalf("budget_executed after reject = %v, want 400", reloaded.BudgetExecuted)
	}
}

func TestAssociateBeneficiariesIdempotent(t *testing.T) {
	agg, ctx := newAggregate(t)

	created, err := agg.Create(ctx, validCreateInput(100, DonorLine{DonorID: uuid.New(), Amount: 100}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	withActivity, err := agg.AddActivity(ctx, created.ID, ActivityInput{Name: "Entrega", AllocatedBudget: 100})
	if err != nil {
		t.Fatalf("add activity: %v", err)
	}
	activityID := withActivity.Activities[0].ID

	tx := agg.deps.DB
	benA := testutil.SeedBeneficiary(t, ctx, tx, "2001-11111-0101")
	benB := testutil.SeedBeneficiary(t, ctx, tx, "2002-22222-0101")
	ids := []uuid.UUID{benA.ID, benB.ID}

	first, err := agg.AssociateBeneficiaries(ctx, created.ID, activityID, ids)
	if err != nil {
		t.Fatalf("first associate: %v", err)
	}
	if first.ReachedPeople != 2 {
		t.Fatalf("reached_people = %d, want 2", first.ReachedPeople)
	}

	second, err := agg.AssociateBeneficiaries(ctx, created.ID, activityID, ids)
	if err != nil {
		t.Fatalf("second associate: %v", err)
	}
	if got := len(second.Activities[0].Beneficiaries); got != 2 {
		t.Fatalf("association rows = %d, want 2", got)
	}

	_, err = agg.AssociateBeneficiaries(ctx, created.ID, activityID, []uuid.UUID{benA.ID, uuid.New()})
	var count *project.BeneficiaryCountMismatchError
	if !errors.As(err, &count) {
		t.Fatalf("unknown candidate = %v, want BeneficiaryCountMismatchError", err)
	}
	if count.Requested != 2 || count.Found != 1 {
		t.Fatalf("count = %+v, want {2 1}", count)
	}
}

func TestUpdateActivityProgressRecomputes(t *testing.T) {
	agg, ctx := newAggregate(t)

	created, err := agg.Create(ctx, validCreateInput(100, DonorLine{DonorID: uuid.New(), Amount: 100}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, err := agg.AddActivity(ctx, created.ID, ActivityInput{Name: "A", AllocatedBudget: 30})
	if err != nil {
		t.Fatalf("add A: %v", err)
	}
	p, err = agg.AddActivity(ctx, created.ID, ActivityInput{Name: "B", AllocatedBudget: 70})
	if err != nil {
		t.Fatalf("add B: %v", err)
	}

	var aID, bID uuid.UUID
	for _, act := range p.Activities {
		switch act.Name {
		case "A":
			aID = act.ID
		case "B":
			bID = act.ID
		}
	}

	if _, err := agg.UpdateActivityProgress(ctx, created.ID, aID, 50, project.ActivityStatusInProgress); err != nil {
		t.Fatalf("progress A: %v", err)
	}
	final, err := agg.UpdateActivityProgress(ctx, created.ID, bID, 20, "")
	if err != nil {
		t.Fatalf("progress B: %v", err)
	}
	if final.ProgressLevel != 29 {
		t.Fatalf("progress_level = %d, want 29", final.ProgressLevel)
	}

	if _, err := agg.UpdateActivityProgress(ctx, created.ID, aID, 150, ""); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("out-of-range progress = %v, want validation", err)
	}
}

func TestFinishExpired(t *testing.T) {
	agg, ctx := newAggregate(t)
	now := time.Now().UTC()

	expired, err := agg.Create(ctx, validCreateInput(0))
	if err != nil {
		t.Fatalf("create expired: %v", err)
	}
	current, err := agg.Create(ctx, validCreateInput(0))
	if err != nil {
		t.Fatalf("create current: %v", err)
	}

	// A writer that already bumped the version must not see its token
	// regressed by the sweep.
	if err := agg.projects.UpdateFields(dbctx.WithTx(ctx, agg.deps.DB), expired.ID, map[string]interface{}{
		"end_date": now.AddDate(0, 0, -1),
		"version":  int64(5),
	}); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	finished, failed, err := agg.FinishExpired(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if finished != 1 || failed != 0 {
		t.Fatalf("sweep = %d finished %d failed, want 1/0", finished, failed)
	}

	after, err := agg.Get(ctx, expired.ID)
	if err != nil {
		t.Fatalf("reload expired: %v", err)
	}
	if after.Status != project.StatusFinished {
		t.Fatalf("expired status = %q, want Finished", after.Status)
	}
	if after.Version != 6 {
		t.Fatalf("version = %d, want 6", after.Version)
	}
	untouched, err := agg.Get(ctx, current.ID)
	if err != nil {
		t.Fatalf("reload current: %v", err)
	}
	if untouched.Status != project.StatusActive {
		t.Fatalf("current status = %q, want Active", untouched.Status)
	}
}

func TestAddEvidencesReturnsPersistedIDs(t *testing.T) {
	agg, ctx := newAggregate(t)

	created, err := agg.Create(ctx, validCreateInput(0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := agg.AddEvidences(ctx, created.ID, []EvidenceInput{
		{Type: project.EvidenceTypeImage, BucketKey: "projects/x/a.png", URL: "https://cdn/a.png"},
		{Type: project.EvidenceTypeDocument, BucketKey: "projects/x/b.pdf", URL: "https://cdn/b.pdf"},
	})
	if err != nil {
		t.Fatalf("add evidences: %v", err)
	}
	if len(out.Evidences) != 2 {
		t.Fatalf("evidences = %d, want 2", len(out.Evidences))
	}
	for i, ev := range out.Evidences {
		if ev.ID == uuid.Nil {
			t.Fatalf("evidence %d has zero id", i)
		}
	}
	if out.Version != created.Version+1 {
		t.Fatalf("version = %d, want %d", out.Version, created.Version+1)
	}
}
