package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/beneficiary"
	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/domain/registry"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *identity.User {
	tb.Helper()
	u := &identity.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
		Role:     role,
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDonor(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *registry.Donor {
	tb.Helper()
	d := &registry.Donor{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed donor: %v", err)
	}
	return d
}

func SeedBeneficiary(tb testing.TB, ctx context.Context, tx *gorm.DB, documentID string) *beneficiary.Beneficiary {
	tb.Helper()
	b := &beneficiary.Beneficiary{
		ID:         uuid.New(),
		FirstName:  "Ana",
		LastName:   "Lopez",
		DocumentID: documentID,
		Status:     beneficiary.StatusActive,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed beneficiary: %v", err)
	}
	return b
}

var codeSeq atomic.Int64

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, number string, total float64) *project.Project {
	tb.Helper()
	now := time.Now().UTC()
	p := &project.Project{
		ID:          uuid.New(),
		Number:      number,
		Code:        fmt.Sprintf("TST-%03d", codeSeq.Add(1)%1000),
		Name:        "Test Project " + number,
		BudgetTotal: total,
		Status:      project.StatusActive,
		StartDate:   now.AddDate(0, -1, 0),
		EndDate:     now.AddDate(0, 6, 0),
		Version:     1,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedProjectDonor(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, donorID uuid.UUID, amount float64) *project.Donor {
	tb.Helper()
	d := &project.Donor{
		ID:        uuid.New(),
		ProjectID: projectID,
		DonorID:   donorID,
		Amount:    amount,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed project donor: %v", err)
	}
	return d
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, name string, allocated float64) *project.Activity {
	tb.Helper()
	a := &project.Activity{
		ID:              uuid.New(),
		ProjectID:       projectID,
		Name:            name,
		AllocatedBudget: allocated,
		Status:          project.ActivityStatusPending,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}
