package project

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusActive    = "Active"
	StatusFinished  = "Finished"
	StatusSuspended = "Suspended"
	StatusInactive  = "Inactive"
)

const (
	ActivityStatusPending    = "Pending"
	ActivityStatusInProgress = "InProgress"
	ActivityStatusCompleted  = "Completed"
)

const (
	AssociationStatusActive   = "Active"
	AssociationStatusInactive = "Inactive"
)

const (
	FollowUpWeekly    = "weekly"
	FollowUpMonthly   = "monthly"
	FollowUpQuarterly = "quarterly"
)

const (
	EvidenceTypeImage    = "image"
	EvidenceTypeDocument = "document"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusFinished, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusInProgress, ActivityStatusCompleted:
		return true
	}
	return false
}

func ValidAssociationStatus(s string) bool {
	switch s {
	case AssociationStatusActive, AssociationStatusInactive:
		return true
	}
	return false
}

func ValidFollowUpFrequency(s string) bool {
	switch s {
	case FollowUpWeekly, FollowUpMonthly, FollowUpQuarterly:
		return true
	}
	return false
}

// Project is the aggregate root. Number and Code are assigned once at
// creation and never mutated. BudgetExecuted, ReachedPeople and
// ProgressLevel are derived and must only be written through Normalize.
type Project struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Number string    `gorm:"uniqueIndex;not null;column:number" json:"number"`
	Code   string    `gorm:"uniqueIndex;not null;column:code" json:"code"`

	Name        string `gorm:"not null;column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`

	BudgetTotal    float64 `gorm:"not null;default:0;column:budget_total" json:"budget_total"`
	BudgetExecuted float64 `gorm:"not null;default:0;column:budget_executed" json:"budget_executed"`

	ReachedPeople int `gorm:"not null;default:0;column:reached_people" json:"reached_people"`
	ProgressLevel int `gorm:"not null;default:0;column:progress_level" json:"progress_level"`

	Status    string    `gorm:"not null;default:'Active';column:status" json:"status"`
	StartDate time.Time `gorm:"not null;column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"not null;column:end_date" json:"end_date"`

	EncargadoID *uuid.UUID `gorm:"type:uuid;index;column:encargado_id" json:"encargado_id,omitempty"`

	Department   string `gorm:"column:department" json:"department"`
	Municipality string `gorm:"column:municipality" json:"municipality"`
	Locality     string `gorm:"column:locality" json:"locality"`

	FollowUpFrequency     string     `gorm:"column:follow_up_frequency" json:"follow_up_frequency"`
	FollowUpVisitRequired bool       `gorm:"not null;default:false;column:follow_up_visit_required" json:"follow_up_visit_required"`
	FollowUpNextDate      *time.Time `gorm:"column:follow_up_next_date" json:"follow_up_next_date,omitempty"`

	// Version is the optimistic concurrency token for aggregate writes.
	Version int64 `gorm:"not null;default:1;column:version" json:"version"`

	Donors         []Donor                `gorm:"foreignKey:ProjectID" json:"donors"`
	Activities     []Activity             `gorm:"foreignKey:ProjectID" json:"activities"`
	Beneficiaries  []ProjectBeneficiary   `gorm:"foreignKey:ProjectID" json:"beneficiaries"`
	Locations      []Location             `gorm:"foreignKey:ProjectID" json:"prioritized_locations"`
	Evidences      []Evidence             `gorm:"foreignKey:ProjectID" json:"evidences"`
	Objectives     []ProjectObjective     `gorm:"foreignKey:ProjectID" json:"objectives"`
	StrategicLines []ProjectStrategicLine `gorm:"foreignKey:ProjectID" json:"strategic_lines"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

// Donor is one funding line: how much a catalog donor committed to this
// project. Percentage is derived from the project budget.
type Donor struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_donor;column:project_id" json:"project_id"`
	DonorID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_donor;column:donor_id" json:"donor_id"`
	Amount         float64    `gorm:"not null;column:amount_contributed" json:"amount_contributed"`
	Percentage     float64    `gorm:"not null;default:0;column:percentage" json:"percentage"`
	CommitmentDate *time.Time `gorm:"column:commitment_date" json:"commitment_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Donor) TableName() string { return "project_donor" }

type Activity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;column:project_id" json:"project_id"`

	Name            string  `gorm:"not null;column:name" json:"name"`
	Description     string  `gorm:"column:description" json:"description"`
	AllocatedBudget float64 `gorm:"not null;default:0;column:allocated_budget" json:"allocated_budget"`
	PctOfBudget     float64 `gorm:"not null;default:0;column:percentage_of_budget" json:"percentage_of_budget"`
	Status          string  `gorm:"not null;default:'Pending';column:status" json:"status"`
	Progress        int     `gorm:"not null;default:0;column:progress" json:"progress"`

	StartDate       *time.Time     `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate         *time.Time     `gorm:"column:end_date" json:"end_date,omitempty"`
	ExpectedResults string         `gorm:"column:expected_results" json:"expected_results"`
	Milestones      datatypes.JSON `gorm:"column:milestones" json:"milestones,omitempty"`

	Beneficiaries []ActivityBeneficiary `gorm:"foreignKey:ActivityID" json:"beneficiaries_associated"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Activity) TableName() string { return "project_activity" }

// ActivityBeneficiary links a registry beneficiary to one activity.
// Its status is independent of the beneficiary's own record.
type ActivityBeneficiary struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActivityID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_beneficiary;column:activity_id" json:"activity_id"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_beneficiary;column:beneficiary_id" json:"beneficiary_id"`
	Status        string    `gorm:"not null;default:'Active';column:status" json:"status"`
	AssignedAt    time.Time `gorm:"not null;default:now();column:assigned_at" json:"assigned_at"`
	Notes         string    `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActivityBeneficiary) TableName() string { return "activity_beneficiary" }

type ProjectBeneficiary struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_beneficiary;column:project_id" json:"project_id"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_beneficiary;column:beneficiary_id" json:"beneficiary_id"`
	Status        string    `gorm:"not null;default:'Active';column:status" json:"status"`
	IntakeDate    time.Time `gorm:"not null;default:now();column:intake_date" json:"intake_date"`
	Notes         string    `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProjectBeneficiary) TableName() string { return "project_beneficiary" }

type Location struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index;column:project_id" json:"project_id"`
	Description string    `gorm:"not null;column:description" json:"description"`
	Rank        int       `gorm:"not null;column:rank" json:"rank"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Location) TableName() string { return "project_location" }

type Evidence struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index;column:project_id" json:"project_id"`
	Type        string    `gorm:"not null;column:type" json:"type"`
	BucketKey   string    `gorm:"not null;column:bucket_key" json:"bucket_key"`
	URL         string    `gorm:"column:url" json:"url"`
	Description string    `gorm:"column:description" json:"description"`
	UploadedAt  time.Time `gorm:"not null;default:now();column:uploaded_at" json:"uploaded_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Evidence) TableName() string { return "project_evidence" }

type ProjectObjective struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_objective;column:project_id" json:"project_id"`
	ObjectiveID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_objective;column:objective_id" json:"objective_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProjectObjective) TableName() string { return "project_objective" }

type ProjectStrategicLine struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_strategic_line;column:project_id" json:"project_id"`
	StrategicLineID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_strategic_line;column:strategic_line_id" json:"strategic_line_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProjectStrategicLine) TableName() string { return "project_strategic_line" }
