package beneficiary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Beneficiary struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName   string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName    string     `gorm:"not null;column:last_name" json:"last_name"`
	DocumentID  string     `gorm:"uniqueIndex;not null;column:document_id" json:"document_id"`
	BirthDate   *time.Time `gorm:"column:birth_date" json:"birth_date,omitempty"`
	Gender      string     `gorm:"column:gender" json:"gender"`
	CivilStatus string     `gorm:"column:civil_status" json:"civil_status"`
	Phone       string     `gorm:"column:phone" json:"phone"`

	Department   string `gorm:"column:department" json:"department"`
	Municipality string `gorm:"column:municipality" json:"municipality"`
	Locality     string `gorm:"column:locality" json:"locality"`

	FatherName string `gorm:"column:father_name" json:"father_name"`
	MotherName string `gorm:"column:mother_name" json:"mother_name"`

	Status string `gorm:"not null;default:'Active';column:status" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Beneficiary) TableName() string { return "beneficiary" }
