package registry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donor is a catalog entry referenced by project funding lines.
type Donor struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name    string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Contact string    `gorm:"column:contact" json:"contact"`
	Active  bool      `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Donor) TableName() string { return "donor" }

type GlobalObjective struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Active      bool      `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GlobalObjective) TableName() string { return "global_objective" }

type StrategicLine struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Active      bool      `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StrategicLine) TableName() string { return "strategic_line" }

// MailConfig is a DB singleton. Reads lazily create the default row when
// the table is empty.
type MailConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FromName    string    `gorm:"not null;column:from_name" json:"from_name"`
	FromAddress string    `gorm:"not null;column:from_address" json:"from_address"`
	ReplyTo     string    `gorm:"column:reply_to" json:"reply_to"`
	Subject     string    `gorm:"not null;column:subject" json:"subject"`
	BodyHTML    string    `gorm:"not null;column:body_html" json:"body_html"`
	Enabled     bool      `gorm:"not null;default:true;column:enabled" json:"enabled"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MailConfig) TableName() string { return "mail_config" }

// DefaultMailConfig is the row created on first read of an empty table.
func DefaultMailConfig() MailConfig {
	return MailConfig{
		FromName:    "Notificaciones",
		FromAddress: "no-reply@localhost",
		Subject:     "Recuperación de acceso",
		BodyHTML:    "<p>Su código de recuperación es: {{code}}</p>",
		Enabled:     true,
	}
}
