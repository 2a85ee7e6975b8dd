package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles ordered by privilege. Super manages everything including other
// administrators; Encargado only works with projects assigned to them.
const (
	RoleSuper     = "Super"
	RoleAdmin     = "Administrador"
	RoleEncargado = "Encargado"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuper, RoleAdmin, RoleEncargado:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string     `gorm:"not null;column:password" json:"-"`
	Name      string     `gorm:"not null;column:name" json:"name"`
	Role      string     `gorm:"not null;column:role" json:"role"`
	Phone     string     `gorm:"column:phone" json:"phone"`
	BirthDate *time.Time `gorm:"column:birth_date" json:"birth_date,omitempty"`
	Active    bool       `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// UserToken is a persisted refresh session. Access tokens are stateless,
// refresh tokens are revocable through this table.
type UserToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	TokenHash string     `gorm:"not null;uniqueIndex;column:token_hash" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserToken) TableName() string { return "user_token" }
