package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assumed whenever a profile is missing or unreadable.
const DefaultRole = RoleStudent

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Profile shares its id with User and drives every authorization check.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:'student'"`
	FullName  *string   `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
