package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstitutionalLead is a write-only capture of the sales form.
type InstitutionalLead struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Organization string    `json:"organization" gorm:"not null"`
	ContactName  string    `json:"contact_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	Phone        *string   `json:"phone"`
	Headcount    *int      `json:"headcount"`
	Message      *string   `json:"message" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (l *InstitutionalLead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
