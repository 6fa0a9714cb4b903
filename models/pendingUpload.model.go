package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingUpload stages a file uploaded against a lesson id that does not
// exist yet. The row is claimed (deleted) when the lesson is created with that
// id and its material attached; unclaimed rows are swept after a TTL together
// with their objects.
type PendingUpload struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DraftLessonID uuid.UUID `json:"draft_lesson_id" gorm:"type:uuid;index;not null"`
	ModuleID      uuid.UUID `json:"module_id" gorm:"type:uuid;not null"`
	CourseID      uuid.UUID `json:"course_id" gorm:"type:uuid;not null"`
	Bucket        string    `json:"bucket" gorm:"not null"`
	Path          string    `json:"path" gorm:"uniqueIndex;not null"`
	UploadedBy    uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

func (p *PendingUpload) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
