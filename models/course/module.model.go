package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module represents a section within a course, ordered by Position
type Module struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID `json:"course_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	Position    int       `json:"position" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`

	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
