package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson belongs to a module. The id may be generated by the client so that
// files can be uploaded before the row exists.
type Lesson struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ModuleID    uuid.UUID `json:"module_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	VideoURL    string    `json:"video_url" gorm:"not null"`
	Position    int       `json:"position" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`

	Module    *Module    `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Materials []Material `json:"materials,omitempty" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
