package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "NOT_STARTED"
	StatusInProgress ProgressStatus = "IN_PROGRESS"
	StatusCompleted  ProgressStatus = "COMPLETED"
)

// LessonProgress holds at most one row per (user, lesson); writes go through
// an upsert on that pair.
type LessonProgress struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID    uuid.UUID      `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	Status      ProgressStatus `json:"status" gorm:"type:varchar(16);not null;default:'NOT_STARTED'"`
	CompletedAt *time.Time     `json:"completed_at"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
