// Package progress records lesson completion.
package progress

import (
	"context"
	"time"

	"campus/auth"
	"campus/database"
	"campus/logger"
	courseModels "campus/models/course"
	"campus/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	sessions database.Sessions
	log      *logger.Logger
	now      func() time.Time
}

func NewService(sessions database.Sessions, log *logger.Logger) *Service {
	return &Service{sessions: sessions, log: log.With("progress"), now: time.Now}
}

// CompleteLesson marks lessonID as completed for user. Replays only refresh
// the timestamps; the (user, lesson) pair never gets a second row.
func (s *Service) CompleteLesson(ctx context.Context, user *auth.SessionUser, lessonID uuid.UUID) *services.APIError {
	fields := logger.Fields{"lessonId": lessonID, "userId": user.ID}
	sess := s.sessions.AsUser(user.ID)

	var count int64
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&courseModels.Lesson{}).Where("id = ?", lessonID).Count(&count).Error
	})
	if err != nil {
		s.log.Error("Failed to validate lesson before completing it", fields, err)
		return services.NewAPIError(fiber.StatusInternalServerError, "lesson_validation_failed", "").WithCause(err)
	}
	if count == 0 {
		return services.NewAPIError(fiber.StatusNotFound, "lesson_not_found", "")
	}

	now := s.now()
	upsert := func(tx *gorm.DB) error {
		row := courseModels.LessonProgress{
			UserID:      user.ID,
			LessonID:    lessonID,
			Status:      courseModels.StatusCompleted,
			CompletedAt: &now,
			UpdatedAt:   now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "updated_at"}),
		}).Create(&row).Error
	}

	escalated, err := database.Escalate(ctx, sess, s.sessions, upsert)
	if escalated {
		s.log.Warn("Fell back to the service role to update lesson progress", fields)
	}
	if err != nil {
		s.log.Error("Failed to complete lesson", fields, err)
		message := "Nao foi possivel salvar o progresso da aula."
		if errors.Is(err, database.ErrServiceRoleUnavailable) {
			message = "Permissao insuficiente para atualizar progresso da aula."
		}
		return services.NewAPIError(fiber.StatusInternalServerError, "failed_to_complete_lesson", message).WithCause(err)
	}
	return nil
}
