package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus/auth"
	"campus/database/dbtest"
	"campus/logger"
	courseModels "campus/models/course"
	"campus/services/progress"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLesson(t *testing.T, db *gorm.DB) courseModels.Lesson {
	t.Helper()
	course := courseModels.Course{Slug: "curso", Title: "Curso"}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Modulo", Position: 1}
	require.NoError(t, db.Create(&module).Error)
	lesson := courseModels.Lesson{ModuleID: module.ID, Title: "Aula", VideoURL: "https://video.example.com/1", Position: 1}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson
}

func progressRows(t *testing.T, db *gorm.DB, userID, lessonID uuid.UUID) []courseModels.LessonProgress {
	t.Helper()
	var rows []courseModels.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).Find(&rows).Error)
	return rows
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	client := dbtest.New(t)
	lesson := seedLesson(t, client.DB())
	user := &auth.SessionUser{ID: uuid.New()}
	svc := progress.NewService(client, logger.Discard())

	require.Nil(t, svc.CompleteLesson(context.Background(), user, lesson.ID))
	first := progressRows(t, client.DB(), user.ID, lesson.ID)
	require.Len(t, first, 1)
	assert.Equal(t, courseModels.StatusCompleted, first[0].Status)
	require.NotNil(t, first[0].CompletedAt)

	time.Sleep(5 * time.Millisecond)
	require.Nil(t, svc.CompleteLesson(context.Background(), user, lesson.ID))
	second := progressRows(t, client.DB(), user.ID, lesson.ID)
	require.Len(t, second, 1)
	assert.Equal(t, courseModels.StatusCompleted, second[0].Status)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].UpdatedAt.After(first[0].UpdatedAt))
}

func TestCompleteLessonConcurrently(t *testing.T) {
	client := dbtest.New(t)
	lesson := seedLesson(t, client.DB())
	user := &auth.SessionUser{ID: uuid.New()}
	svc := progress.NewService(client, logger.Discard())

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.CompleteLesson(context.Background(), user, lesson.ID) == nil
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []bool{true, true}, results)
	assert.Len(t, progressRows(t, client.DB(), user.ID, lesson.ID), 1)
}

func TestCompleteLessonNotFound(t *testing.T) {
	client := dbtest.New(t)
	svc := progress.NewService(client, logger.Discard())

	apiErr := svc.CompleteLesson(context.Background(), &auth.SessionUser{ID: uuid.New()}, uuid.New())
	require.NotNil(t, apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "lesson_not_found", apiErr.Code)
}

func TestCompleteLessonFallsBackToServiceRole(t *testing.T) {
	client := dbtest.New(t)
	lesson := seedLesson(t, client.DB())
	user := &auth.SessionUser{ID: uuid.New()}

	sessions := &dbtest.Sessions{Client: client, UserSession: &dbtest.WriteDeniedSession{Session: client.AsUser(user.ID)}}
	svc := progress.NewService(sessions, logger.Discard())

	require.Nil(t, svc.CompleteLesson(context.Background(), user, lesson.ID))
	assert.Equal(t, 1, sessions.ServiceCalls)
	assert.Len(t, progressRows(t, client.DB(), user.ID, lesson.ID), 1)
}

func TestCompleteLessonFallbackFailure(t *testing.T) {
	client := dbtest.New(t)
	lesson := seedLesson(t, client.DB())
	user := &auth.SessionUser{ID: uuid.New()}

	sessions := &dbtest.Sessions{Client: client, UserSession: &dbtest.WriteDeniedSession{Session: client.AsUser(user.ID)}, DisableService: true}
	svc := progress.NewService(sessions, logger.Discard())

	apiErr := svc.CompleteLesson(context.Background(), user, lesson.ID)
	require.NotNil(t, apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "failed_to_complete_lesson", apiErr.Code)
	assert.Equal(t, "Permissao insuficiente para atualizar progresso da aula.", apiErr.Message)
	assert.Empty(t, progressRows(t, client.DB(), user.ID, lesson.ID))
}

func TestCompleteLessonLookupFailure(t *testing.T) {
	client := dbtest.New(t)
	sessions := &dbtest.Sessions{Client: client, UserSession: &dbtest.DeniedSession{}}
	svc := progress.NewService(sessions, logger.Discard())

	apiErr := svc.CompleteLesson(context.Background(), &auth.SessionUser{ID: uuid.New()}, uuid.New())
	require.NotNil(t, apiErr)
	assert.Equal(t, "lesson_validation_failed", apiErr.Code)
}
