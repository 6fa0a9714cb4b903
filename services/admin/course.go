package admin

import (
	"context"

	"campus/auth"
	"campus/database"
	"campus/logger"
	"campus/models"
	courseModels "campus/models/course"
	"campus/services"
	courseValidator "campus/validators/course"

	"gorm.io/gorm"
)

func (s *Service) requireCourseAdmin(ctx context.Context, user *auth.SessionUser) (string, bool) {
	switch s.guard.RequireRole(ctx, user, models.RoleAdmin) {
	case auth.Authorized:
		return "", true
	case auth.Unauthenticated:
		return "Sessao expirada. Atualize a pagina e tente novamente.", false
	default:
		return "Voce nao tem permissao para gerenciar cursos.", false
	}
}

func courseWriteMessage(err error) string {
	switch database.Classify(err) {
	case database.KindPermissionDenied:
		return "Voce nao tem permissao para salvar cursos (RLS)."
	case database.KindDuplicate:
		return "Ja existe um curso com este slug. Escolha outro slug."
	case database.KindNetwork:
		return "Falha de conexão com o banco de dados. Verifique a rede e tente novamente."
	default:
		return "Nao foi possivel salvar o curso. Tente novamente."
	}
}

// CreateCourse inserts a new course.
func (s *Service) CreateCourse(ctx context.Context, user *auth.SessionUser, form courseValidator.CourseForm) services.ActionResult {
	input, errs := courseValidator.CheckCourse(form, false)
	if errs != nil {
		return services.Invalid(invalidFormMessage, errs)
	}
	if message, ok := s.requireCourseAdmin(ctx, user); !ok {
		return services.Failed(message)
	}

	course := courseModels.Course{
		Slug:          input.Slug,
		Title:         input.Title,
		Description:   input.Description,
		CoverImageURL: input.CoverImageURL,
	}
	err := s.sessions.AsUser(user.ID).Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&course).Error
	})
	if err != nil {
		s.log.Error("Failed to create course", logger.Fields{"slug": input.Slug, "code": database.ErrorCode(err), "userId": user.ID}, err)
		return services.Failed(courseWriteMessage(err))
	}

	s.log.Info("Course created", logger.Fields{"courseId": course.ID, "slug": course.Slug})
	s.revalidate(ctx, "/admin", "/dashboard", coursePath(course.Slug))
	return services.Succeeded("Curso criado com sucesso.")
}

// UpdateCourse rewrites the editable fields of an existing course.
func (s *Service) UpdateCourse(ctx context.Context, user *auth.SessionUser, form courseValidator.CourseForm) services.ActionResult {
	input, errs := courseValidator.CheckCourse(form, true)
	if errs != nil {
		return services.Invalid(invalidFormMessage, errs)
	}
	if message, ok := s.requireCourseAdmin(ctx, user); !ok {
		return services.Failed(message)
	}

	var previousSlug string
	err := s.sessions.AsUser(user.ID).Run(ctx, func(tx *gorm.DB) error {
		var existing courseModels.Course
		if err := tx.Select("id", "slug").Where("id = ?", input.CourseID).First(&existing).Error; err != nil {
			return err
		}
		previousSlug = existing.Slug

		res := tx.Model(&courseModels.Course{}).Where("id = ?", input.CourseID).Updates(map[string]interface{}{
			"slug":            input.Slug,
			"title":           input.Title,
			"description":     input.Description,
			"cover_image_url": input.CoverImageURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to update course", logger.Fields{"courseId": input.CourseID, "code": database.ErrorCode(err), "userId": user.ID}, err)
		return services.Failed(courseWriteMessage(err))
	}

	paths := []string{"/admin", "/dashboard", coursePath(input.Slug)}
	if previousSlug != "" && previousSlug != input.Slug {
		paths = append(paths, coursePath(previousSlug))
	}
	s.revalidate(ctx, paths...)
	return services.Succeeded("Curso atualizado com sucesso.")
}
