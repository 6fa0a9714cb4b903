package admin

import (
	"context"

	"campus/auth"
	"campus/database"
	"campus/logger"
	"campus/models"
	courseModels "campus/models/course"
	"campus/services"
	"campus/services/catalog"
	courseValidator "campus/validators/course"

	"gorm.io/gorm"
)

// ModuleResult carries the new module's selector entry so the lesson form
// can offer it right away.
type ModuleResult struct {
	services.ActionResult
	Option *catalog.ModuleOption
}

// CreateModule appends a module to a course. Without a position the module
// goes after the current last one; that read and the insert are not atomic,
// so concurrent creations may share a position.
func (s *Service) CreateModule(ctx context.Context, user *auth.SessionUser, form courseValidator.ModuleForm) ModuleResult {
	input, errs := courseValidator.CheckModule(form)
	if errs != nil {
		return ModuleResult{ActionResult: services.Invalid(invalidFormMessage, errs)}
	}

	switch s.guard.RequireRole(ctx, user, models.RoleAdmin) {
	case auth.Unauthenticated:
		return ModuleResult{ActionResult: services.Failed("Sessão expirada. Atualize a página e tente novamente.")}
	case auth.Unauthorized:
		return ModuleResult{ActionResult: services.Failed("Você não tem permissão para criar módulos.")}
	}

	sess := s.sessions.AsUser(user.ID)
	fields := logger.Fields{"courseId": input.CourseID, "userId": user.ID}

	var courses []courseModels.Course
	if err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Select("id", "slug", "title").Where("id = ?", input.CourseID).Limit(1).Find(&courses).Error
	}); err != nil {
		s.log.Error("Failed to validate course for new module", fields, err)
	}
	if len(courses) == 0 {
		return ModuleResult{ActionResult: services.Failed("Curso não encontrado para criação do módulo.")}
	}
	course := courses[0]

	position := input.Position
	if position == 0 {
		var last []courseModels.Module
		if err := sess.Run(ctx, func(tx *gorm.DB) error {
			return tx.Select("position").Where("course_id = ?", course.ID).Order("position DESC").Limit(1).Find(&last).Error
		}); err != nil {
			s.log.Warn("Failed to read last module position, starting at 1", fields, err)
		}
		position = 1
		if len(last) > 0 {
			position = last[0].Position + 1
		}
	}

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		Position:    position,
	}
	if err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&module).Error
	}); err != nil {
		fields["code"] = database.ErrorCode(err)
		s.log.Error("Failed to create module", fields, err)

		var message string
		switch database.Classify(err) {
		case database.KindPermissionDenied:
			message = "Você não tem permissão para criar módulos (RLS)."
		case database.KindNetwork:
			message = "Falha de conexão com o banco de dados. Verifique a rede e tente novamente."
		default:
			message = "Não foi possível criar o módulo. Tente novamente."
		}
		return ModuleResult{ActionResult: services.Failed(message + s.details(err))}
	}

	s.log.Info("Module created", logger.Fields{"moduleId": module.ID, "courseId": course.ID, "position": position})
	s.revalidate(ctx, "/admin", "/dashboard/aulas/nova", coursePath(course.Slug))

	module.Course = &course
	option := catalog.OptionFor(module)
	return ModuleResult{
		ActionResult: services.Succeeded("Módulo criado com sucesso."),
		Option:       &option,
	}
}
