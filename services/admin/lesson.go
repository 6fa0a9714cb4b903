package admin

import (
	"context"
	"mime/multipart"
	"strings"

	"campus/auth"
	"campus/database"
	"campus/logger"
	"campus/middleware"
	"campus/models"
	courseModels "campus/models/course"
	"campus/services"
	"campus/services/materials"
	"campus/storage"
	"campus/validators"
	courseValidator "campus/validators/course"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	NewLessonPath = "/dashboard/aulas/nova"

	materialCaveat = "Aula criada, mas não foi possível salvar o material complementar. Anexe o material novamente."
)

// CreateLesson creates a lesson and, when the form carries one, its
// material. The two writes are independent: a material failure after the
// lesson insert is reported as a warning on a successful result.
func (s *Service) CreateLesson(ctx context.Context, user *auth.SessionUser, form courseValidator.LessonForm, file *multipart.FileHeader) services.ActionResult {
	form.MaterialHasFile = file != nil
	input, errs := courseValidator.CheckLesson(form)
	if errs != nil {
		return services.Invalid(invalidFormMessage, errs)
	}

	switch s.guard.RequireRole(ctx, user, models.RoleAdmin) {
	case auth.Unauthenticated:
		return services.ActionResult{Redirect: middleware.LoginRedirect(NewLessonPath)}
	case auth.Unauthorized:
		return services.Failed("Você não tem permissão para cadastrar aulas.")
	}

	sess := s.sessions.AsUser(user.ID)
	fields := logger.Fields{"moduleId": input.ModuleID, "userId": user.ID}

	var modules []courseModels.Module
	if err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", input.ModuleID).Limit(1).Preload("Course").Find(&modules).Error
	}); err != nil {
		s.log.Error("Failed to validate module for new lesson", fields, err)
	}
	if len(modules) == 0 {
		return services.Failed("O módulo selecionado não existe mais.")
	}
	module := modules[0]

	if m := input.Material; m != nil && m.Uploaded != nil {
		prefix := materials.LessonPrefix(module.CourseID, input.LessonID)
		if m.Uploaded.Bucket != storage.MaterialsBucket || !strings.HasPrefix(m.Uploaded.Path, prefix) {
			return services.Invalid(invalidFormMessage, validators.FieldErrors{
				"material_file": {"Arquivo enviado não corresponde a esta aula. Envie o arquivo novamente."},
			})
		}
	}

	lesson := courseModels.Lesson{
		ID:          input.LessonID,
		ModuleID:    module.ID,
		Title:       input.Title,
		Description: input.Description,
		VideoURL:    input.VideoURL,
		Position:    input.Position,
	}
	if err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&lesson).Error
	}); err != nil {
		fields["code"] = database.ErrorCode(err)
		s.log.Error("Failed to create lesson", fields, err)

		var message string
		switch database.Classify(err) {
		case database.KindPermissionDenied:
			message = "Você não tem permissão para cadastrar aulas (RLS)."
		case database.KindNetwork:
			message = "Falha de conexão com o banco de dados. Verifique a rede e tente novamente."
		case database.KindDuplicate:
			message = "Esta aula já foi cadastrada. Atualize a página e tente novamente."
		default:
			message = "Não foi possível salvar a aula. Tente novamente."
		}
		return services.Failed(message + s.details(err))
	}
	fields["lessonId"] = lesson.ID
	s.log.Info("Lesson created", fields)

	result := services.Succeeded("Aula criada com sucesso.")
	if input.Material != nil {
		if err := s.attachMaterial(ctx, sess, module, lesson, input.Material, file); err != nil {
			s.log.Error("Lesson created but its material failed", fields, err)
			result.Warning = materialCaveat
			var fileErr *materials.FileError
			if errors.As(err, &fileErr) {
				result.Warning = "Aula criada, mas o material complementar foi recusado: " + fileErr.Message
			}
		}
	}

	slug := ""
	if module.Course != nil {
		slug = module.Course.Slug
	}
	if slug != "" {
		s.revalidate(ctx, "/admin", "/dashboard", coursePath(slug))
		result.Redirect = coursePath(slug)
	} else {
		s.revalidate(ctx, "/admin", "/dashboard")
		result.Redirect = "/dashboard"
	}
	return result
}

func (s *Service) attachMaterial(ctx context.Context, sess database.Session, module courseModels.Module, lesson courseModels.Lesson, input *courseValidator.MaterialInput, file *multipart.FileHeader) error {
	material := courseModels.Material{
		LessonID:     lesson.ID,
		Label:        input.Label,
		Description:  input.Description,
		MaterialType: input.Type,
		SourceKind:   input.Source,
	}

	var stored *materials.Metadata
	switch {
	case input.Source == courseModels.SourceLink:
		url := input.URL
		material.ResourceURL = &url
	case input.Uploaded != nil:
		stored = &materials.Metadata{
			Bucket:           input.Uploaded.Bucket,
			Path:             input.Uploaded.Path,
			MimeType:         input.Uploaded.MimeType,
			SizeBytes:        input.Uploaded.SizeBytes,
			OriginalFileName: input.Uploaded.OriginalFileName,
		}
	case file != nil:
		meta, err := s.files.StoreFile(ctx, file, module.CourseID, lesson.ID)
		if err != nil {
			return err
		}
		stored = meta
	default:
		return errors.New("upload material without a file")
	}

	if stored != nil {
		material.StorageBucket = &stored.Bucket
		material.StoragePath = &stored.Path
		material.MimeType = stored.MimeType
		if stored.SizeBytes > 0 {
			size := stored.SizeBytes
			material.FileSizeBytes = &size
		}
		name := stored.OriginalFileName
		if name == "" {
			name = stored.Path[strings.LastIndex(stored.Path, "/")+1:]
		}
		material.OriginalFileName = &name
		material.MaterialType = courseValidator.MaterialTypeForFile(input.Type, materials.FileExtension(name))
	}

	if err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&material).Error
	}); err != nil {
		if stored != nil && input.Uploaded == nil {
			if rmErr := s.files.Remove(ctx, stored); rmErr != nil {
				s.log.Warn("Failed to remove orphan material file", logger.Fields{"path": stored.Path}, rmErr)
			}
		}
		return errors.Wrap(err, "inserting material")
	}

	if input.Uploaded != nil {
		s.claimPendingUpload(ctx, lesson.ID, stored.Path)
	}
	return nil
}

// claimPendingUpload removes the staging row of a pre-uploaded file now that
// its lesson exists.
func (s *Service) claimPendingUpload(ctx context.Context, lessonID uuid.UUID, path string) {
	fields := logger.Fields{"lessonId": lessonID, "path": path}
	svc, err := s.sessions.Service()
	if err != nil {
		s.log.Warn("Cannot claim pending upload without the service role", fields, err)
		return
	}
	err = svc.Run(ctx, func(tx *gorm.DB) error {
		return tx.Where("draft_lesson_id = ? AND path = ?", lessonID, path).Delete(&models.PendingUpload{}).Error
	})
	if err != nil {
		s.log.Warn("Failed to claim pending upload", fields, err)
	}
}
