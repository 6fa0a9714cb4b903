// Package materials stores lesson attachments and hands out signed URLs for
// them.
package materials

import (
	"context"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"campus/auth"
	"campus/database"
	"campus/logger"
	"campus/models"
	courseModels "campus/models/course"
	"campus/services"
	"campus/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const uploadFailedMessage = "Nao foi possivel enviar o arquivo de material. Tente novamente."

// Metadata describes a stored material file.
type Metadata struct {
	Bucket           string  `json:"bucket"`
	Path             string  `json:"path"`
	MimeType         *string `json:"mimeType"`
	SizeBytes        int64   `json:"sizeBytes"`
	OriginalFileName string  `json:"originalFileName"`
}

type Service struct {
	sessions database.Sessions
	store    storage.ObjectStore
	signer   *storage.Signer
	log      *logger.Logger
	now      func() time.Time
}

func NewService(sessions database.Sessions, store storage.ObjectStore, signer *storage.Signer, log *logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		store:    store,
		signer:   signer,
		log:      log.With("materials"),
		now:      time.Now,
	}
}

// StoreFile validates file and writes it under the lesson folder. Validation
// failures come back as *FileError.
func (s *Service) StoreFile(ctx context.Context, file *multipart.FileHeader, courseID, lessonID uuid.UUID) (*Metadata, error) {
	checked, err := ValidateFile(file.Filename, file.Size)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	mimeType := strings.TrimSpace(file.Header.Get(fiber.HeaderContentType))
	if mimeType == "" || mimeType == fiber.MIMEOctetStream {
		if detected, err := mimetype.DetectReader(src); err == nil && !detected.Is(fiber.MIMEOctetStream) {
			mimeType = detected.String()
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "rewinding uploaded file")
		}
	}

	objectPath := BuildStoragePath(courseID, lessonID, checked.SafeFileName, s.now())
	if err := s.store.Put(ctx, storage.MaterialsBucket, objectPath, src, mimeType); err != nil {
		return nil, errors.Wrapf(err, "storing %s", objectPath)
	}

	original := strings.TrimSpace(file.Filename)
	if original == "" {
		original = checked.SafeFileName
	}
	meta := &Metadata{
		Bucket:           storage.MaterialsBucket,
		Path:             objectPath,
		SizeBytes:        file.Size,
		OriginalFileName: original,
	}
	if mimeType != "" {
		meta.MimeType = &mimeType
	}
	return meta, nil
}

// UploadRequest is a material file sent ahead of (or after) its lesson.
// ModuleID is only consulted when the lesson does not exist yet.
type UploadRequest struct {
	LessonID uuid.UUID
	ModuleID string
	File     *multipart.FileHeader
}

// Upload stores a material file for an admin. When the lesson has not been
// created yet the file is staged in pending_uploads until the lesson claims it.
func (s *Service) Upload(ctx context.Context, user *auth.SessionUser, req UploadRequest) (*Metadata, *services.APIError) {
	sess := s.sessions.AsUser(user.ID)
	fields := logger.Fields{"lessonId": req.LessonID, "userId": user.ID}

	var lessons []courseModels.Lesson
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", req.LessonID).Limit(1).Preload("Module").Find(&lessons).Error
	})
	if err != nil {
		s.log.Error("Failed to look up lesson for material upload", fields, err)
		return nil, services.NewAPIError(fiber.StatusInternalServerError, "lesson_lookup_failed", "").WithCause(err)
	}

	var courseID, draftModuleID uuid.UUID
	draft := len(lessons) == 0 || lessons[0].Module == nil
	if !draft {
		courseID = lessons[0].Module.CourseID
	} else {
		if req.ModuleID == "" {
			return nil, services.NewAPIError(fiber.StatusBadRequest, "module_id_required_for_preupload", "")
		}
		moduleID, err := uuid.Parse(req.ModuleID)
		if err != nil {
			return nil, services.NewAPIError(fiber.StatusBadRequest, "invalid_module_id", "")
		}
		fields["moduleId"] = moduleID

		var modules []courseModels.Module
		err = sess.Run(ctx, func(tx *gorm.DB) error {
			return tx.Where("id = ?", moduleID).Limit(1).Find(&modules).Error
		})
		if err != nil {
			s.log.Error("Failed to look up module for material pre-upload", fields, err)
			return nil, services.NewAPIError(fiber.StatusInternalServerError, "module_lookup_failed", "").WithCause(err)
		}
		if len(modules) == 0 {
			return nil, services.NewAPIError(fiber.StatusNotFound, "module_not_found", "")
		}
		courseID = modules[0].CourseID
		draftModuleID = moduleID
	}

	meta, err := s.StoreFile(ctx, req.File, courseID, req.LessonID)
	if err != nil {
		var fileErr *FileError
		if errors.As(err, &fileErr) {
			return nil, services.NewAPIError(fiber.StatusBadRequest, "upload_failed", fileErr.Message)
		}
		s.log.Error("Failed to store material file", fields, err)
		return nil, services.NewAPIError(fiber.StatusBadRequest, "upload_failed", uploadFailedMessage).WithCause(err)
	}

	if draft {
		if err := s.stage(ctx, meta, req.LessonID, draftModuleID, courseID, user.ID); err != nil {
			s.log.Error("Failed to stage pending upload", fields, err)
			_ = s.store.Remove(ctx, meta.Bucket, meta.Path)
			return nil, services.NewAPIError(fiber.StatusBadRequest, "upload_failed", uploadFailedMessage).WithCause(err)
		}
	}

	s.log.Info("Material file uploaded", logger.Fields{"lessonId": req.LessonID, "path": meta.Path, "draft": draft})
	return meta, nil
}

func (s *Service) stage(ctx context.Context, meta *Metadata, lessonID, moduleID, courseID, userID uuid.UUID) error {
	svc, err := s.sessions.Service()
	if err != nil {
		return err
	}
	return svc.Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.PendingUpload{
			DraftLessonID: lessonID,
			ModuleID:      moduleID,
			CourseID:      courseID,
			Bucket:        meta.Bucket,
			Path:          meta.Path,
			UploadedBy:    userID,
		}).Error
	})
}

// SignedURLResult is the answer to a material URL request.
type SignedURLResult struct {
	URL        string
	SourceKind courseModels.SourceKind
}

// SignedURL resolves the URL a signed-in user should open for a material.
// Links come back unchanged; uploads always go through a short-lived signed
// URL, with the original file name forced when download is set.
func (s *Service) SignedURL(ctx context.Context, user *auth.SessionUser, materialID uuid.UUID, download bool) (*SignedURLResult, *services.APIError) {
	fields := logger.Fields{"materialId": materialID, "userId": user.ID}

	var found []courseModels.Material
	escalated, err := database.Escalate(ctx, s.sessions.AsUser(user.ID), s.sessions, func(tx *gorm.DB) error {
		found = found[:0]
		return tx.Joins("JOIN lessons ON lessons.id = materials.lesson_id").
			Where("materials.id = ?", materialID).Limit(1).Find(&found).Error
	})
	if escalated {
		s.log.Warn("Fell back to the service role to read a material", fields)
	}
	if err != nil {
		s.log.Error("Failed to look up material for signed url", fields, err)
		return nil, services.NewAPIError(fiber.StatusInternalServerError, "material_lookup_failed", "").WithCause(err)
	}
	if len(found) == 0 {
		return nil, services.NewAPIError(fiber.StatusNotFound, "material_not_found", "")
	}
	material := found[0]

	if material.Kind() != courseModels.SourceUpload {
		if material.ResourceURL == nil || strings.TrimSpace(*material.ResourceURL) == "" {
			return nil, services.NewAPIError(fiber.StatusBadRequest, "material_url_missing", "")
		}
		return &SignedURLResult{URL: *material.ResourceURL, SourceKind: courseModels.SourceLink}, nil
	}

	if material.StorageBucket == nil || *material.StorageBucket == "" || material.StoragePath == nil || *material.StoragePath == "" {
		return nil, services.NewAPIError(fiber.StatusBadRequest, "storage_metadata_missing", "")
	}

	var downloadName string
	if download {
		downloadName = path.Base(*material.StoragePath)
		if material.OriginalFileName != nil && strings.TrimSpace(*material.OriginalFileName) != "" {
			downloadName = strings.TrimSpace(*material.OriginalFileName)
		}
	}
	url, err := s.signer.SignURL(*material.StorageBucket, *material.StoragePath, storage.SignedURLTTL, downloadName)
	if err != nil {
		s.log.Error("Failed to sign material url", fields, err)
		return nil, services.NewAPIError(fiber.StatusInternalServerError, "signed_url_failed", "").WithCause(err)
	}
	return &SignedURLResult{URL: url, SourceKind: courseModels.SourceUpload}, nil
}

// ReconcilePendingUploads removes staged files that no lesson claimed within
// ttl, both the object and its row. It returns how many were removed.
func (s *Service) ReconcilePendingUploads(ctx context.Context, ttl time.Duration) (int, error) {
	svc, err := s.sessions.Service()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-ttl)
	var expired []models.PendingUpload
	if err := svc.Run(ctx, func(tx *gorm.DB) error {
		return tx.Where("created_at < ?", cutoff).Order("created_at ASC").Find(&expired).Error
	}); err != nil {
		return 0, errors.Wrap(err, "listing pending uploads")
	}

	removed := 0
	for _, pending := range expired {
		err := s.store.Remove(ctx, pending.Bucket, pending.Path)
		if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Warn("Failed to remove expired upload", logger.Fields{"path": pending.Path}, err)
			continue
		}
		if err := svc.Run(ctx, func(tx *gorm.DB) error {
			return tx.Delete(&models.PendingUpload{}, "id = ?", pending.ID).Error
		}); err != nil {
			s.log.Warn("Failed to delete pending upload row", logger.Fields{"path": pending.Path}, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("Expired uploads removed", logger.Fields{"count": removed})
	}
	return removed, nil
}

// Remove deletes a stored file.
func (s *Service) Remove(ctx context.Context, meta *Metadata) error {
	return s.store.Remove(ctx, meta.Bucket, meta.Path)
}
