package apiController

import (
	"campus/middleware"
	"campus/services"
	"campus/services/materials"
	"campus/services/progress"
	apiValidator "campus/validators/api"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Controller serves the JSON endpoints used by the lesson and admin pages.
type Controller struct {
	progress *progress.Service
	files    *materials.Service
}

func New(progressService *progress.Service, files *materials.Service) *Controller {
	return &Controller{progress: progressService, files: files}
}

func apiError(c *fiber.Ctx, err *services.APIError) error {
	return middleware.JsonError(c, err.Status, err.Code, err.Message)
}

// CompleteLesson marks the lesson in the body as completed for the caller.
func (ctl *Controller) CompleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uuid.UUID)
	if err := ctl.progress.CompleteLesson(c.UserContext(), middleware.CurrentUser(c), lessonID); err != nil {
		return apiError(c, err)
	}
	return middleware.JsonOK(c, nil)
}

// SignedURL answers the URL to open a material with.
func (ctl *Controller) SignedURL(c *fiber.Ctx) error {
	reqData := c.Locals("signedURLRequest").(*apiValidator.SignedURLRequest)
	res, err := ctl.files.SignedURL(c.UserContext(), middleware.CurrentUser(c), reqData.MaterialID, reqData.Download)
	if err != nil {
		return apiError(c, err)
	}
	return middleware.JsonOK(c, fiber.Map{"url": res.URL, "sourceKind": res.SourceKind})
}

// UploadMaterial stores a material file and answers its metadata, which the
// lesson form sends back when the lesson is created.
func (ctl *Controller) UploadMaterial(c *fiber.Ctx) error {
	form := c.Locals("uploadForm").(*apiValidator.UploadForm)
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonError(c, fiber.StatusBadRequest, "file_required", "")
	}

	meta, apiErr := ctl.files.Upload(c.UserContext(), middleware.CurrentUser(c), materials.UploadRequest{
		LessonID: form.LessonID,
		ModuleID: form.ModuleID,
		File:     file,
	})
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return middleware.JsonOK(c, fiber.Map{"metadata": meta})
}
