package apiValidator

import (
	"strings"

	"campus/middleware"
	"campus/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LessonProgressPayload validates {lessonId} for the completion endpoint and
// stores the parsed id under "lessonID".
func LessonProgressPayload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			LessonID string `json:"lessonId"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_payload", "")
		}

		lessonID := strings.TrimSpace(reqData.LessonID)
		if lessonID == "" {
			return middleware.JsonError(c, fiber.StatusBadRequest, "lesson_id_required", "")
		}
		id, err := uuid.Parse(lessonID)
		if err != nil || !validators.IsUUID(strings.ToLower(lessonID)) {
			return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_lesson_id", "")
		}

		c.Locals("lessonID", id)
		return c.Next()
	}
}

type SignedURLRequest struct {
	MaterialID uuid.UUID
	Download   bool
}

// SignedURLPayload validates {materialId, mode} and stores a SignedURLRequest
// under "signedURLRequest". Any mode other than "download" means view.
func SignedURLPayload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			MaterialID string `json:"materialId"`
			Mode       string `json:"mode"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_payload", "")
		}

		materialID := strings.TrimSpace(reqData.MaterialID)
		if materialID == "" {
			return middleware.JsonError(c, fiber.StatusBadRequest, "material_id_required", "")
		}
		id, err := uuid.Parse(materialID)
		if err != nil {
			return middleware.JsonError(c, fiber.StatusNotFound, "material_not_found", "")
		}

		c.Locals("signedURLRequest", &SignedURLRequest{MaterialID: id, Download: reqData.Mode == "download"})
		return c.Next()
	}
}

// UploadForm validates the multipart upload request: lessonId is required,
// moduleId only matters when the lesson does not exist yet.
type UploadForm struct {
	LessonID uuid.UUID
	ModuleID string
}

func MaterialUpload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID := strings.TrimSpace(c.FormValue("lessonId"))
		if lessonID == "" {
			return middleware.JsonError(c, fiber.StatusBadRequest, "lesson_id_required", "")
		}
		id, err := uuid.Parse(lessonID)
		if err != nil || !validators.IsUUID(strings.ToLower(lessonID)) {
			return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_lesson_id", "")
		}

		if _, err := c.FormFile("file"); err != nil {
			return middleware.JsonError(c, fiber.StatusBadRequest, "file_required", "")
		}

		form := &UploadForm{LessonID: id, ModuleID: strings.TrimSpace(c.FormValue("moduleId"))}
		c.Locals("uploadForm", form)
		return c.Next()
	}
}
