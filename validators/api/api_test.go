package apiValidator_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apiValidator "campus/validators/api"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLessonProgressPayload(t *testing.T) {
	app := fiber.New()
	app.Post("/", apiValidator.LessonProgressPayload(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"lessonId": c.Locals("lessonID").(uuid.UUID).String()})
	})

	status, body := call(t, app, jsonRequest("/", `{`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_payload", body["error"])

	status, body = call(t, app, jsonRequest("/", `{"lessonId":"  "}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "lesson_id_required", body["error"])

	status, body = call(t, app, jsonRequest("/", `{"lessonId":"nao-e-uuid"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_lesson_id", body["error"])

	id := uuid.New()
	status, body = call(t, app, jsonRequest("/", `{"lessonId":"`+id.String()+`"}`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id.String(), body["lessonId"])
}

func TestSignedURLPayload(t *testing.T) {
	app := fiber.New()
	app.Post("/", apiValidator.SignedURLPayload(), func(c *fiber.Ctx) error {
		req := c.Locals("signedURLRequest").(*apiValidator.SignedURLRequest)
		return c.JSON(fiber.Map{"materialId": req.MaterialID.String(), "download": req.Download})
	})

	status, body := call(t, app, jsonRequest("/", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "material_id_required", body["error"])

	status, body = call(t, app, jsonRequest("/", `{"materialId":"42"}`))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "material_not_found", body["error"])

	id := uuid.New()
	status, body = call(t, app, jsonRequest("/", `{"materialId":"`+id.String()+`","mode":"download"}`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["download"])

	status, body = call(t, app, jsonRequest("/", `{"materialId":"`+id.String()+`","mode":"preview"}`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["download"], "unknown modes mean view")
}

func uploadRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		part, err := w.CreateFormFile("file", "apostila.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestMaterialUpload(t *testing.T) {
	app := fiber.New()
	app.Post("/", apiValidator.MaterialUpload(), func(c *fiber.Ctx) error {
		form := c.Locals("uploadForm").(*apiValidator.UploadForm)
		return c.JSON(fiber.Map{"lessonId": form.LessonID.String(), "moduleId": form.ModuleID})
	})

	status, body := call(t, app, uploadRequest(t, map[string]string{}, true))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "lesson_id_required", body["error"])

	status, body = call(t, app, uploadRequest(t, map[string]string{"lessonId": "x"}, true))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_lesson_id", body["error"])

	lessonID := uuid.New().String()
	status, body = call(t, app, uploadRequest(t, map[string]string{"lessonId": lessonID}, false))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "file_required", body["error"])

	status, body = call(t, app, uploadRequest(t, map[string]string{"lessonId": lessonID, "moduleId": " m-1 "}, true))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, lessonID, body["lessonId"])
	assert.Equal(t, "m-1", body["moduleId"])
}
