package storageController

import (
	"net/url"
	"path"
	"strings"

	"campus/logger"
	"campus/middleware"
	"campus/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// Controller serves stored objects behind signed URLs.
type Controller struct {
	store  storage.ObjectStore
	signer *storage.Signer
	log    *logger.Logger
}

func New(store storage.ObjectStore, signer *storage.Signer, log *logger.Logger) *Controller {
	return &Controller{store: store, signer: signer, log: log.With("storage")}
}

// inlineTypes lists the extensions a browser may render in place.
var inlineTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ServeSigned streams the object named in the path when the token query
// parameter grants it. Downloads carry the granted file name.
func (ctl *Controller) ServeSigned(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	objectPath, err := url.PathUnescape(c.Params("*"))
	if err != nil || objectPath == "" {
		return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_path", "")
	}

	grant, err := ctl.signer.Verify(c.Query("token"), bucket, objectPath)
	if err != nil {
		return middleware.JsonError(c, fiber.StatusForbidden, "invalid_signature", "")
	}

	f, err := ctl.store.Open(c.UserContext(), grant.Bucket, grant.Path)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return middleware.JsonError(c, fiber.StatusNotFound, "object_not_found", "")
	case errors.Is(err, storage.ErrInvalidKey):
		return middleware.JsonError(c, fiber.StatusBadRequest, "invalid_path", "")
	case err != nil:
		ctl.log.Error("Failed to open stored object", logger.Fields{"bucket": bucket, "path": objectPath}, err)
		return middleware.JsonError(c, fiber.StatusInternalServerError, "storage_unavailable", "")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		ctl.log.Error("Failed to stat stored object", logger.Fields{"bucket": bucket, "path": objectPath}, err)
		return middleware.JsonError(c, fiber.StatusInternalServerError, "storage_unavailable", "")
	}

	// The content type follows the stored extension. Only files whose bytes
	// match an inline type are rendered in place.
	ext := strings.ToLower(path.Ext(grant.Path))
	inline := false
	if want, ok := inlineTypes[ext]; ok && grant.Download == "" {
		detected, err := mimetype.DetectFile(f.Name())
		inline = err == nil && detected.Is(want)
	}
	switch {
	case inline:
		c.Set(fiber.HeaderContentDisposition, "inline")
	case grant.Download != "":
		c.Attachment(grant.Download)
	default:
		c.Attachment(path.Base(grant.Path))
	}
	if ext != "" {
		c.Type(ext)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")

	// the body stream closes f once it is sent
	return c.SendStream(f, int(info.Size()))
}
