package healthController

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	started time.Time
	version string
}

func New(version string) *Controller {
	return &Controller{started: time.Now(), version: version}
}

// Health always answers 200 with the process uptime in seconds.
func (ctl *Controller) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"uptime":    time.Since(ctl.started).Seconds(),
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"version":   ctl.version,
	})
}
