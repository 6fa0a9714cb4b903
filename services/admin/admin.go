// Package admin implements the content management actions: courses, modules
// and lessons with their attachments. Every action validates the form, checks
// the caller's role on the server, writes under the caller's session and
// revalidates the pages that show the changed content.
package admin

import (
	"context"

	"campus/auth"
	"campus/database"
	"campus/logger"
	"campus/services/catalog"
	"campus/services/materials"
)

// Revalidator drops cached renderings of the given paths.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

const invalidFormMessage = "Revise os dados informados."

type Service struct {
	sessions    database.Sessions
	guard       *auth.Guard
	catalog     *catalog.Catalog
	files       *materials.Service
	revalidator Revalidator
	log         *logger.Logger

	// errorDetails appends backend error text to failure messages.
	errorDetails bool
}

func NewService(sessions database.Sessions, guard *auth.Guard, cat *catalog.Catalog, files *materials.Service, revalidator Revalidator, log *logger.Logger) *Service {
	return &Service{
		sessions:    sessions,
		guard:       guard,
		catalog:     cat,
		files:       files,
		revalidator: revalidator,
		log:         log.With("admin"),
	}
}

// WithErrorDetails turns on backend error details in failure messages. Meant
// for development only.
func (s *Service) WithErrorDetails(on bool) *Service {
	s.errorDetails = on
	return s
}

func (s *Service) details(err error) string {
	if !s.errorDetails || err == nil {
		return ""
	}
	return " Detalhes: " + err.Error()
}

func (s *Service) revalidate(ctx context.Context, paths ...string) {
	if s.revalidator != nil {
		s.revalidator.Revalidate(ctx, paths...)
	}
}

func coursePath(slug string) string {
	return "/curso/" + slug
}
