// Package leads captures the institutional sales form.
package leads

import (
	"context"

	"campus/database"
	"campus/logger"
	"campus/models"
	"campus/services"
	marketingValidator "campus/validators/marketing"

	"gorm.io/gorm"
)

// Notifier tells the sales team about a new lead.
type Notifier interface {
	NotifyLead(ctx context.Context, lead models.InstitutionalLead)
}

type Service struct {
	notifier Notifier
	log      *logger.Logger
}

func NewService(notifier Notifier, log *logger.Logger) *Service {
	return &Service{notifier: notifier, log: log.With("leads")}
}

// Submit validates and stores a lead under the visitor's session.
func (s *Service) Submit(ctx context.Context, sess database.Session, form marketingValidator.LeadForm) services.ActionResult {
	input, errs := marketingValidator.CheckLead(form)
	if errs != nil {
		return services.Invalid("Revise os dados informados antes de enviar.", errs)
	}

	lead := models.InstitutionalLead{
		Organization: input.Organization,
		ContactName:  input.ContactName,
		Email:        input.Email,
		Phone:        input.Phone,
		Headcount:    input.Headcount,
		Message:      input.Message,
	}
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&lead).Error
	})
	if err != nil {
		s.log.Error("Failed to store institutional lead", logger.Fields{"code": database.ErrorCode(err), "organization": input.Organization}, err)
		return services.Failed("Não foi possível enviar suas informações. Tente novamente.")
	}

	s.log.Info("Institutional lead stored", logger.Fields{"organization": lead.Organization, "email": lead.Email})
	if s.notifier != nil {
		s.notifier.NotifyLead(ctx, lead)
	}
	return services.Succeeded("Recebemos suas informações! Em até 24h úteis entraremos em contato.")
}
