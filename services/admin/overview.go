package admin

import (
	"context"
	"time"

	"campus/auth"
	"campus/models"
	"campus/services/catalog"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Overview is what the admin page shows.
type Overview struct {
	Courses    []catalog.AdminCourse
	Modules    []catalog.ModuleOption
	LeadsToday int64
	LeadsTotal int64
}

// Overview gathers the admin page data. Leads are only readable with the
// service role; without it the counters stay at zero.
func (s *Service) Overview(ctx context.Context, user *auth.SessionUser) *Overview {
	sess := s.sessions.AsUser(user.ID)
	today, total := s.countLeads(ctx, now.BeginningOfDay())
	return &Overview{
		Courses:    s.catalog.ListCoursesForAdmin(ctx, sess),
		Modules:    s.catalog.ListModulesForLessonForm(ctx, sess),
		LeadsToday: today,
		LeadsTotal: total,
	}
}

func (s *Service) countLeads(ctx context.Context, since time.Time) (today, total int64) {
	svc, err := s.sessions.Service()
	if err != nil {
		s.log.Warn("Lead counters need the service role", err)
		return 0, 0
	}
	err = svc.Run(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.InstitutionalLead{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Model(&models.InstitutionalLead{}).Where("created_at >= ?", since).Count(&today).Error
	})
	if err != nil {
		s.log.Error("Failed to count institutional leads", err)
		return 0, 0
	}
	return today, total
}
