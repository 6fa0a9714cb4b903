package auth

import (
	"context"

	"campus/database"
	"campus/logger"
	"campus/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decision is the outcome of a role check.
type Decision int

const (
	Unauthenticated Decision = iota
	Unauthorized
	Authorized
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	}
	return "unauthenticated"
}

// Guard resolves roles and answers "may this caller act as role X".
type Guard struct {
	sessions database.Sessions
	log      *logger.Logger
}

func NewGuard(sessions database.Sessions, log *logger.Logger) *Guard {
	return &Guard{sessions: sessions, log: log.With("auth")}
}

// ResolveRole returns the user's role. A missing profile or a failed lookup
// yields the default student role; lookup errors are logged, never returned.
func (g *Guard) ResolveRole(ctx context.Context, userID uuid.UUID) models.Role {
	var profile models.Profile
	err := g.sessions.AsUser(userID).Run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", userID).Limit(1).Find(&profile).Error
	})
	if err != nil {
		g.log.Error("Failed to load user role", logger.Fields{"userId": userID}, err)
		return models.DefaultRole
	}
	if profile.ID == uuid.Nil || !profile.Role.Valid() {
		return models.DefaultRole
	}
	return profile.Role
}

// RequireRole checks the caller against want. Admins satisfy every role.
func (g *Guard) RequireRole(ctx context.Context, user *SessionUser, want models.Role) Decision {
	if user == nil || user.ID == uuid.Nil {
		return Unauthenticated
	}
	role := g.ResolveRole(ctx, user.ID)
	if role == want || role == models.RoleAdmin {
		return Authorized
	}
	g.log.Warn("Role check denied", logger.Fields{"userId": user.ID, "role": role, "required": want})
	return Unauthorized
}
