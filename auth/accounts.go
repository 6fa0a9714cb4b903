package auth

import (
	"context"
	"strings"
	"time"

	"campus/logger"
	"campus/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Accounts owns the credential store. It works on the raw handle because
// sign-in happens before any user context exists.
type Accounts struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccounts(db *gorm.DB, log *logger.Logger) *Accounts {
	return &Accounts{db: db, log: log.With("auth")}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks the email/password pair and records the login time.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading user")
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := a.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		a.log.Warn("Failed to record last login", logger.Fields{"userId": user.ID}, err)
	}
	user.LastLogin = &now
	return &user, nil
}

// CreateUser registers an account together with its profile.
func (a *Accounts) CreateUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, errors.Errorf("invalid role %q", role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}

	user := models.User{Email: normalizeEmail(email), PasswordHash: hash}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{ID: user.ID, Role: role}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) || (err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, errors.Wrap(err, "creating user")
	}
	return &user, nil
}

// EnsureAdmin makes sure the bootstrap admin exists and holds the admin role.
// An existing account keeps its password.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password string) error {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := a.CreateUser(ctx, email, password, models.RoleAdmin); err != nil {
			return err
		}
		a.log.Info("Bootstrap admin created", logger.Fields{"email": normalizeEmail(email)})
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "loading bootstrap admin")
	}
	return a.SetRole(ctx, user.ID, models.RoleAdmin)
}

// SetRole upserts the profile row for userID.
func (a *Accounts) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	if !role.Valid() {
		return errors.Errorf("invalid role %q", role)
	}
	profile := models.Profile{ID: userID}
	return a.db.WithContext(ctx).
		Where(models.Profile{ID: userID}).
		Assign(models.Profile{Role: role}).
		FirstOrCreate(&profile).Error
}
