package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrServiceRoleUnavailable is returned when an elevated session is requested
// but the service role has been disabled by configuration.
var ErrServiceRoleUnavailable = errors.New("service role unavailable")

// Session is a database handle bound to a security context. Queries issued
// through Run are subject to the row-level policies of that context.
type Session interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
	Elevated() bool
}

// Sessions hands out sessions for the three contexts the application uses.
type Sessions interface {
	AsUser(userID uuid.UUID) Session
	Anon() Session
	Service() (Session, error)
}

// Client owns the connection pool. It is built once at startup and passed
// explicitly to everything that needs the database.
type Client struct {
	db          *gorm.DB
	dialect     Dialect
	serviceRole bool
}

var _ Sessions = (*Client)(nil)

func NewClient(db *gorm.DB, dialect Dialect, serviceRole bool) *Client {
	return &Client{db: db, dialect: dialect, serviceRole: serviceRole}
}

// DB exposes the raw handle for components that own their tables outright
// (credentials, migrations).
func (c *Client) DB() *gorm.DB {
	return c.db
}

func (c *Client) Dialect() Dialect {
	return c.dialect
}

func (c *Client) AsUser(userID uuid.UUID) Session {
	return &scopedSession{client: c, role: AuthenticatedRole, userID: userID.String()}
}

func (c *Client) Anon() Session {
	return &scopedSession{client: c, role: AnonRole}
}

func (c *Client) Service() (Session, error) {
	if !c.serviceRole {
		return nil, ErrServiceRoleUnavailable
	}
	return serviceSession{db: c.db}, nil
}

type scopedSession struct {
	client *Client
	role   string
	userID string
}

func (s *scopedSession) Elevated() bool { return false }

func (s *scopedSession) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.client.db.WithContext(ctx)
	if s.client.dialect != Postgres {
		return fn(db)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET LOCAL ROLE " + s.role).Error; err != nil {
			return err
		}
		if err := tx.Exec("SELECT set_config('app.user_id', ?, true)", s.userID).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

type serviceSession struct {
	db *gorm.DB
}

func (s serviceSession) Elevated() bool { return true }

func (s serviceSession) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(s.db.WithContext(ctx))
}

// Escalate runs fn under primary and, only if the backend rejects it with a
// permission error, retries it exactly once under the service session. The
// boolean reports whether the elevated retry was used. A failed retry is
// returned as is and never retried again.
func Escalate(ctx context.Context, primary Session, sessions Sessions, fn func(tx *gorm.DB) error) (bool, error) {
	err := primary.Run(ctx, fn)
	if err == nil || primary.Elevated() || !IsPermissionDenied(err) {
		return false, err
	}

	svc, svcErr := sessions.Service()
	if svcErr != nil {
		return false, errors.Wrapf(svcErr, "escalating after %v", err)
	}
	if err := svc.Run(ctx, fn); err != nil {
		return true, err
	}
	return true, nil
}
