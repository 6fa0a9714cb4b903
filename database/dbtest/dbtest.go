// Package dbtest provides isolated SQLite databases and session fakes for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"campus/database"
	"campus/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// New returns a migrated client backed by a private in-memory database.
func New(t *testing.T) *database.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, dialect, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	registerWriteGuard(t, db)
	client := database.NewClient(db, dialect, true)
	if err := database.Migrate(client, logger.Discard()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// PermissionDenied is what Postgres returns when a row-level policy rejects a write.
func PermissionDenied() error {
	return &pgconn.PgError{Code: "42501", Message: "new row violates row-level security policy"}
}

// DeniedSession fails every Run with a permission error.
type DeniedSession struct {
	mu    sync.Mutex
	Calls int
}

func (s *DeniedSession) Elevated() bool { return false }

func (s *DeniedSession) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	s.Calls++
	s.mu.Unlock()
	return PermissionDenied()
}

// Sessions wraps a real client and lets tests swap the user session or
// disable the service role.
type Sessions struct {
	*database.Client
	UserSession    database.Session
	ServiceCalls   int
	DisableService bool
	mu             sync.Mutex
}

func (s *Sessions) AsUser(userID uuid.UUID) database.Session {
	if s.UserSession != nil {
		return s.UserSession
	}
	return s.Client.AsUser(userID)
}

func (s *Sessions) Service() (database.Session, error) {
	s.mu.Lock()
	s.ServiceCalls++
	s.mu.Unlock()
	if s.DisableService {
		return nil, database.ErrServiceRoleUnavailable
	}
	return s.Client.Service()
}

const denyWritesKey = "dbtest:deny_writes"

// registerWriteGuard makes writes fail on statements carrying denyWritesKey,
// with PermissionDenied or the error stored under the key.
func registerWriteGuard(t *testing.T, db *gorm.DB) {
	t.Helper()
	guard := func(tx *gorm.DB) {
		deny, ok := tx.Get(denyWritesKey)
		if !ok {
			return
		}
		switch v := deny.(type) {
		case error:
			_ = tx.AddError(v)
		case bool:
			if v {
				_ = tx.AddError(PermissionDenied())
			}
		}
	}
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("dbtest:deny_create", guard),
		cb.Update().Before("gorm:update").Register("dbtest:deny_update", guard),
		cb.Delete().Before("gorm:delete").Register("dbtest:deny_delete", guard),
	} {
		if err != nil {
			t.Fatalf("registering write guard: %v", err)
		}
	}
}

// WriteDeniedSession reads through Session but rejects every write the way a
// row-level policy would.
type WriteDeniedSession struct {
	database.Session
}

func (s *WriteDeniedSession) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.Session.Run(ctx, func(tx *gorm.DB) error {
		return fn(tx.Set(denyWritesKey, true))
	})
}

// WriteFailingSession reads through Session and fails every write with Err.
type WriteFailingSession struct {
	database.Session
	Err error
}

func (s *WriteFailingSession) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.Session.Run(ctx, func(tx *gorm.DB) error {
		return fn(tx.Set(denyWritesKey, s.Err))
	})
}
