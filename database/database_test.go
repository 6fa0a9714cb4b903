package database_test

import (
	"context"
	"net"
	"testing"

	"campus/database"
	"campus/database/dbtest"
	courseModels "campus/models/course"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect database.Dialect
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/campus", database.Postgres, false},
		{"host=localhost user=u dbname=campus", database.Postgres, false},
		{"file:campus.db?_busy_timeout=5000", database.SQLite, false},
		{"sqlite:./campus.db", database.SQLite, false},
		{"mysql://nope", "", true},
	}
	for _, tt := range tests {
		d, _, err := database.DialectFor(tt.dsn)
		if tt.wantErr {
			assert.Error(t, err, tt.dsn)
			continue
		}
		require.NoError(t, err, tt.dsn)
		assert.Equal(t, tt.dialect, d, tt.dsn)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want database.ErrorKind
	}{
		{"pg insufficient privilege", &pgconn.PgError{Code: "42501"}, database.KindPermissionDenied},
		{"rls message", errors.New("new row violates row-level security policy for table \"lessons\""), database.KindPermissionDenied},
		{"permission denied message", errors.New("permission denied for table courses"), database.KindPermissionDenied},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, database.KindDuplicate},
		{"gorm duplicated key", errors.Wrap(gorm.ErrDuplicatedKey, "insert"), database.KindDuplicate},
		{"sqlite unique", errors.New("UNIQUE constraint failed: courses.slug"), database.KindDuplicate},
		{"not found", gorm.ErrRecordNotFound, database.KindNotFound},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, database.KindNetwork},
		{"network message", errors.New("dial tcp: connection refused"), database.KindNetwork},
		{"other", errors.New("syntax error"), database.KindUnknown},
		{"nil", nil, database.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, database.Classify(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "42501", database.ErrorCode(errors.Wrap(dbtest.PermissionDenied(), "upsert")))
	assert.Equal(t, "", database.ErrorCode(errors.New("plain")))
}

func insertCourse(tx *gorm.DB) error {
	return tx.Create(&courseModels.Course{Slug: "gestao-incidentes", Title: "Gestão de Incidentes"}).Error
}

func countCourses(t *testing.T, c *database.Client) int64 {
	var n int64
	require.NoError(t, c.DB().Model(&courseModels.Course{}).Count(&n).Error)
	return n
}

func TestEscalateUsesPrimaryWhenAllowed(t *testing.T) {
	client := dbtest.New(t)
	sessions := &dbtest.Sessions{Client: client}

	escalated, err := database.Escalate(context.Background(), client.Anon(), sessions, insertCourse)

	require.NoError(t, err)
	assert.False(t, escalated)
	assert.Equal(t, 0, sessions.ServiceCalls)
	assert.Equal(t, int64(1), countCourses(t, client))
}

func TestEscalateRetriesOnceOnPermissionDenied(t *testing.T) {
	client := dbtest.New(t)
	denied := &dbtest.DeniedSession{}
	sessions := &dbtest.Sessions{Client: client}

	escalated, err := database.Escalate(context.Background(), denied, sessions, insertCourse)

	require.NoError(t, err)
	assert.True(t, escalated)
	assert.Equal(t, 1, denied.Calls)
	assert.Equal(t, 1, sessions.ServiceCalls)
	assert.Equal(t, int64(1), countCourses(t, client))
}

func TestEscalateDoesNotRetryOtherErrors(t *testing.T) {
	client := dbtest.New(t)
	sessions := &dbtest.Sessions{Client: client}
	boom := errors.New("syntax error")

	escalated, err := database.Escalate(context.Background(), client.Anon(), sessions, func(tx *gorm.DB) error {
		return boom
	})

	assert.Equal(t, boom, err)
	assert.False(t, escalated)
	assert.Equal(t, 0, sessions.ServiceCalls)
}

func TestEscalateFailsWhenRetryFails(t *testing.T) {
	client := dbtest.New(t)
	sessions := &dbtest.Sessions{Client: client}
	calls := 0

	escalated, err := database.Escalate(context.Background(), &dbtest.DeniedSession{}, sessions, func(tx *gorm.DB) error {
		calls++
		return dbtest.PermissionDenied()
	})

	require.Error(t, err)
	assert.True(t, escalated)
	assert.Equal(t, 1, calls, "only the elevated attempt reaches fn")
	assert.Equal(t, 1, sessions.ServiceCalls)
}

func TestEscalateWithoutServiceRole(t *testing.T) {
	client := dbtest.New(t)
	sessions := &dbtest.Sessions{Client: client, DisableService: true}

	_, err := database.Escalate(context.Background(), &dbtest.DeniedSession{}, sessions, insertCourse)

	require.Error(t, err)
	assert.True(t, errors.Is(err, database.ErrServiceRoleUnavailable))
	assert.Equal(t, int64(0), countCourses(t, client))
}

func TestServiceSessionDisabled(t *testing.T) {
	client := database.NewClient(nil, database.SQLite, false)
	_, err := client.Service()
	assert.Equal(t, database.ErrServiceRoleUnavailable, err)
}
