package database

import (
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPermissionDenied
	KindDuplicate
	KindNetwork
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindDuplicate:
		return "duplicate"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

const (
	codeInsufficientPrivilege = "42501"
	codeUniqueViolation       = "23505"
)

var networkMarkers = []string{
	"connection refused",
	"connection reset",
	"fetch failed",
	"i/o timeout",
	"broken pipe",
	"bad connection",
	"no such host",
}

// Classify maps a backend error onto the taxonomy used for user-facing
// messages. Driver codes win over message matching.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeInsufficientPrivilege:
			return KindPermissionDenied
		case codeUniqueViolation:
			return KindDuplicate
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindDuplicate
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "row-level security"):
		return KindPermissionDenied
	case strings.Contains(msg, "duplicate"), strings.Contains(msg, "unique constraint"):
		return KindDuplicate
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			return KindNetwork
		}
	}
	return KindUnknown
}

func IsPermissionDenied(err error) bool {
	return Classify(err) == KindPermissionDenied
}

// ErrorCode returns the Postgres SQLSTATE behind err, if any.
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
