package storage

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no rows. It is a normal
// outcome; callers substitute defaults.
var ErrNotFound = errors.New("not found")

// SQLSTATE codes for schema drift.
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsDegradable reports whether err means the store is unreachable,
// misconfigured or missing schema, or the driver returned an empty error.
// Read paths with a reasonable default substitute it for these errors.
func IsDegradable(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	if isEmptyError(err) || IsUnavailable(err) || IsSchemaError(err) {
		return true
	}
	return false
}

// IsUnavailable reports connectivity and configuration failures.
func IsUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsSchemaError reports a missing table or column.
func IsSchemaError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeUndefinedTable || pgErr.Code == codeUndefinedColumn
}

// isEmptyError catches errors whose message carries nothing, at any depth of
// the wrap chain.
func isEmptyError(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := strings.TrimSpace(e.Error())
		if msg == "" || msg == "{}" {
			return true
		}
	}
	return false
}
