package database

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgForeignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err was raised by a foreign key
// constraint on either supported dialect.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// pgAttrs extracts postgres diagnostics for logging. Empty for other dialects.
func pgAttrs(err error) []any {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	return []any{
		slog.String("pg_code", pgErr.Code),
		slog.String("pg_table", pgErr.TableName),
		slog.String("pg_constraint", pgErr.ConstraintName),
		slog.String("pg_detail", pgErr.Detail),
	}
}
