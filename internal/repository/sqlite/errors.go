package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/snippet-api/internal/apperror"
)

// operation names the statement kind so foreign-key failures can say which
// side of the reference was wrong.
type operation int

const (
	opWrite operation = iota
	opDelete
)

// classify turns SQLite constraint failures into domain errors.
//
//	UNIQUE, PRIMARY KEY, FOREIGN KEY → apperror.ErrConflict
//	NOT NULL, CHECK                  → apperror.ErrValidation
//
// Anything else is wrapped as-is so the caller still sees the driver error.
// The raw SQLite message is kept out of the AppError text; only the column
// name is lifted from it.
func classify(err error, resource string, op operation, action string) error {
	var se *sqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("sqlite: %s %s: %w", action, resource, err)
	}

	column := constraintColumn(se.Error())

	switch constraintKind(se) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		if column == "" {
			return apperror.ConstraintViolation(resource, "duplicate value")
		}
		return apperror.ConstraintViolation(resource, column+" already exists")
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if op == opDelete {
			return apperror.ConstraintViolation(resource, "row is still referenced")
		}
		return apperror.ConstraintViolation(resource, "referenced row does not exist")
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperror.ValidationFailed(column, fmt.Sprintf("%s: %s is required", resource, orField(column)))
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return apperror.ValidationFailed(column, fmt.Sprintf("%s: check constraint failed", resource))
	default:
		return apperror.ConstraintViolation(resource, "constraint failed")
	}
}

// constraintKind returns the extended result code. If the connection only
// reported the primary SQLITE_CONSTRAINT code, the kind is recovered from the
// message text instead.
func constraintKind(se *sqlite.Error) int {
	if se.Code() != sqlite3.SQLITE_CONSTRAINT {
		return se.Code()
	}
	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_UNIQUE
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_NOTNULL
	case strings.Contains(msg, "CHECK constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_CHECK
	}
	return se.Code()
}

// constraintColumn pulls "username" out of messages such as
// "UNIQUE constraint failed: users.username (2067)". Composite keys yield
// only the first column.
func constraintColumn(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexAny(rest, " ,("); j >= 0 {
		rest = rest[:j]
	}
	if k := strings.LastIndexByte(rest, '.'); k >= 0 {
		rest = rest[k+1:]
	}
	return rest
}

func orField(column string) string {
	if column == "" {
		return "a field"
	}
	return column
}
