// Package service is the business layer between the HTTP handlers and the
// repositories.
//
//	Handler (HTTP) → Service → Repository → SQLite
//
// Services take repository interfaces, not *sqlite.DB, so tests inject
// in-memory fakes. They add no validation of their own: the store's
// constraints are the only rules, and their errors pass through wrapped.
// What the services do add is a log line per business event and a
// "service/<entity>" prefix on every error.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/snippet-api/internal/apperror"
)

// logFailure logs a failed operation. Domain errors (not found, conflict,
// bad input) are normal outcomes and go to debug; anything else is a store
// failure worth an error line.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		level = slog.LevelDebug
	}

	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))

	logger.Log(ctx, level, msg, args...)
}
