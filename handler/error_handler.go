package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/credkit/pkg/logger"
)

// ErrorClassifier maps an error to the HTTPError sent to the client.
type ErrorClassifier func(err error) HTTPError

// NewErrorHandler returns an ErrorHandler that logs err and writes a JSON
// error body. A nil classify uses AsHTTPError. Client errors are logged at
// warn level, server errors at error level.
func NewErrorHandler(log *slog.Logger, classify ErrorClassifier) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	if classify == nil {
		classify = AsHTTPError
	}

	return func(ctx Context, err error) {
		e := classify(err)
		r := ctx.Request()

		level := slog.LevelError
		if e.Status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(ctx, level, "request error",
			logger.Error(err),
			slog.Int("status_code", e.Status),
			slog.String("code", e.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("handler"),
		)

		if renderErr := JSONError(e).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(ctx, "failed to render error response",
				logger.Error(renderErr),
				logger.Component("handler"),
			)
		}
	}
}
