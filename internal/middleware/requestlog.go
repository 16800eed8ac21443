package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"svarozhits/internal/logger"
)

// RequestLogger records method, path, status, size and latency of every
// request. Panics recovered further down the chain by chi's Recoverer are
// reported through the same entry.
func RequestLogger() func(http.Handler) http.Handler {
	return chimiddleware.RequestLogger(requestLogFormatter{})
}

type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	l := logger.FromContext(r.Context()).With(
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
	return &requestLogEntry{logger: l}
}

type requestLogEntry struct {
	logger *slog.Logger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	e.logger.LogAttrs(context.Background(), level, "request completed",
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("latency", elapsed),
	)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("handler panicked",
		slog.String("panic", fmt.Sprint(v)),
		slog.String("stack", string(stack)),
	)
}
