package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"svarozhits/internal/logger"
)

// TraceIDHeader carries the per-request trace id in both directions.
const TraceIDHeader = "X-Trace-ID"

type traceIDKey struct{}

// TraceID assigns every request a trace id, reusing a well-formed incoming
// X-Trace-ID. The id is echoed in the response header and attached to a
// request-scoped logger derived from base.
func TraceID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), traceIDKey{}, traceID)
			ctx = logger.WithContext(ctx, base.With(slog.String("trace_id", traceID)))
			w.Header().Set(TraceIDHeader, traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTraceID returns the trace id of the request context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}
