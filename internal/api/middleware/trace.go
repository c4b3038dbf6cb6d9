package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
)

// TraceIDHeader carries the trace ID on requests and responses.
const TraceIDHeader = "X-Trace-ID"

// Trace returns middleware that assigns a trace ID to every request and
// stores a request-scoped logger carrying it in the context. A well-formed
// X-Trace-ID sent by the client is reused; otherwise a new one is generated.
// The trace ID is echoed back in the response header.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if inbound := shared.SanitizeTraceID(r.Header.Get(TraceIDHeader)); inbound != "" {
				ctx = shared.WithTraceID(ctx, inbound)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
