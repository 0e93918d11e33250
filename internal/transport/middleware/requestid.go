package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/pkg/logger"

	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

type traceKey struct{}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		// inject into context
		ctx := context.WithValue(r.Context(), traceKey{}, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		// propagate back to response
		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID returns the id assigned by RequestID, or "" outside a request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
