package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// headerRequestID is accepted from and echoed back to clients so a frontend
// can correlate its own traces with render log lines and FIBO request ids.
const headerRequestID = "X-Request-ID"

// maxInboundRequestIDLen bounds client-supplied ids before they reach the
// logs; oversized or non-printable values are replaced, not truncated.
const maxInboundRequestIDLen = 128

// RequestID tags every request with an id, reusing a sane inbound header
// value and minting a UUID otherwise. The id rides the request context and
// the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := inboundRequestID(r)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		w.Header().Set(headerRequestID, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func inboundRequestID(r *http.Request) string {
	rid := r.Header.Get(headerRequestID)
	if rid == "" || len(rid) > maxInboundRequestIDLen {
		return ""
	}
	for _, ch := range rid {
		if ch <= 0x20 || ch > 0x7e {
			return ""
		}
	}
	return rid
}

// RequestIDFromContext returns the id stored by RequestID, or an empty
// string when the middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
