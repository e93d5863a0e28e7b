package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionIDKey is the context key for the anonymous session identifier
const SessionIDKey contextKey = "session_id"

// Session resolves the caller's session identity. An anonymous visitor is
// identified by the X-Session-ID header; if the header is absent a fresh id
// is minted and echoed back so the frontend can persist it. The session id
// keys the offline cart, so it must be stable across requests.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := uuid.Parse(r.Header.Get("X-Session-ID"))
		if err != nil {
			sessionID = uuid.New()
		}

		w.Header().Set("X-Session-ID", sessionID.String())

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID from context
func GetSessionID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(SessionIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
