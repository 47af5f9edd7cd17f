package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Session headers. Authentication happens upstream; the gateway forwards
// the verified user in these headers.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

type sessionKey struct{}

// RequireSession builds a domain.Session from the request headers and stores
// it in the context. Requests without a user ID are rejected with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if id == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", HeaderUserID+" header is required")
			return
		}
		sess := domain.Session{
			UserID:      id,
			DisplayName: strings.TrimSpace(r.Header.Get(HeaderUserName)),
			Locale:      primaryLocale(r.Header.Get("Accept-Language")),
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(domain.Session)
	return sess, ok
}

// primaryLocale returns the first language tag of an Accept-Language
// header, ignoring quality values. Empty means "en".
func primaryLocale(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "*" {
		return "en"
	}
	return tag
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
