package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

const sessionCookieName = "staybook_session"

// RequestMeta captures client IP, user agent, session id, and the chi request
// ID into the context so the audit writer's context extractor can embed them.
// Use after chi's RequestID middleware.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if c, err := r.Cookie(sessionCookieName); err == nil {
			sessionID = c.Value
		}
		meta := models.RequestContext{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
			SessionID: sessionID,
			RequestID: chimw.GetReqID(r.Context()),
		}
		next.ServeHTTP(w, r.WithContext(audit.WithRequestMeta(r.Context(), meta)))
	})
}
