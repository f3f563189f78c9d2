package middlewares

import (
	"context"
	"net/http"
	"strings"

	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
)

// Authenticate resolves the bearer token to a session and stores the actor in
// the request context for the handlers behind it.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidSession(nil))
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		session, err := m.SessionService.ResolveSession(r.Context(), token)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_ACTOR_KEY, session.ToActor())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
