package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSessionService struct {
	sessions map[string]*models.Session
}

func (s *stubSessionService) CreateSession(ctx context.Context, user *models.User) (string, error) {
	return "", nil
}

func (s *stubSessionService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, exceptions.ErrInvalidSession(nil)
	}
	return session, nil
}

func (s *stubSessionService) DestroySession(ctx context.Context, token string) error {
	return nil
}

func newAuthTestMiddlewares(sessions map[string]*models.Session) *Middlewares {
	return NewMiddlewares(&stubSessionService{sessions: sessions}, nil, &config.InternalConfig{}, zap.NewNop())
}

func TestAuthenticateResolvesActor(t *testing.T) {
	m := newAuthTestMiddlewares(map[string]*models.Session{
		"valid-token": {
			UserID: "user-1",
			Email:  "patient@example.com",
			Roles:  []string{constvars.RoleTypePatient},
		},
	})

	var gotActor models.Actor
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := r.Context().Value(constvars.CONTEXT_ACTOR_KEY).(models.Actor)
		require.True(t, ok)
		gotActor = actor
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer valid-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotActor.ID)
	assert.Equal(t, []string{constvars.RoleTypePatient}, gotActor.Roles)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	m := newAuthTestMiddlewares(nil)

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	m := newAuthTestMiddlewares(map[string]*models.Session{})

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an unknown token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer expired-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
