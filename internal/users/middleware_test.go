package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
	_ "github.com/meridian-pos/meridian-pos/testing"
)

func newTestMiddleware(t *testing.T) (Middleware, *memoryUserRepo) {
	t.Helper()
	repo := newMemoryUserRepo()
	return Middleware{
		Service: NewService(repo),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, repo
}

func seedUser(t *testing.T, svc *Service, username string, role Role) *User {
	t.Helper()
	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: username, Password: "password1", Role: role,
	})
	require.NoError(t, err)
	return user
}

func TestResolveActorSetsContext(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	admin := seedUser(t, mw.Service, "admin", RoleAdmin)

	var captured *shared.Actor
	handler := mw.ResolveActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = shared.ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(ActorHeader, "1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	require.Equal(t, admin.ID, captured.UserID)
	require.Equal(t, "admin", captured.Username)
}

func TestResolveActorRejectsUnknownOrInactive(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	user := seedUser(t, mw.Service, "cashier", RoleCashier)

	handler := mw.ResolveActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(ActorHeader, "99")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, mw.Service.Deactivate(context.Background(), user.ID))
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(ActorHeader, "1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveActorAllowsAnonymous(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	handler := mw.ResolveActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Nil(t, shared.ActorFromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	protected := mw.RequireRole(RoleAdmin, RoleRoot)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// no actor at all
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// cashier hitting an admin route
	cashier := &shared.Actor{UserID: 2, Username: "cashier", Role: string(RoleCashier)}
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), cashier))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// admin allowed through
	admin := &shared.Actor{UserID: 1, Username: "admin", Role: string(RoleAdmin)}
	req = httptest.NewRequest(http.MethodPost, "/products", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), admin))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
