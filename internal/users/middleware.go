package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Middleware resolves the acting operator for each request and enforces
// role requirements. The upstream gateway authenticates the operator and
// forwards the account id; ambient session state is deliberately absent.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// ActorHeader carries the authenticated operator id set by the gateway.
const ActorHeader = "X-Actor-ID"

// ResolveActor loads the acting user and stores it in the request context.
// Requests without a valid actor proceed anonymously; role checks reject
// them later where required.
func (m Middleware) ResolveActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ActorHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		user, err := m.Service.Get(r.Context(), id)
		if err != nil || !user.IsActive {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		actor := &shared.Actor{UserID: user.ID, Username: user.Username, Role: string(user.Role)}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole ensures the current actor holds one of the given roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromContext(r.Context())
			if actor == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("role check failed",
					slog.String("username", actor.Username),
					slog.String("role", actor.Role),
					slog.String("path", r.URL.Path))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
