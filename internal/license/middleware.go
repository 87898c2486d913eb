package license

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

// Middleware blocks requests while the license is expired or absent. It is
// mounted on the business routes only; health and license management stay
// reachable so an expired installation can be reactivated.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Gate rejects requests when the active license has expired.
func (m Middleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eval, err := m.Service.Status(r.Context())
		if err != nil {
			if errors.Is(err, ErrNoLicense) {
				httpx.Problem(w, http.StatusForbidden, "License Required", "no active license")
				return
			}
			m.Logger.Error("license status", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "License Check Failed", "")
			return
		}
		if eval.Blocked() {
			httpx.Problem(w, http.StatusForbidden, "License Expired", "the license window has closed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
