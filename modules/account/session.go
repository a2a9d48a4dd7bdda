package account

import (
	"net/http"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/logger"
)

// identity returns the user id asserted by the session cookie, or "" when
// the cookie is missing, tampered with or expired.
func (m *Module) identity(r *http.Request) string {
	uid, err := m.cookies.GetSigned(r, m.sessionCookie)
	if err != nil {
		return ""
	}
	return uid
}

// guard resolves the principal of the request under mode and stores it in
// the request context. Requests the guard rejects never reach next.
func (m *Module) guard(mode auth.GuardMode) func(http.Handler) http.Handler {
	onError := m.errorHandler(errUserNotFound)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.accounts.Guard(r.Context(), mode, m.identity(r))
			if err != nil {
				onError(handler.NewContext(w, r), err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.SetPrincipalToContext(r.Context(), p)))
		})
	}
}

func (m *Module) startSession(ctx handler.Context, user *auth.User) {
	m.cookies.SetSigned(ctx.ResponseWriter(), m.sessionCookie, user.UID.String())
	m.logger.DebugContext(ctx, "session started",
		logger.UserID(user.UID.String()),
		logger.Component("account"),
	)
}

func (m *Module) endSession(ctx handler.Context) {
	m.cookies.Delete(ctx.ResponseWriter(), m.sessionCookie)
}

// currentUser returns the user the guard resolved. It is only nil on routes
// guarded with Denied or Allowed.
func currentUser(ctx handler.Context) *auth.User {
	return auth.GetUserFromContext(ctx)
}
