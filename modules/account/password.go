package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/binder"
)

// passwordCredential is a partial bound straight from the request body.
type passwordCredential interface {
	auth.PartialEmailPassword | auth.PartialUsernamePassword
	auth.Partial
}

// passwordRoutes serves authenticate, register, associate and remove for one
// password kind.
func passwordRoutes[P passwordCredential](m *Module) chi.Router {
	r := chi.NewRouter()
	body := binder.JSON()

	r.Group(func(r chi.Router) {
		r.Use(m.guard(auth.Denied))
		r.Post("/authenticate", wrap(m, func(ctx handler.Context, req P) handler.Response {
			user, err := m.accounts.AuthenticateUser(ctx, req)
			if err != nil {
				return handler.Error(err)
			}
			m.startSession(ctx, user)
			return handler.JSON(user)
		}, errUserNotFound, body))

		r.Post("/register", wrap(m, func(ctx handler.Context, req P) handler.Response {
			user, err := m.accounts.CreateUser(ctx, req)
			if err != nil {
				return handler.Error(err)
			}
			m.startSession(ctx, user)
			return handler.JSONWithStatus(http.StatusCreated, user)
		}, errUserNotFound, body))
	})

	r.Group(func(r chi.Router) {
		r.Use(m.guard(auth.Required))
		r.Post("/associate", wrap(m, func(ctx handler.Context, req P) handler.Response {
			c, err := m.accounts.Associate(ctx, req, currentUser(ctx).UID)
			if err != nil {
				return handler.Error(err)
			}
			return handler.JSONWithStatus(http.StatusCreated, newCredentialView(c))
		}, errUserNotFound, body))

		r.Delete("/remove", wrap(m, func(ctx handler.Context, req P) handler.Response {
			c, err := m.accounts.Authenticate(ctx, req)
			if err != nil {
				return handler.Error(err)
			}
			if auth.MetaOf(c).UID != currentUser(ctx).UID {
				return handler.Error(auth.ErrCredentialIncorrect)
			}
			if err := m.accounts.Delete(ctx, c); err != nil {
				return handler.Error(err)
			}
			return handler.Empty()
		}, errResourceNotFound, body))
	})

	return r
}
