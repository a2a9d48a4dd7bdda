// Package account exposes the credential core as a JSON HTTP API.
//
//	m := account.NewModule(svc, cookies,
//		account.WithGitHub(linker),
//		account.WithTOTPIssuer("credkit"),
//		account.WithLogger(log),
//	)
//	r.Mount("/", m.Router())
//
// Sessions are carried in a signed cookie holding the user id. Every route
// passes the cookie value through auth.Service.Guard before it runs.
package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/cookie"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/svc/oauth"
)

// DefaultSessionCookie is the name of the session cookie.
const DefaultSessionCookie = "credkit_session"

// Accounts is the part of *auth.Service the HTTP layer drives.
type Accounts interface {
	oauth.Accounts
	Credentials(ctx context.Context, uid uuid.UUID) (*auth.CredentialLookup, error)
	GetByCID(ctx context.Context, kind auth.Kind, cid uuid.UUID) (auth.Credential, error)
	GetByOwner(ctx context.Context, kind auth.Kind, uid uuid.UUID) (auth.Credential, error)
	VerifyTOTP(ctx context.Context, uid uuid.UUID, code string) error
}

var _ Accounts = (*auth.Service)(nil)

// Module serves the /auth routes.
type Module struct {
	accounts      Accounts
	cookies       *cookie.Manager
	github        *oauth.Linker
	sessionCookie string
	issuer        string
	logger        *slog.Logger
}

type Option func(*Module)

// WithLogger sets the logger used for request errors and session events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithGitHub enables the /auth/github routes.
func WithGitHub(l *oauth.Linker) Option {
	return func(m *Module) {
		m.github = l
	}
}

// WithSessionCookie overrides DefaultSessionCookie.
func WithSessionCookie(name string) Option {
	return func(m *Module) {
		if name != "" {
			m.sessionCookie = name
		}
	}
}

// WithTOTPIssuer sets the issuer shown by authenticator apps.
func WithTOTPIssuer(issuer string) Option {
	return func(m *Module) {
		if issuer != "" {
			m.issuer = issuer
		}
	}
}

// NewModule creates the account module.
func NewModule(accounts Accounts, cookies *cookie.Manager, opts ...Option) *Module {
	m := &Module{
		accounts:      accounts,
		cookies:       cookies,
		sessionCookie: DefaultSessionCookie,
		issuer:        "credkit",
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Router returns the routes of the module rooted at /auth.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Mount("/email_password", passwordRoutes[auth.PartialEmailPassword](m))
		r.Mount("/username_password", passwordRoutes[auth.PartialUsernamePassword](m))
		if m.github != nil {
			r.Mount("/github", m.githubRoutes())
		}
		r.Mount("/totp", m.totpRoutes())

		r.With(m.guard(auth.Required)).Get("/me", wrap(m, m.me, errResourceNotFound))
		r.With(m.guard(auth.Allowed)).Post("/logout", wrap(m, m.logout, errResourceNotFound))
	})

	return r
}

type empty struct{}

// wrap adapts h with the module's JSON error handler. notFound is the error
// reported for auth.ErrNotFound on this route.
func wrap[R any](m *Module, h handler.HandlerFunc[handler.Context, R], notFound handler.HTTPError, binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](m.errorHandler(notFound)),
	)
}

func (m *Module) errorHandler(notFound handler.HTTPError) handler.ErrorHandler[handler.Context] {
	return handler.NewErrorHandler(m.logger, func(err error) handler.HTTPError {
		return classify(err, notFound)
	})
}
