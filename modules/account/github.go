package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/binder"
	"github.com/dmitrymomot/credkit/svc/oauth"
)

type authorizeRequest struct {
	Action string `path:"action"`
}

type callbackRequest struct {
	Code   string `query:"code"`
	State  string `query:"state"`
	Action string `query:"action"`
}

func (m *Module) githubRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/callback", wrap(m, m.githubCallback, errUserNotFound, binder.Query()))
	r.Get("/{action}", wrap(m, m.githubAuthorize, errResourceNotFound, binder.Path(chi.URLParam)))

	return r
}

func (m *Module) githubAuthorize(ctx handler.Context, req authorizeRequest) handler.Response {
	url, err := m.github.AuthURL(ctx, oauth.Action(req.Action))
	if err != nil {
		return handler.Error(err)
	}
	return handler.Redirect(url)
}

// githubCallback completes the provider round trip. The guard of the action
// is applied by the linker before the code is exchanged.
func (m *Module) githubCallback(ctx handler.Context, req callbackRequest) handler.Response {
	out, err := m.github.Callback(ctx, oauth.CallbackRequest{
		Code:   req.Code,
		State:  req.State,
		Action: req.Action,
	}, m.identity(ctx.Request()))
	if err != nil {
		return handler.Error(err)
	}

	switch out.Action {
	case oauth.ActionAuthenticate:
		m.startSession(ctx, out.User)
		return handler.JSONWithStatus(http.StatusCreated, out.User)
	case oauth.ActionRegister:
		m.startSession(ctx, out.User)
		return handler.JSON(out.User)
	case oauth.ActionAssociate:
		return handler.JSONWithStatus(http.StatusCreated, newCredentialView(out.Credential))
	default:
		return handler.Empty()
	}
}
