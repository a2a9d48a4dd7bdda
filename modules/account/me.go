package account

import (
	"errors"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
)

// credentialView is a credential tagged with its kind. Secrets and hashes
// are excluded by the credential types themselves.
type credentialView struct {
	Kind       auth.Kind       `json:"kind"`
	Credential auth.Credential `json:"credential"`
}

func newCredentialView(c auth.Credential) credentialView {
	return credentialView{Kind: c.Kind(), Credential: c}
}

type profile struct {
	User        *auth.User       `json:"user"`
	Credentials []credentialView `json:"credentials"`
}

// me lists the enabled credentials of the signed in user.
func (m *Module) me(ctx handler.Context, _ empty) handler.Response {
	user := currentUser(ctx)
	lookup, err := m.accounts.Credentials(ctx, user.UID)
	if err != nil {
		return handler.Error(err)
	}

	out := profile{User: user, Credentials: []credentialView{}}
	for _, kind := range auth.Kinds {
		var c auth.Credential
		if kind.Exclusive() {
			cid, ok := lookup.Slot(kind)
			if !ok {
				continue
			}
			c, err = m.accounts.GetByCID(ctx, kind, cid)
		} else {
			c, err = m.accounts.GetByOwner(ctx, kind, user.UID)
		}
		switch {
		case err == nil:
			out.Credentials = append(out.Credentials, newCredentialView(c))
		case errors.Is(err, auth.ErrNotFound), errors.Is(err, auth.ErrCredentialDisabled):
		default:
			return handler.Error(err)
		}
	}

	return handler.JSON(out)
}

func (m *Module) logout(ctx handler.Context, _ empty) handler.Response {
	m.endSession(ctx)
	return handler.Empty()
}
