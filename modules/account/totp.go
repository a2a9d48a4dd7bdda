package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/binder"
	"github.com/dmitrymomot/credkit/pkg/totp"
)

// enrollment is returned once; the secret cannot be read back later.
type enrollment struct {
	CID    string `json:"cid"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (m *Module) totpRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(m.guard(auth.Required))

	r.Post("/enroll", wrap(m, m.enrollTOTP, errResourceNotFound))
	r.Post("/verify", wrap(m, m.verifyTOTP, errIncorrectCredential, binder.JSON()))
	r.Delete("/", wrap(m, m.removeTOTP, errResourceNotFound))

	return r
}

func (m *Module) enrollTOTP(ctx handler.Context, _ empty) handler.Response {
	user := currentUser(ctx)
	c, err := m.accounts.Associate(ctx, auth.PartialTOTP{}, user.UID)
	if err != nil {
		return handler.Error(err)
	}
	method, ok := c.(*auth.TOTPMethod)
	if !ok {
		return handler.Error(errors.New("associate returned a non totp credential"))
	}

	secret := method.Base32Secret()
	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: user.UID.String(),
		Issuer:      m.issuer,
	})
	if err != nil {
		return handler.Error(err)
	}

	return handler.JSONWithStatus(http.StatusCreated, enrollment{
		CID:    method.CID.String(),
		Secret: secret,
		URI:    uri,
	})
}

// verifyTOTP reports an unknown method and a wrong code the same way.
func (m *Module) verifyTOTP(ctx handler.Context, req verifyRequest) handler.Response {
	if err := m.accounts.VerifyTOTP(ctx, currentUser(ctx).UID, req.Code); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (m *Module) removeTOTP(ctx handler.Context, _ empty) handler.Response {
	c, err := m.accounts.GetByOwner(ctx, auth.KindTOTP, currentUser(ctx).UID)
	if err != nil {
		return handler.Error(err)
	}
	if err := m.accounts.Delete(ctx, c); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}
