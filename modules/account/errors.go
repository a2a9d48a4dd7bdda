package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/credkit/handler"
	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/binder"
	"github.com/dmitrymomot/credkit/pkg/validator"
	"github.com/dmitrymomot/credkit/svc/oauth"
)

// Error codes of the API.
var (
	errIncorrectCredential    = handler.NewHTTPError(http.StatusUnauthorized, "AUTH/INCORRECT_CREDENTIAL", "Incorrect credential")
	errIncorrectOAuthCode     = handler.NewHTTPError(http.StatusUnauthorized, "AUTH/INCORRECT_OAUTH_CODE", "Incorrect or expired authorization")
	errUserNotFound           = handler.NewHTTPError(http.StatusNotFound, "AUTH/USER_NOT_FOUND", "User not found")
	errResourceNotFound       = handler.NewHTTPError(http.StatusNotFound, "AUTH/RESOURCE_NOT_FOUND", "Resource not found")
	errUserDisabled           = handler.NewHTTPError(http.StatusForbidden, "AUTH/USER_DISABLED", "Credential is disabled")
	errUserAuthenticated      = handler.NewHTTPError(http.StatusForbidden, "AUTH/USER_AUTHENTICATED", "Already signed in")
	errUserExists             = handler.NewHTTPError(http.StatusConflict, "AUTH/USER_EXISTS", "Credential already in use")
	errCredentialAssociated   = handler.NewHTTPError(http.StatusConflict, "AUTH/CREDENTIAL_ASSOCIATED", "A credential of this kind is already associated")
	errCredentialCannotRemove = handler.NewHTTPError(http.StatusConflict, "AUTH/CREDENTIAL_CANNOT_REMOVE", "The last credential cannot be removed")
	errInvalid                = handler.NewHTTPError(http.StatusUnprocessableEntity, "AUTH/INVALID", "Invalid request")
	errUnknown                = handler.NewHTTPError(http.StatusInternalServerError, "AUTH/UNKNOWN", "Something went wrong")
)

// classify maps err onto the API error codes. Store, hash and provider
// failures are reported as AUTH/UNKNOWN without detail.
func classify(err error, notFound handler.HTTPError) handler.HTTPError {
	switch {
	case errors.Is(err, oauth.ErrIncorrectCode), errors.Is(err, oauth.ErrInvalidState):
		return errIncorrectOAuthCode
	case errors.Is(err, auth.ErrCredentialIncorrect):
		return errIncorrectCredential
	case errors.Is(err, auth.ErrCredentialDisabled):
		return errUserDisabled
	case errors.Is(err, auth.ErrUserAuthenticated):
		return errUserAuthenticated
	case errors.Is(err, auth.ErrCredentialAssociated):
		return errCredentialAssociated
	case errors.Is(err, auth.ErrCredentialCannotDelete):
		return errCredentialCannotRemove
	case errors.Is(err, auth.ErrExists):
		return errUserExists
	case errors.Is(err, auth.ErrNotFound):
		return notFound
	case errors.Is(err, auth.ErrInvalid), validator.IsValidationError(err), binder.IsBindError(err):
		return invalid(err)
	default:
		return errUnknown
	}
}

func invalid(err error) handler.HTTPError {
	e := errInvalid
	if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
		e.Details = make(map[string][]string, len(verrs))
		for _, field := range verrs.Fields() {
			e.Details[field] = verrs.Get(field)
		}
		return e
	}
	e.Message = err.Error()
	return e
}
