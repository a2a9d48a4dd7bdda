package oauth

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/credkit/pkg/auth"
)

var (
	// ErrUnknownAction is returned for an action outside the supported set.
	ErrUnknownAction = fmt.Errorf("%w: unknown oauth action", auth.ErrInvalid)
	// ErrInvalidState covers a missing, expired, replayed or mismatching state token.
	ErrInvalidState = errors.New("oauth: invalid state")
	// ErrIncorrectCode is returned when the provider rejects the authorization code.
	ErrIncorrectCode = errors.New("oauth: incorrect authorization code")
	// ErrProviderFailure is returned when the provider API cannot be reached or answers garbage.
	ErrProviderFailure = errors.New("oauth: provider failure")
	// ErrStateStoreFailure wraps state store backend errors.
	ErrStateStoreFailure = errors.New("oauth: state store failure")
)
