package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// GuardMode is the authentication requirement of an operation.
type GuardMode uint8

const (
	// Denied admits only anonymous callers.
	Denied GuardMode = iota
	// Allowed admits anyone and resolves the user when one is present.
	Allowed
	// Required admits only callers that resolve to an existing user.
	Required
)

func (m GuardMode) String() string {
	switch m {
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	case Required:
		return "required"
	default:
		return fmt.Sprintf("GuardMode(%d)", uint8(m))
	}
}

// Principal is the outcome of a guard check.
type Principal struct {
	Mode GuardMode
	User *User
}

// Authenticated reports whether the principal carries a user.
func (p Principal) Authenticated() bool { return p.User != nil }

// Guard derives the principal of a request from its session identity.
// identity is the user id asserted by the session layer, or "" when the
// request carries none.
func (s *Service) Guard(ctx context.Context, mode GuardMode, identity string) (Principal, error) {
	switch mode {
	case Denied:
		if identity != "" {
			return Principal{}, ErrUserAuthenticated
		}
		return Principal{Mode: Denied}, nil

	case Allowed:
		if identity == "" {
			return Principal{Mode: Allowed}, nil
		}
		user, err := s.resolveIdentity(ctx, identity)
		switch {
		case err == nil:
			return Principal{Mode: Allowed, User: user}, nil
		case errors.Is(err, ErrCredentialIncorrect):
			return Principal{Mode: Allowed}, nil
		default:
			return Principal{}, err
		}

	case Required:
		if identity == "" {
			return Principal{}, ErrUserNotAuthenticated
		}
		user, err := s.resolveIdentity(ctx, identity)
		if err != nil {
			return Principal{}, err
		}
		return Principal{Mode: Required, User: user}, nil

	default:
		return Principal{}, fmt.Errorf("%w: unknown guard mode %s", ErrInvalid, mode)
	}
}

func (s *Service) resolveIdentity(ctx context.Context, identity string) (*User, error) {
	uid, err := uuid.Parse(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session identity", ErrCredentialIncorrect)
	}
	user, err := s.GetUser(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown session identity", ErrCredentialIncorrect)
	}
	return user, err
}
