package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/logger"
)

// User is the identity anchor every credential points to.
type User struct {
	UID uuid.UUID `json:"uid"`
}

// CreateUser creates a user together with its first credential in one
// transaction. If the credential cannot be associated no user is left behind.
// A TOTP method is a second factor and cannot anchor a new user.
func (s *Service) CreateUser(ctx context.Context, p Partial) (*User, error) {
	if !p.Kind().Exclusive() {
		return nil, fmt.Errorf("%w: %s cannot be the first credential of a user", ErrInvalid, p.Kind())
	}

	uid := uuid.New()
	c, err := s.prepare(p, uid)
	if err != nil {
		return nil, err
	}

	if err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertUser(ctx, uid, s.now().UTC()); err != nil {
			return storeError(err, ErrNotFound)
		}
		return s.associate(ctx, tx, c)
	}); err != nil {
		return nil, s.fail(ctx, "create_user", p.Kind(), err)
	}

	s.logger.InfoContext(ctx, "user created",
		logger.UserID(uid.String()),
		logger.CredentialKind(p.Kind().String()),
		logger.Component("auth"),
	)
	return &User{UID: uid}, nil
}

// AuthenticateUser authenticates p and resolves the owning user.
func (s *Service) AuthenticateUser(ctx context.Context, p Partial) (*User, error) {
	c, err := s.Authenticate(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.Owner(ctx, c)
}

// GetUser returns the user with the given uid.
func (s *Service) GetUser(ctx context.Context, uid uuid.UUID) (*User, error) {
	var out *User
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		u, err := tx.GetUser(ctx, uid)
		if err != nil {
			return storeError(err, ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Credentials returns the lookup of uid. Callers use it to decide whether
// a kind is already associated before linking or removing.
func (s *Service) Credentials(ctx context.Context, uid uuid.UUID) (*CredentialLookup, error) {
	var out *CredentialLookup
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		l, err := tx.GetLookup(ctx, uid)
		if err != nil {
			return storeError(err, ErrNotFound)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
