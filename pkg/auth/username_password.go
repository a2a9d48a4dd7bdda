package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/sanitizer"
	"github.com/dmitrymomot/credkit/pkg/validator"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 39
)

// UsernamePassword is a username paired with a password hash.
// Usernames compare case-insensitively.
type UsernamePassword struct {
	Meta
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

func (*UsernamePassword) Kind() Kind           { return KindUsernamePassword }
func (c *UsernamePassword) NaturalKey() string { return c.Username }

// PartialUsernamePassword is a claimed username and password.
type PartialUsernamePassword struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (PartialUsernamePassword) Kind() Kind { return KindUsernamePassword }
func (PartialUsernamePassword) partial()   {}

func (p PartialUsernamePassword) key() string {
	return sanitizer.NormalizeUsername(p.Username)
}

func (s *Service) newUsernamePassword(p PartialUsernamePassword, owner uuid.UUID, now time.Time) (*UsernamePassword, error) {
	username := p.key()
	if err := validator.Apply(
		validator.ValidUsername("username", username, UsernameMinLength, UsernameMaxLength),
		validator.MinLenString("password", p.Password, PasswordMinLength),
		validator.MaxLenString("password", p.Password, PasswordMaxLength),
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	hash, err := s.hashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	return &UsernamePassword{
		Meta:         newMeta(owner, now),
		Username:     username,
		PasswordHash: hash,
	}, nil
}
