package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/sanitizer"
	"github.com/dmitrymomot/credkit/pkg/validator"
)

// Password length bounds shared by the password credential kinds.
const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

// EmailPassword is an email address paired with a password hash.
type EmailPassword struct {
	Meta
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

func (*EmailPassword) Kind() Kind           { return KindEmailPassword }
func (c *EmailPassword) NaturalKey() string { return c.Email }

// PartialEmailPassword is a claimed email and password.
type PartialEmailPassword struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (PartialEmailPassword) Kind() Kind { return KindEmailPassword }
func (PartialEmailPassword) partial()   {}

func (p PartialEmailPassword) key() string {
	return sanitizer.NormalizeEmail(p.Email)
}

func (s *Service) newEmailPassword(p PartialEmailPassword, owner uuid.UUID, now time.Time) (*EmailPassword, error) {
	email := p.key()
	if err := validator.Apply(
		validator.ValidEmail("email", email),
		validator.MinLenString("password", p.Password, PasswordMinLength),
		validator.MaxLenString("password", p.Password, PasswordMaxLength),
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	hash, err := s.hashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	return &EmailPassword{
		Meta:         newMeta(owner, now),
		Email:        email,
		PasswordHash: hash,
	}, nil
}
