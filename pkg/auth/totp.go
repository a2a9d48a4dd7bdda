package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/totp"
)

// totpNamespace derives TOTP credential ids from their owner, so the row is
// addressed by (method type, uid).
var totpNamespace = uuid.MustParse("6f1f3c1e-7a43-4d55-9a7e-2b0c5d9e8a11")

// TOTPCredentialID returns the credential id of the TOTP method owned by uid.
func TOTPCredentialID(uid uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(totpNamespace, []byte(string(KindTOTP)+":"+uid.String()))
}

// TOTPMethod is a time-based one-time password second factor.
type TOTPMethod struct {
	Meta
	Secret []byte `json:"-"`
}

func (*TOTPMethod) Kind() Kind           { return KindTOTP }
func (c *TOTPMethod) NaturalKey() string { return c.UID.String() }

// Base32Secret returns the secret encoded for authenticator apps.
func (c *TOTPMethod) Base32Secret() string {
	return totp.SecretToBase32(c.Secret)
}

// PartialTOTP authenticates a code for UID, or enrolls Secret for the owner.
// On enrollment a non-empty Code must verify against the new secret, and an
// empty Secret is generated.
type PartialTOTP struct {
	UID    uuid.UUID `json:"uid"`
	Code   string    `json:"code"`
	Secret []byte    `json:"-"`
}

func (PartialTOTP) Kind() Kind { return KindTOTP }
func (PartialTOTP) partial()   {}

// VerifyTOTP checks code against the TOTP method of uid. It does not record
// used codes, so a code stays valid for its whole window.
func (s *Service) VerifyTOTP(ctx context.Context, uid uuid.UUID, code string) error {
	_, err := s.Authenticate(ctx, PartialTOTP{UID: uid, Code: code})
	return err
}

func (s *Service) newTOTPMethod(p PartialTOTP, owner uuid.UUID, now time.Time) (*TOTPMethod, error) {
	secret := p.Secret
	if len(secret) == 0 {
		var err error
		if secret, err = totp.GenerateSecret(s.secretSize); err != nil {
			return nil, fmt.Errorf("failed to generate totp secret: %w", err)
		}
	}
	if len(secret) < totp.MinSecretSize {
		return nil, fmt.Errorf("%w: totp secret must be at least %d bytes", ErrInvalid, totp.MinSecretSize)
	}
	if p.Code != "" && !s.totp.Check(secret, p.Code, now) {
		return nil, fmt.Errorf("%w: totp code does not match the new secret", ErrInvalid)
	}

	meta := newMeta(owner, now)
	meta.CID = TOTPCredentialID(owner)
	meta.Verified = true
	return &TOTPMethod{
		Meta:   meta,
		Secret: append([]byte(nil), secret...),
	}, nil
}

func (s *Service) matchTOTP(ctx context.Context, tx Tx, p PartialTOTP) (Credential, error) {
	c, err := tx.GetCredentialByOwner(ctx, KindTOTP, p.UID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	m, ok := c.(*TOTPMethod)
	if !ok || !s.totp.Check(m.Secret, p.Code, s.now()) {
		return nil, ErrNotFound
	}
	return m, nil
}
