package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a credential variant.
type Kind string

const (
	KindEmailPassword    Kind = "email_password"
	KindUsernamePassword Kind = "username_password"
	KindGithubOAuth      Kind = "github_oauth"
	KindTOTP             Kind = "totp"
)

// Kinds lists every supported credential kind.
var Kinds = []Kind{KindEmailPassword, KindUsernamePassword, KindGithubOAuth, KindTOTP}

// Exclusive reports whether the kind occupies a lookup slot.
// TOTP is an additive second factor and is never slotted.
func (k Kind) Exclusive() bool {
	switch k {
	case KindEmailPassword, KindUsernamePassword, KindGithubOAuth:
		return true
	default:
		return false
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindEmailPassword, KindUsernamePassword, KindGithubOAuth, KindTOTP:
		return true
	default:
		return false
	}
}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown credential kind %q", ErrInvalid, s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// Meta holds the attributes shared by every credential variant.
type Meta struct {
	CID                uuid.UUID `json:"cid"`
	UID                uuid.UUID `json:"uid"`
	Created            time.Time `json:"created"`
	LastAuthentication time.Time `json:"last_authentication"`
	LastUpdate         time.Time `json:"last_update"`
	Verified           bool      `json:"verified"`
	Disabled           bool      `json:"disabled"`
}

func (m *Meta) meta() *Meta { return m }

func newMeta(owner uuid.UUID, now time.Time) Meta {
	return Meta{
		CID:                uuid.New(),
		UID:                owner,
		Created:            now,
		LastAuthentication: now,
		LastUpdate:         now,
	}
}

// Credential is a stored proof of identity. The set of implementations is
// closed: *EmailPassword, *UsernamePassword, *GithubOAuth and *TOTPMethod.
type Credential interface {
	Kind() Kind
	// NaturalKey returns the externally chosen unique key of the row.
	NaturalKey() string
	meta() *Meta
}

// MetaOf returns the shared attributes of c.
func MetaOf(c Credential) Meta {
	return *c.meta()
}

// Partial is unauthenticated input for a credential kind. It is either
// matched against a stored row (Authenticate) or stored as a new row
// (Associate). Implementations: PartialEmailPassword,
// PartialUsernamePassword, PartialGithubOAuth and PartialTOTP.
type Partial interface {
	Kind() Kind
	partial()
}

// cloneCredential returns a deep copy so callers never share a row with the store.
func cloneCredential(c Credential) Credential {
	switch v := c.(type) {
	case *EmailPassword:
		cp := *v
		return &cp
	case *UsernamePassword:
		cp := *v
		return &cp
	case *GithubOAuth:
		cp := *v
		return &cp
	case *TOTPMethod:
		cp := *v
		cp.Secret = append([]byte(nil), v.Secret...)
		return &cp
	default:
		return c
	}
}

// CloneCredential is exported for store implementations that keep rows in memory.
func CloneCredential(c Credential) Credential { return cloneCredential(c) }
