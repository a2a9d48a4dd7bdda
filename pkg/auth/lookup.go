package auth

import (
	"github.com/google/uuid"
)

// CredentialLookup records which credential, if any, is active for each
// exclusive kind of a user.
type CredentialLookup struct {
	UID              uuid.UUID     `json:"uid"`
	EmailPassword    uuid.NullUUID `json:"email_password"`
	UsernamePassword uuid.NullUUID `json:"username_password"`
	GithubOAuth      uuid.NullUUID `json:"github_oauth"`
}

// Slot returns the credential id held for kind.
func (l *CredentialLookup) Slot(kind Kind) (uuid.UUID, bool) {
	s := l.slot(kind)
	if s == nil || !s.Valid {
		return uuid.Nil, false
	}
	return s.UUID, true
}

// SetSlot points the slot for kind at cid. Non-exclusive kinds are ignored.
func (l *CredentialLookup) SetSlot(kind Kind, cid uuid.UUID) {
	if s := l.slot(kind); s != nil {
		*s = uuid.NullUUID{UUID: cid, Valid: true}
	}
}

// ClearSlot nulls the slot for kind if it holds cid.
func (l *CredentialLookup) ClearSlot(kind Kind, cid uuid.UUID) {
	if s := l.slot(kind); s != nil && s.Valid && s.UUID == cid {
		*s = uuid.NullUUID{}
	}
}

// Count returns the number of populated slots.
func (l *CredentialLookup) Count() int {
	n := 0
	for _, s := range []uuid.NullUUID{l.EmailPassword, l.UsernamePassword, l.GithubOAuth} {
		if s.Valid {
			n++
		}
	}
	return n
}

// HasMultipleCredentials reports whether at least two kinds are populated.
// A credential may only be deleted while this holds.
func (l *CredentialLookup) HasMultipleCredentials() bool {
	return l.Count() >= 2
}

func (l *CredentialLookup) slot(kind Kind) *uuid.NullUUID {
	switch kind {
	case KindEmailPassword:
		return &l.EmailPassword
	case KindUsernamePassword:
		return &l.UsernamePassword
	case KindGithubOAuth:
		return &l.GithubOAuth
	default:
		return nil
	}
}
