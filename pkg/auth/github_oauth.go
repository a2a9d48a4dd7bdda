package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GithubOAuth links a GitHub account to a user. The provider has already
// proven the identity, so rows are stored verified.
type GithubOAuth struct {
	Meta
	ProviderID       int64  `json:"provider_id"`
	ProviderUsername string `json:"provider_username"`
}

func (*GithubOAuth) Kind() Kind { return KindGithubOAuth }

func (c *GithubOAuth) NaturalKey() string {
	return strconv.FormatInt(c.ProviderID, 10)
}

// PartialGithubOAuth is a GitHub identity returned by a successful code exchange.
type PartialGithubOAuth struct {
	ProviderID       int64  `json:"provider_id"`
	ProviderUsername string `json:"provider_username"`
}

func (PartialGithubOAuth) Kind() Kind { return KindGithubOAuth }
func (PartialGithubOAuth) partial()   {}

func (p PartialGithubOAuth) key() string {
	return strconv.FormatInt(p.ProviderID, 10)
}

func newGithubOAuth(p PartialGithubOAuth, owner uuid.UUID, now time.Time) (*GithubOAuth, error) {
	if p.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: provider account id must be positive", ErrInvalid)
	}
	meta := newMeta(owner, now)
	meta.Verified = true
	return &GithubOAuth{
		Meta:             meta,
		ProviderID:       p.ProviderID,
		ProviderUsername: p.ProviderUsername,
	}, nil
}

func (s *Service) matchGithub(ctx context.Context, tx Tx, p PartialGithubOAuth) (Credential, error) {
	c, err := tx.GetCredentialByKey(ctx, KindGithubOAuth, p.key())
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	gh, ok := c.(*GithubOAuth)
	if !ok {
		return nil, ErrNotFound
	}
	// Logins can be renamed on GitHub; keep the stored one current.
	if p.ProviderUsername != "" && gh.ProviderUsername != p.ProviderUsername {
		gh.ProviderUsername = p.ProviderUsername
		gh.LastUpdate = s.now().UTC()
	}
	return gh, nil
}
