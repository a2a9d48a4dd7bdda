package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/validator"
)

func TestService_EmailPasswordLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "Alice@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.UID)

	t.Run("authenticates with normalized email", func(t *testing.T) {
		got, err := svc.AuthenticateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, user.UID, got.UID)
	})

	t.Run("wrong password is not found", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "wrong horse"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, auth.PartialEmailPassword{Email: "bob@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("email cannot be reused by another user", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "ALICE@example.com", Password: "another pw"})
		assert.ErrorIs(t, err, auth.ErrExists)
	})

	t.Run("stored row is readable by key and owner", func(t *testing.T) {
		byKey, err := svc.GetByNaturalKey(ctx, auth.KindEmailPassword, " ALICE@EXAMPLE.COM")
		require.NoError(t, err)
		byOwner, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
		require.NoError(t, err)
		byCID, err := svc.GetByCID(ctx, auth.KindEmailPassword, auth.MetaOf(byKey).CID)
		require.NoError(t, err)

		assert.Equal(t, byKey, byOwner)
		assert.Equal(t, byKey, byCID)

		ep, ok := byKey.(*auth.EmailPassword)
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", ep.Email)
		assert.NotEqual(t, "correct horse", ep.PasswordHash)
		assert.False(t, ep.Verified)
		assert.False(t, ep.Disabled)
	})
}

func TestService_AuthenticateRecordsTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clk := newTestService(t)

	p := auth.PartialUsernamePassword{Username: "Alice", Password: "correct horse"}
	user, err := svc.CreateUser(ctx, p)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	c, err := svc.Authenticate(ctx, auth.PartialUsernamePassword{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	stored, err := svc.GetByOwner(ctx, auth.KindUsernamePassword, user.UID)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), auth.MetaOf(stored).LastAuthentication)
	assert.Equal(t, testNow, auth.MetaOf(stored).Created)
	assert.Equal(t, auth.MetaOf(c).LastAuthentication, auth.MetaOf(stored).LastAuthentication)
}

func TestService_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name  string
		p     auth.Partial
		field string
	}{
		{"malformed email", auth.PartialEmailPassword{Email: "not-an-email", Password: "long enough"}, "email"},
		{"short password", auth.PartialEmailPassword{Email: "a@example.com", Password: "short"}, "password"},
		{"short username", auth.PartialUsernamePassword{Username: "ab", Password: "long enough"}, "username"},
		{"bad username chars", auth.PartialUsernamePassword{Username: "a b c", Password: "long enough"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.p)
			require.ErrorIs(t, err, auth.ErrInvalid)
			require.True(t, validator.IsValidationError(err))
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))
		})
	}

	t.Run("github id must be positive", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, auth.PartialGithubOAuth{ProviderID: 0, ProviderUsername: "octo"})
		assert.ErrorIs(t, err, auth.ErrInvalid)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := svc.GetByNaturalKey(ctx, auth.Kind("smoke_signal"), "x")
		assert.ErrorIs(t, err, auth.ErrInvalid)
	})
}

func TestService_Associate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	c, err := svc.Associate(ctx, auth.PartialUsernamePassword{Username: "alice", Password: "battery staple"}, user.UID)
	require.NoError(t, err)
	assert.Equal(t, user.UID, auth.MetaOf(c).UID)

	lookup, err := svc.Credentials(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.Count())
	cid, ok := lookup.Slot(auth.KindUsernamePassword)
	require.True(t, ok)
	assert.Equal(t, auth.MetaOf(c).CID, cid)

	t.Run("same kind twice", func(t *testing.T) {
		_, err := svc.Associate(ctx, auth.PartialUsernamePassword{Username: "alice2", Password: "battery staple"}, user.UID)
		assert.ErrorIs(t, err, auth.ErrCredentialAssociated)
	})

	t.Run("key owned by someone else", func(t *testing.T) {
		other, err := svc.CreateUser(ctx, auth.PartialGithubOAuth{ProviderID: 42, ProviderUsername: "octo"})
		require.NoError(t, err)

		_, err = svc.Associate(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "whatever pw"}, other.UID)
		assert.ErrorIs(t, err, auth.ErrExists)

		l, err := svc.Credentials(ctx, other.UID)
		require.NoError(t, err)
		assert.Equal(t, 1, l.Count(), "failed association must not leave a slot behind")
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.Associate(ctx, auth.PartialEmailPassword{Email: "ghost@example.com", Password: "whatever pw"}, uuid.New())
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	email, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
	require.NoError(t, err)

	t.Run("refuses the only credential", func(t *testing.T) {
		err := svc.Delete(ctx, email)
		assert.ErrorIs(t, err, auth.ErrCredentialCannotDelete)

		_, err = svc.Authenticate(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
		assert.NoError(t, err)
	})

	t.Run("removes one of two", func(t *testing.T) {
		gh, err := svc.Associate(ctx, auth.PartialGithubOAuth{ProviderID: 7, ProviderUsername: "alice-gh"}, user.UID)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, email))

		_, err = svc.Authenticate(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, auth.ErrNotFound)

		lookup, err := svc.Credentials(ctx, user.UID)
		require.NoError(t, err)
		_, ok := lookup.Slot(auth.KindEmailPassword)
		assert.False(t, ok)
		assert.Equal(t, 1, lookup.Count())

		assert.ErrorIs(t, svc.Delete(ctx, gh), auth.ErrCredentialCannotDelete)
	})

	t.Run("already deleted", func(t *testing.T) {
		_, err := svc.Associate(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"}, user.UID)
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(ctx, email), auth.ErrNotFound)
	})

	t.Run("email can be taken again after delete", func(t *testing.T) {
		c, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, c))

		_, err = svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "a new owner"})
		assert.NoError(t, err)
	})
}

func TestService_DeleteChecksStoredOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	victim, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "victim@example.com", Password: "correct horse"})
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "other@example.com", Password: "correct horse"})
	require.NoError(t, err)
	_, err = svc.Associate(ctx, auth.PartialUsernamePassword{Username: "other", Password: "correct horse"}, other.UID)
	require.NoError(t, err)

	stored, err := svc.GetByOwner(ctx, auth.KindEmailPassword, victim.UID)
	require.NoError(t, err)

	forged := &auth.EmailPassword{Meta: auth.Meta{CID: auth.MetaOf(stored).CID, UID: other.UID}}
	assert.ErrorIs(t, svc.Delete(ctx, forged), auth.ErrNotFound)

	_, err = svc.AuthenticateUser(ctx, auth.PartialEmailPassword{Email: "victim@example.com", Password: "correct horse"})
	assert.NoError(t, err)

	lookup, err := svc.Credentials(ctx, victim.UID)
	require.NoError(t, err)
	cid, ok := lookup.Slot(auth.KindEmailPassword)
	require.True(t, ok)
	_, err = svc.GetByCID(ctx, auth.KindEmailPassword, cid)
	assert.NoError(t, err)

	otherLookup, err := svc.Credentials(ctx, other.UID)
	require.NoError(t, err)
	assert.Equal(t, 2, otherLookup.Count())
}

func TestService_ConcurrentDeleteKeepsOneCredential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	_, err = svc.Associate(ctx, auth.PartialUsernamePassword{Username: "alice", Password: "correct horse"}, user.UID)
	require.NoError(t, err)

	email, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
	require.NoError(t, err)
	username, err := svc.GetByOwner(ctx, auth.KindUsernamePassword, user.UID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []auth.Credential{email, username} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.Delete(ctx, c)
		}()
	}
	wg.Wait()

	var deleted, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, auth.ErrCredentialCannotDelete):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, refused)

	lookup, err := svc.Credentials(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.Count())
}

func TestService_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clk := newTestService(t)

	p := auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"}
	user, err := svc.CreateUser(ctx, p)
	require.NoError(t, err)
	c, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	disabled, err := svc.SetDisabled(ctx, c, true)
	require.NoError(t, err)
	assert.True(t, auth.MetaOf(disabled).Disabled)
	assert.Equal(t, testNow.Add(time.Minute), auth.MetaOf(disabled).LastUpdate)

	t.Run("correct secret reports disabled", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, p)
		assert.ErrorIs(t, err, auth.ErrCredentialDisabled)
	})

	t.Run("wrong secret still reports not found", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, auth.PartialEmailPassword{Email: p.Email, Password: "wrong horse"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("lookups by id hide disabled rows", func(t *testing.T) {
		_, err := svc.GetByCID(ctx, auth.KindEmailPassword, auth.MetaOf(c).CID)
		assert.ErrorIs(t, err, auth.ErrCredentialDisabled)
		_, err = svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
		assert.ErrorIs(t, err, auth.ErrCredentialDisabled)
	})

	t.Run("natural key lookup returns disabled rows", func(t *testing.T) {
		got, err := svc.GetByNaturalKey(ctx, auth.KindEmailPassword, p.Email)
		require.NoError(t, err)
		assert.True(t, auth.MetaOf(got).Disabled)
	})

	t.Run("disabling twice is a no-op", func(t *testing.T) {
		again, err := svc.SetDisabled(ctx, c, true)
		require.NoError(t, err)
		assert.True(t, auth.MetaOf(again).Disabled)
	})

	t.Run("disabled rows still count for deletion", func(t *testing.T) {
		lookup, err := svc.Credentials(ctx, user.UID)
		require.NoError(t, err)
		assert.Equal(t, 1, lookup.Count())
	})

	t.Run("re-enable", func(t *testing.T) {
		_, err := svc.SetDisabled(ctx, c, false)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, p)
		assert.NoError(t, err)
	})
}

func TestService_SetVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	c, err := svc.GetByOwner(ctx, auth.KindEmailPassword, user.UID)
	require.NoError(t, err)

	verified, err := svc.SetVerified(ctx, c, true)
	require.NoError(t, err)
	assert.True(t, auth.MetaOf(verified).Verified)

	stored, err := svc.GetByCID(ctx, auth.KindEmailPassword, auth.MetaOf(c).CID)
	require.NoError(t, err)
	assert.True(t, auth.MetaOf(stored).Verified)
	assert.False(t, auth.MetaOf(c).Verified, "caller copy is not mutated")

	t.Run("missing credential", func(t *testing.T) {
		ghost := &auth.EmailPassword{Meta: auth.Meta{CID: uuid.New(), UID: user.UID}}
		_, err := svc.SetVerified(ctx, ghost, true)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestService_Github(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.PartialGithubOAuth{ProviderID: 1001, ProviderUsername: "octocat"})
	require.NoError(t, err)

	c, err := svc.GetByNaturalKey(ctx, auth.KindGithubOAuth, "1001")
	require.NoError(t, err)
	assert.True(t, auth.MetaOf(c).Verified)

	t.Run("login rename is picked up", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, auth.PartialGithubOAuth{ProviderID: 1001, ProviderUsername: "octocat-renamed"})
		require.NoError(t, err)
		assert.Equal(t, user.UID, auth.MetaOf(got).UID)

		stored, err := svc.GetByOwner(ctx, auth.KindGithubOAuth, user.UID)
		require.NoError(t, err)
		assert.Equal(t, "octocat-renamed", stored.(*auth.GithubOAuth).ProviderUsername)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, auth.PartialGithubOAuth{ProviderID: 2002, ProviderUsername: "other"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("account linked to another user", func(t *testing.T) {
		other, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "other@example.com", Password: "correct horse"})
		require.NoError(t, err)
		_, err = svc.Associate(ctx, auth.PartialGithubOAuth{ProviderID: 1001, ProviderUsername: "octocat"}, other.UID)
		assert.ErrorIs(t, err, auth.ErrExists)
	})
}

func TestService_HashFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hasher := new(MockPasswordHasher)
	hasher.On("Hash", "correct horse").Return("", errors.New("out of memory"))
	svc, _, _ := newTestService(t, auth.WithPasswordHasher(hasher))

	_, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "alice@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, auth.ErrHashFailure)
	hasher.AssertExpectations(t)
}

func TestService_UnknownKeyStillHashes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hasher := new(MockPasswordHasher)
	hasher.On("Hash", mock.Anything).Return("$argon2id$dummy", nil).Once()
	hasher.On("Verify", "whatever pw", "$argon2id$dummy").Return(false, nil).Once()
	svc, _, _ := newTestService(t, auth.WithPasswordHasher(hasher))

	_, err := svc.Authenticate(ctx, auth.PartialEmailPassword{Email: "nobody@example.com", Password: "whatever pw"})
	assert.ErrorIs(t, err, auth.ErrNotFound)
	hasher.AssertExpectations(t)
}

func TestService_DummyHashFailureIsRetried(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hasher := new(MockPasswordHasher)
	hasher.On("Hash", mock.Anything).Return("", errors.New("out of memory")).Once()
	hasher.On("Hash", mock.Anything).Return("$argon2id$dummy", nil).Once()
	hasher.On("Verify", "whatever pw", "$argon2id$dummy").Return(false, nil).Twice()
	svc, _, _ := newTestService(t, auth.WithPasswordHasher(hasher))

	p := auth.PartialEmailPassword{Email: "nobody@example.com", Password: "whatever pw"}
	for range 3 {
		_, err := svc.Authenticate(ctx, p)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	}
	hasher.AssertExpectations(t)
}

func TestService_GetByNaturalKeyMalformed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.GetByNaturalKey(ctx, auth.KindGithubOAuth, "abc")
	assert.ErrorIs(t, err, auth.ErrInvalid)
	_, err = svc.GetByNaturalKey(ctx, auth.KindTOTP, "not-a-uuid")
	assert.ErrorIs(t, err, auth.ErrInvalid)

	_, err = svc.Associate(ctx, auth.PartialGithubOAuth{ProviderID: 42, ProviderUsername: "octo"}, mustUser(t, svc))
	require.NoError(t, err)
	c, err := svc.GetByNaturalKey(ctx, auth.KindGithubOAuth, " 42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.(*auth.GithubOAuth).ProviderID)
}

func mustUser(t *testing.T, svc *auth.Service) uuid.UUID {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), auth.PartialEmailPassword{Email: uuid.NewString() + "@example.com", Password: "correct horse"})
	require.NoError(t, err)
	return u.UID
}

func TestService_StoreFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := new(MockStore)
	store.On("WithTx", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	svc := auth.NewService(store)

	_, err := svc.Authenticate(ctx, auth.PartialGithubOAuth{ProviderID: 1, ProviderUsername: "x"})
	assert.ErrorIs(t, err, auth.ErrStoreFailure)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrStoreFailure)

	_, err = svc.Associate(ctx, auth.PartialGithubOAuth{ProviderID: 1, ProviderUsername: "x"}, uuid.New())
	assert.ErrorIs(t, err, auth.ErrStoreFailure)
	store.AssertExpectations(t)
}
