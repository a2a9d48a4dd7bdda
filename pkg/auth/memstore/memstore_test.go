package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/auth/memstore"
)

func emailCred(uid uuid.UUID, email string) *auth.EmailPassword {
	return &auth.EmailPassword{
		Meta:  auth.Meta{CID: uuid.New(), UID: uid},
		Email: email,
	}
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	uid := uuid.New()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		require.NoError(t, tx.InsertUser(ctx, uid, time.Now()))
		require.NoError(t, tx.InsertCredential(ctx, emailCred(uid, "a@example.com")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		_, err := tx.GetUser(ctx, uid)
		assert.ErrorIs(t, err, auth.ErrRecordNotFound)
		_, err = tx.GetCredentialByKey(ctx, auth.KindEmailPassword, "a@example.com")
		assert.ErrorIs(t, err, auth.ErrRecordNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Constraints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	uid := uuid.New()

	err := s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		assert.ErrorIs(t, tx.InsertCredential(ctx, emailCred(uid, "a@example.com")), auth.ErrOwnerMissing)
		assert.ErrorIs(t, tx.UpsertLookupSlot(ctx, uid, auth.KindEmailPassword, uuid.New()), auth.ErrOwnerMissing)

		require.NoError(t, tx.InsertUser(ctx, uid, time.Now()))
		assert.ErrorIs(t, tx.InsertUser(ctx, uid, time.Now()), auth.ErrRecordConflict)

		c := emailCred(uid, "a@example.com")
		require.NoError(t, tx.InsertCredential(ctx, c))
		assert.ErrorIs(t, tx.InsertCredential(ctx, emailCred(uid, "a@example.com")), auth.ErrRecordConflict)

		assert.ErrorIs(t, tx.DeleteCredential(ctx, auth.KindEmailPassword, uid, uuid.New()), auth.ErrRecordNotFound)
		assert.ErrorIs(t, tx.UpdateCredential(ctx, emailCred(uid, "b@example.com")), auth.ErrRecordNotFound)
		assert.ErrorIs(t, tx.DeleteCredential(ctx, auth.KindEmailPassword, uuid.New(), c.CID), auth.ErrRecordNotFound)
		require.NoError(t, tx.DeleteCredential(ctx, auth.KindEmailPassword, uid, c.CID))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	uid := uuid.New()
	c := emailCred(uid, "a@example.com")

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		if err := tx.InsertUser(ctx, uid, time.Now()); err != nil {
			return err
		}
		return tx.InsertCredential(ctx, c)
	}))

	c.Disabled = true

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		got, err := tx.GetCredential(ctx, auth.KindEmailPassword, c.CID)
		require.NoError(t, err)
		assert.False(t, auth.MetaOf(got).Disabled)

		got.(*auth.EmailPassword).Verified = true
		again, err := tx.GetCredentialByOwner(ctx, auth.KindEmailPassword, uid)
		require.NoError(t, err)
		assert.False(t, auth.MetaOf(again).Verified)
		return nil
	}))
}

func TestStore_LookupSlots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	uid := uuid.New()
	cid := uuid.New()

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx auth.Tx) error {
		require.NoError(t, tx.InsertUser(ctx, uid, time.Now()))

		_, err := tx.LockLookup(ctx, uid)
		assert.ErrorIs(t, err, auth.ErrRecordNotFound)
		assert.NoError(t, tx.ClearLookupSlot(ctx, uid, auth.KindEmailPassword, cid))

		require.NoError(t, tx.UpsertLookupSlot(ctx, uid, auth.KindEmailPassword, cid))
		require.NoError(t, tx.UpsertLookupSlot(ctx, uid, auth.KindGithubOAuth, uuid.New()))

		l, err := tx.GetLookup(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, 2, l.Count())

		require.NoError(t, tx.ClearLookupSlot(ctx, uid, auth.KindEmailPassword, cid))
		l, err = tx.LockLookup(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, 1, l.Count())
		return nil
	}))
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memstore.New().WithTx(ctx, func(context.Context, auth.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
