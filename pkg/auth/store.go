package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the transactional persistence consumed by Service.
type Store interface {
	// WithTx runs fn inside one serializable transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the unit of work handed to WithTx callbacks. Methods return
// ErrRecordNotFound, ErrRecordConflict or ErrOwnerMissing for the
// corresponding conditions; any other error is treated as a store failure.
type Tx interface {
	InsertUser(ctx context.Context, uid uuid.UUID, now time.Time) error
	GetUser(ctx context.Context, uid uuid.UUID) (*User, error)

	// InsertCredential fails with ErrRecordConflict when the natural key is
	// taken and with ErrOwnerMissing when the owner does not exist.
	InsertCredential(ctx context.Context, c Credential) error
	GetCredential(ctx context.Context, kind Kind, cid uuid.UUID) (Credential, error)
	GetCredentialByOwner(ctx context.Context, kind Kind, uid uuid.UUID) (Credential, error)
	GetCredentialByKey(ctx context.Context, kind Kind, key string) (Credential, error)
	// UpdateCredential persists the mutable fields of c, matched by kind and cid.
	UpdateCredential(ctx context.Context, c Credential) error
	// DeleteCredential removes the credential matched by kind, owner and cid.
	DeleteCredential(ctx context.Context, kind Kind, uid, cid uuid.UUID) error

	GetLookup(ctx context.Context, uid uuid.UUID) (*CredentialLookup, error)
	// LockLookup reads the lookup row and holds it for the rest of the
	// transaction.
	LockLookup(ctx context.Context, uid uuid.UUID) (*CredentialLookup, error)
	// UpsertLookupSlot inserts the lookup row if absent and sets exactly the
	// slot for kind, leaving other slots untouched.
	UpsertLookupSlot(ctx context.Context, uid uuid.UUID, kind Kind, cid uuid.UUID) error
	// ClearLookupSlot nulls the slot for kind only if it still holds cid.
	ClearLookupSlot(ctx context.Context, uid uuid.UUID, kind Kind, cid uuid.UUID) error
}

// withTx runs fn in a store transaction and maps whatever escapes it onto the
// domain errors, so driver failures surface as ErrStoreFailure.
func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return storeError(s.store.WithTx(ctx, fn), ErrNotFound)
}
