// Package memstore is an in-memory auth.Store. Transactions are serialized
// behind one mutex and work on a copy of the data that replaces the
// committed state only when the callback succeeds, which gives serializable
// isolation with full rollback.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/auth"
)

type credKey struct {
	kind auth.Kind
	cid  uuid.UUID
}

type naturalKey struct {
	kind auth.Kind
	key  string
}

type state struct {
	users   map[uuid.UUID]time.Time
	creds   map[credKey]auth.Credential
	byKey   map[naturalKey]uuid.UUID
	lookups map[uuid.UUID]auth.CredentialLookup
}

func (s *state) clone() *state {
	return &state{
		users:   maps.Clone(s.users),
		creds:   maps.Clone(s.creds),
		byKey:   maps.Clone(s.byKey),
		lookups: maps.Clone(s.lookups),
	}
}

// Store keeps users, credentials and lookups in memory.
type Store struct {
	mu   sync.Mutex
	data *state
}

var _ auth.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: &state{
		users:   make(map[uuid.UUID]time.Time),
		creds:   make(map[credKey]auth.Credential),
		byKey:   make(map[naturalKey]uuid.UUID),
		lookups: make(map[uuid.UUID]auth.CredentialLookup),
	}}
}

// WithTx implements auth.Store.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx auth.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{data: s.data.clone()}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = t.data
	return nil
}

// Stored credential values are never mutated in place: updates replace the
// map entry with a fresh copy, so shallow map clones are enough for rollback.
type tx struct {
	data *state
}

func (t *tx) InsertUser(_ context.Context, uid uuid.UUID, now time.Time) error {
	if _, ok := t.data.users[uid]; ok {
		return auth.ErrRecordConflict
	}
	t.data.users[uid] = now
	return nil
}

func (t *tx) GetUser(_ context.Context, uid uuid.UUID) (*auth.User, error) {
	if _, ok := t.data.users[uid]; !ok {
		return nil, auth.ErrRecordNotFound
	}
	return &auth.User{UID: uid}, nil
}

func (t *tx) InsertCredential(_ context.Context, c auth.Credential) error {
	m := auth.MetaOf(c)
	if _, ok := t.data.users[m.UID]; !ok {
		return auth.ErrOwnerMissing
	}
	ck := credKey{kind: c.Kind(), cid: m.CID}
	nk := naturalKey{kind: c.Kind(), key: c.NaturalKey()}
	if _, ok := t.data.creds[ck]; ok {
		return auth.ErrRecordConflict
	}
	if _, ok := t.data.byKey[nk]; ok {
		return auth.ErrRecordConflict
	}
	t.data.creds[ck] = auth.CloneCredential(c)
	t.data.byKey[nk] = m.CID
	return nil
}

func (t *tx) GetCredential(_ context.Context, kind auth.Kind, cid uuid.UUID) (auth.Credential, error) {
	c, ok := t.data.creds[credKey{kind: kind, cid: cid}]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return auth.CloneCredential(c), nil
}

func (t *tx) GetCredentialByOwner(_ context.Context, kind auth.Kind, uid uuid.UUID) (auth.Credential, error) {
	for k, c := range t.data.creds {
		if k.kind == kind && auth.MetaOf(c).UID == uid {
			return auth.CloneCredential(c), nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (t *tx) GetCredentialByKey(ctx context.Context, kind auth.Kind, key string) (auth.Credential, error) {
	cid, ok := t.data.byKey[naturalKey{kind: kind, key: key}]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return t.GetCredential(ctx, kind, cid)
}

func (t *tx) UpdateCredential(_ context.Context, c auth.Credential) error {
	ck := credKey{kind: c.Kind(), cid: auth.MetaOf(c).CID}
	if _, ok := t.data.creds[ck]; !ok {
		return auth.ErrRecordNotFound
	}
	t.data.creds[ck] = auth.CloneCredential(c)
	return nil
}

func (t *tx) DeleteCredential(_ context.Context, kind auth.Kind, uid, cid uuid.UUID) error {
	ck := credKey{kind: kind, cid: cid}
	c, ok := t.data.creds[ck]
	if !ok || auth.MetaOf(c).UID != uid {
		return auth.ErrRecordNotFound
	}
	delete(t.data.creds, ck)
	delete(t.data.byKey, naturalKey{kind: kind, key: c.NaturalKey()})
	return nil
}

func (t *tx) GetLookup(_ context.Context, uid uuid.UUID) (*auth.CredentialLookup, error) {
	l, ok := t.data.lookups[uid]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return &l, nil
}

// LockLookup needs no extra locking: the whole transaction holds the store mutex.
func (t *tx) LockLookup(ctx context.Context, uid uuid.UUID) (*auth.CredentialLookup, error) {
	return t.GetLookup(ctx, uid)
}

func (t *tx) UpsertLookupSlot(_ context.Context, uid uuid.UUID, kind auth.Kind, cid uuid.UUID) error {
	if _, ok := t.data.users[uid]; !ok {
		return auth.ErrOwnerMissing
	}
	l, ok := t.data.lookups[uid]
	if !ok {
		l = auth.CredentialLookup{UID: uid}
	}
	l.SetSlot(kind, cid)
	t.data.lookups[uid] = l
	return nil
}

func (t *tx) ClearLookupSlot(_ context.Context, uid uuid.UUID, kind auth.Kind, cid uuid.UUID) error {
	l, ok := t.data.lookups[uid]
	if !ok {
		return nil
	}
	l.ClearSlot(kind, cid)
	t.data.lookups[uid] = l
	return nil
}
