package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/password"
	"github.com/dmitrymomot/credkit/pkg/totp"
)

// PasswordHasher hashes and verifies passwords with a memory-hard,
// randomly salted algorithm.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// TOTPChecker validates a time-based one-time code against a secret.
type TOTPChecker interface {
	Check(secret []byte, code string, now time.Time) bool
}

// Service implements the credential, user and guard operations on top of a Store.
type Service struct {
	store      Store
	hasher     PasswordHasher
	totp       TOTPChecker
	now        func() time.Time
	logger     *slog.Logger
	secretSize int

	dummyMu   sync.Mutex
	dummyHash string
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPasswordHasher replaces the default argon2id hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithTOTPChecker replaces the default RFC 6238 checker.
func WithTOTPChecker(c TOTPChecker) Option {
	return func(s *Service) {
		if c != nil {
			s.totp = c
		}
	}
}

// WithClock sets the time source used for credential timestamps and TOTP checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTOTPSecretSize sets the size in bytes of generated TOTP secrets.
// Values below totp.MinSecretSize are ignored.
func WithTOTPSecretSize(n int) Option {
	return func(s *Service) {
		if n >= totp.MinSecretSize {
			s.secretSize = n
		}
	}
}

// NewService creates a credential service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		hasher:     password.NewHasher(password.DefaultConfig()),
		totp:       totp.NewChecker(totp.DefaultCheckerConfig()),
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		secretSize: totp.MinSecretSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate matches p against a stored credential, rejects disabled rows
// and records the authentication time. An unknown key and a wrong secret
// both yield ErrNotFound.
func (s *Service) Authenticate(ctx context.Context, p Partial) (Credential, error) {
	var out Credential
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		c, err := s.match(ctx, tx, p)
		if err != nil {
			return err
		}
		m := c.meta()
		if m.Disabled {
			return ErrCredentialDisabled
		}
		m.LastAuthentication = s.now().UTC()
		if err := tx.UpdateCredential(ctx, c); err != nil {
			return storeError(err, ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "authenticate", p.Kind(), err)
	}
	return out, nil
}

// Associate creates a credential from p owned by owner and links it in the
// owner's lookup. It fails with ErrCredentialAssociated when the kind is
// already linked and with ErrExists when the natural key is taken.
func (s *Service) Associate(ctx context.Context, p Partial, owner uuid.UUID) (Credential, error) {
	c, err := s.prepare(p, owner)
	if err != nil {
		return nil, err
	}
	if err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		return s.associate(ctx, tx, c)
	}); err != nil {
		return nil, s.fail(ctx, "associate", p.Kind(), err)
	}

	s.logger.DebugContext(ctx, "credential associated",
		logger.UserID(owner.String()),
		logger.CredentialKind(c.Kind().String()),
		logger.Component("auth"),
	)
	return c, nil
}

func (s *Service) associate(ctx context.Context, tx Tx, c Credential) error {
	m := c.meta()
	kind := c.Kind()

	if kind.Exclusive() {
		lookup, err := tx.LockLookup(ctx, m.UID)
		switch {
		case err == nil:
			if _, ok := lookup.Slot(kind); ok {
				return ErrCredentialAssociated
			}
		case !errors.Is(err, ErrRecordNotFound):
			return storeError(err, ErrNotFound)
		}
	}

	if err := tx.InsertCredential(ctx, c); err != nil {
		return storeError(err, ErrNotFound)
	}

	if kind.Exclusive() {
		if err := tx.UpsertLookupSlot(ctx, m.UID, kind, m.CID); err != nil {
			return storeError(err, ErrNotFound)
		}
	}
	return nil
}

// GetByCID returns the credential of kind with id cid.
func (s *Service) GetByCID(ctx context.Context, kind Kind, cid uuid.UUID) (Credential, error) {
	return s.read(ctx, func(ctx context.Context, tx Tx) (Credential, error) {
		return tx.GetCredential(ctx, kind, cid)
	}, true)
}

// GetByOwner returns the credential of kind owned by uid.
func (s *Service) GetByOwner(ctx context.Context, kind Kind, uid uuid.UUID) (Credential, error) {
	return s.read(ctx, func(ctx context.Context, tx Tx) (Credential, error) {
		return tx.GetCredentialByOwner(ctx, kind, uid)
	}, true)
}

// GetByNaturalKey returns the credential of kind identified by key,
// including disabled rows. For TOTP the key is the owner uid.
func (s *Service) GetByNaturalKey(ctx context.Context, kind Kind, key string) (Credential, error) {
	key, err := normalizeKey(kind, key)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, func(ctx context.Context, tx Tx) (Credential, error) {
		return tx.GetCredentialByKey(ctx, kind, key)
	}, false)
}

func (s *Service) read(ctx context.Context, get func(context.Context, Tx) (Credential, error), enabledOnly bool) (Credential, error) {
	var out Credential
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		c, err := get(ctx, tx)
		if err != nil {
			return storeError(err, ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if enabledOnly && out.meta().Disabled {
		return nil, ErrCredentialDisabled
	}
	return out, nil
}

// SetDisabled persists the disabled flag of c and returns the stored row.
func (s *Service) SetDisabled(ctx context.Context, c Credential, disabled bool) (Credential, error) {
	return s.mutate(ctx, c, func(m *Meta) { m.Disabled = disabled })
}

// SetVerified persists the verified flag of c and returns the stored row.
func (s *Service) SetVerified(ctx context.Context, c Credential, verified bool) (Credential, error) {
	return s.mutate(ctx, c, func(m *Meta) { m.Verified = verified })
}

func (s *Service) mutate(ctx context.Context, c Credential, fn func(*Meta)) (Credential, error) {
	var out Credential
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		fresh, err := tx.GetCredential(ctx, c.Kind(), c.meta().CID)
		if err != nil {
			return storeError(err, ErrNotFound)
		}
		m := fresh.meta()
		fn(m)
		m.LastUpdate = s.now().UTC()
		if err := tx.UpdateCredential(ctx, fresh); err != nil {
			return storeError(err, ErrNotFound)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "update", c.Kind(), err)
	}
	return out, nil
}

// Delete removes c and clears its lookup slot. Ownership is taken from the
// stored row: a c whose owner does not match it fails with ErrNotFound.
// Deleting the only remaining exclusive credential of a user fails with
// ErrCredentialCannotDelete.
func (s *Service) Delete(ctx context.Context, c Credential) error {
	m := c.meta()
	kind := c.Kind()
	uid := m.UID

	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		stored, err := tx.GetCredential(ctx, kind, m.CID)
		if err != nil {
			return storeError(err, ErrNotFound)
		}
		if stored.meta().UID != uid {
			return ErrNotFound
		}

		if kind.Exclusive() {
			lookup, err := tx.LockLookup(ctx, uid)
			if err != nil {
				return storeError(err, ErrNotFound)
			}
			if !lookup.HasMultipleCredentials() {
				return ErrCredentialCannotDelete
			}
		}

		if err := tx.DeleteCredential(ctx, kind, uid, m.CID); err != nil {
			return storeError(err, ErrNotFound)
		}

		if kind.Exclusive() {
			if err := tx.ClearLookupSlot(ctx, uid, kind, m.CID); err != nil {
				return storeError(err, ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete", kind, err)
	}

	s.logger.DebugContext(ctx, "credential deleted",
		logger.UserID(uid.String()),
		logger.CredentialKind(kind.String()),
		logger.Component("auth"),
	)
	return nil
}

// Owner resolves the user that owns c.
func (s *Service) Owner(ctx context.Context, c Credential) (*User, error) {
	return s.GetUser(ctx, c.meta().UID)
}

// match finds the stored row for p and verifies its secret.
func (s *Service) match(ctx context.Context, tx Tx, p Partial) (Credential, error) {
	switch v := p.(type) {
	case PartialEmailPassword:
		return s.matchPassword(ctx, tx, KindEmailPassword, v.key(), v.Password)
	case PartialUsernamePassword:
		return s.matchPassword(ctx, tx, KindUsernamePassword, v.key(), v.Password)
	case PartialGithubOAuth:
		return s.matchGithub(ctx, tx, v)
	case PartialTOTP:
		return s.matchTOTP(ctx, tx, v)
	default:
		return nil, fmt.Errorf("%w: unsupported credential %T", ErrInvalid, p)
	}
}

// prepare validates p and builds the row to insert for owner.
// Password hashing happens here, outside any transaction.
func (s *Service) prepare(p Partial, owner uuid.UUID) (Credential, error) {
	now := s.now().UTC()
	switch v := p.(type) {
	case PartialEmailPassword:
		return s.newEmailPassword(v, owner, now)
	case PartialUsernamePassword:
		return s.newUsernamePassword(v, owner, now)
	case PartialGithubOAuth:
		return newGithubOAuth(v, owner, now)
	case PartialTOTP:
		return s.newTOTPMethod(v, owner, now)
	default:
		return nil, fmt.Errorf("%w: unsupported credential %T", ErrInvalid, p)
	}
}

func (s *Service) matchPassword(ctx context.Context, tx Tx, kind Kind, key, plain string) (Credential, error) {
	c, err := tx.GetCredentialByKey(ctx, kind, key)
	if errors.Is(err, ErrRecordNotFound) {
		// Spend the same hashing work as a real comparison.
		s.burnHash(ctx, plain)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}

	var encoded string
	switch v := c.(type) {
	case *EmailPassword:
		encoded = v.PasswordHash
	case *UsernamePassword:
		encoded = v.PasswordHash
	default:
		return nil, ErrNotFound
	}

	ok, err := s.hasher.Verify(plain, encoded)
	if err != nil {
		return nil, errors.Join(ErrHashFailure, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) hashPassword(plain string) (string, error) {
	h, err := s.hasher.Hash(plain)
	if err != nil {
		return "", errors.Join(ErrHashFailure, err)
	}
	return h, nil
}

// burnHash verifies plain against a throwaway hash. A failed dummy hash is
// logged and generated again on the next call.
func (s *Service) burnHash(ctx context.Context, plain string) {
	s.dummyMu.Lock()
	if s.dummyHash == "" {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.ErrorContext(ctx, "dummy password hash failed",
				logger.Error(err),
				logger.Component("auth"),
			)
		}
		s.dummyHash = h
	}
	hash := s.dummyHash
	s.dummyMu.Unlock()

	if hash != "" {
		_, _ = s.hasher.Verify(plain, hash)
	}
}

// fail logs unexpected failures and returns err unchanged.
func (s *Service) fail(ctx context.Context, op string, kind Kind, err error) error {
	if errors.Is(err, ErrStoreFailure) || errors.Is(err, ErrHashFailure) {
		s.logger.ErrorContext(ctx, "credential operation failed",
			slog.String("op", op),
			logger.CredentialKind(kind.String()),
			logger.Error(err),
			logger.Component("auth"),
		)
	}
	return err
}

func normalizeKey(kind Kind, key string) (string, error) {
	switch kind {
	case KindEmailPassword:
		return PartialEmailPassword{Email: key}.key(), nil
	case KindUsernamePassword:
		return PartialUsernamePassword{Username: key}.key(), nil
	case KindGithubOAuth:
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: malformed provider id", ErrInvalid)
		}
		return strconv.FormatInt(id, 10), nil
	case KindTOTP:
		uid, err := uuid.Parse(key)
		if err != nil {
			return "", fmt.Errorf("%w: malformed user id", ErrInvalid)
		}
		return uid.String(), nil
	default:
		return "", fmt.Errorf("%w: unknown credential kind %q", ErrInvalid, kind)
	}
}
