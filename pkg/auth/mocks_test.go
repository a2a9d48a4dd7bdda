package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/auth/memstore"
	"github.com/dmitrymomot/credkit/pkg/password"
)

// MockPasswordHasher is a mock implementation of PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(plain, encoded string) (bool, error) {
	args := m.Called(plain, encoded)
	return args.Bool(0), args.Error(1)
}

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx auth.Tx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestService returns a service over a fresh memstore with a cheap hasher
// and a controllable clock.
func newTestService(t *testing.T, opts ...auth.Option) (*auth.Service, *memstore.Store, *clock) {
	t.Helper()

	store := memstore.New()
	clk := &clock{now: testNow}
	base := []auth.Option{
		auth.WithPasswordHasher(password.NewHasher(password.Config{Time: 1, MemoryKiB: 64, Threads: 1})),
		auth.WithClock(clk.Now),
	}
	return auth.NewService(store, append(base, opts...)...), store, clk
}
