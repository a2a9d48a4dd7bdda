package oauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStateTTL is how long an issued state token stays redeemable.
const DefaultStateTTL = 10 * time.Minute

// StateStore keeps issued CSRF state tokens until their callback arrives.
// A token is redeemable at most once.
type StateStore interface {
	// Save records state as issued for action. It fails if state already exists.
	Save(ctx context.Context, state string, action Action) error
	// Consume removes state and returns the action it was issued for, or
	// ErrInvalidState when it is unknown or expired.
	Consume(ctx context.Context, state string) (Action, error)
}

// RedisStateStore keeps state tokens in Redis with a TTL.
type RedisStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisStateStore creates a StateStore over client. A non-positive ttl
// falls back to DefaultStateTTL.
func NewRedisStateStore(client redis.UniversalClient, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl, prefix: "credkit:oauth:state:"}
}

func (s *RedisStateStore) Save(ctx context.Context, state string, action Action) error {
	ok, err := s.client.SetNX(ctx, s.prefix+state, string(action), s.ttl).Result()
	if err != nil {
		return errors.Join(ErrStateStoreFailure, err)
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (Action, error) {
	val, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", errors.Join(ErrStateStoreFailure, err)
	}
	return Action(val), nil
}

// MemoryStateStore is a process-local StateStore for tests and single-node setups.
type MemoryStateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]memoryState
}

type memoryState struct {
	action  Action
	expires time.Time
}

// NewMemoryStateStore creates an empty in-memory StateStore.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStateStore{ttl: ttl, now: time.Now, states: make(map[string]memoryState)}
}

func (s *MemoryStateStore) Save(_ context.Context, state string, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if _, ok := s.states[state]; ok {
		return ErrInvalidState
	}
	s.states[state] = memoryState{action: action, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[state]
	delete(s.states, state)
	if !ok || !s.now().Before(st.expires) {
		return "", ErrInvalidState
	}
	return st.action, nil
}

// sweep drops expired entries. Called with mu held.
func (s *MemoryStateStore) sweep(now time.Time) {
	for k, st := range s.states {
		if !now.Before(st.expires) {
			delete(s.states, k)
		}
	}
}
