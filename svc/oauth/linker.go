package oauth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/statemachine"
)

// Accounts is the part of *auth.Service the linker drives.
type Accounts interface {
	Guard(ctx context.Context, mode auth.GuardMode, identity string) (auth.Principal, error)
	CreateUser(ctx context.Context, p auth.Partial) (*auth.User, error)
	AuthenticateUser(ctx context.Context, p auth.Partial) (*auth.User, error)
	Associate(ctx context.Context, p auth.Partial, owner uuid.UUID) (auth.Credential, error)
	Authenticate(ctx context.Context, p auth.Partial) (auth.Credential, error)
	Delete(ctx context.Context, c auth.Credential) error
}

var _ Accounts = (*auth.Service)(nil)

// State is a step of the callback flow.
type State string

const (
	StateCallback      State = "callback"
	StateAuthenticated State = "authenticated"
	StateRegistered    State = "registered"
	StateAssociated    State = "associated"
	StateRemoved       State = "removed"
)

// CallbackRequest is what the provider redirect carries back.
type CallbackRequest struct {
	Code   string
	State  string
	Action string
}

// Outcome is the result of a completed callback.
// Credential is nil for authenticate and register.
type Outcome struct {
	Action     Action
	State      State
	User       *auth.User
	Credential auth.Credential
}

// Linker runs the OAuth linking protocol against a provider.
type Linker struct {
	accounts Accounts
	provider Provider
	states   StateStore
	logger   *slog.Logger
}

type LinkerOption func(*Linker)

// WithLogger sets the logger used for flow events.
func WithLogger(l *slog.Logger) LinkerOption {
	return func(k *Linker) {
		if l != nil {
			k.logger = l
		}
	}
}

// NewLinker creates a Linker.
func NewLinker(accounts Accounts, provider Provider, states StateStore, opts ...LinkerOption) *Linker {
	l := &Linker{
		accounts: accounts,
		provider: provider,
		states:   states,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AuthURL issues a one-time state token bound to action and returns the
// provider URL to redirect the user to.
func (l *Linker) AuthURL(ctx context.Context, action Action) (string, error) {
	if _, err := ParseAction(action.String()); err != nil {
		return "", err
	}
	state := rand.Text()
	if err := l.states.Save(ctx, state, action); err != nil {
		return "", err
	}
	return l.provider.AuthCodeURL(state, action), nil
}

// flow is the data threaded through one callback.
type flow struct {
	req       CallbackRequest
	action    Action
	identity  string
	principal auth.Principal
	account   ProviderIdentity
	outcome   *Outcome
}

type step = statemachine.Action[State, Action, *flow]

// Callback completes the flow started by AuthURL. identity is the caller's
// session identity, or "" when anonymous.
func (l *Linker) Callback(ctx context.Context, req CallbackRequest, identity string) (*Outcome, error) {
	action, err := ParseAction(req.Action)
	if err != nil {
		return nil, err
	}

	m, err := l.machine()
	if err != nil {
		return nil, err
	}

	f := &flow{req: req, action: action, identity: identity}
	if err := m.Fire(ctx, action, f); err != nil {
		l.logger.DebugContext(ctx, "oauth callback failed",
			logger.Action(action.String()),
			logger.Component("oauth"),
			logger.Error(err),
		)
		return nil, err
	}

	f.outcome.Action = action
	f.outcome.State = m.Current()
	l.logger.InfoContext(ctx, "oauth callback completed",
		logger.Action(action.String()),
		logger.UserID(f.outcome.User.UID.String()),
		logger.Component("oauth"),
	)
	return f.outcome, nil
}

func (l *Linker) machine() (*statemachine.Machine[State, Action, *flow], error) {
	through := func(apply step) statemachine.TransitionOption[State, Action, *flow] {
		return statemachine.WithActions(l.precondition, l.consumeState, l.exchange, apply)
	}
	return statemachine.New(StateCallback,
		statemachine.WithTransition(StateCallback, StateAuthenticated, ActionAuthenticate, through(l.createUser)),
		statemachine.WithTransition(StateCallback, StateRegistered, ActionRegister, through(l.signIn)),
		statemachine.WithTransition(StateCallback, StateAssociated, ActionAssociate, through(l.associate)),
		statemachine.WithTransition(StateCallback, StateRemoved, ActionRemove, through(l.remove)),
	)
}

func (l *Linker) precondition(ctx context.Context, _, _ State, action Action, f *flow) error {
	p, err := l.accounts.Guard(ctx, action.GuardMode(), f.identity)
	if err != nil {
		return err
	}
	f.principal = p
	return nil
}

func (l *Linker) consumeState(ctx context.Context, _, _ State, action Action, f *flow) error {
	if f.req.State == "" {
		return ErrInvalidState
	}
	issued, err := l.states.Consume(ctx, f.req.State)
	if err != nil {
		return err
	}
	if issued != action {
		return fmt.Errorf("%w: issued for %s", ErrInvalidState, issued)
	}
	return nil
}

func (l *Linker) exchange(ctx context.Context, _, _ State, _ Action, f *flow) error {
	if f.req.Code == "" {
		return ErrIncorrectCode
	}
	id, err := l.provider.Exchange(ctx, f.req.Code)
	switch {
	case err == nil:
	case errors.Is(err, ErrIncorrectCode), errors.Is(err, ErrProviderFailure):
		return err
	default:
		return errors.Join(ErrIncorrectCode, err)
	}
	f.account = id
	return nil
}

func (f *flow) partial() auth.PartialGithubOAuth {
	return auth.PartialGithubOAuth{ProviderID: f.account.AccountID, ProviderUsername: f.account.Username}
}

func (l *Linker) createUser(ctx context.Context, _, _ State, _ Action, f *flow) error {
	user, err := l.accounts.CreateUser(ctx, f.partial())
	if err != nil {
		return err
	}
	f.outcome = &Outcome{User: user}
	return nil
}

func (l *Linker) signIn(ctx context.Context, _, _ State, _ Action, f *flow) error {
	user, err := l.accounts.AuthenticateUser(ctx, f.partial())
	if err != nil {
		return err
	}
	f.outcome = &Outcome{User: user}
	return nil
}

func (l *Linker) associate(ctx context.Context, _, _ State, _ Action, f *flow) error {
	c, err := l.accounts.Associate(ctx, f.partial(), f.principal.User.UID)
	if err != nil {
		return err
	}
	f.outcome = &Outcome{User: f.principal.User, Credential: c}
	return nil
}

func (l *Linker) remove(ctx context.Context, _, _ State, _ Action, f *flow) error {
	c, err := l.accounts.Authenticate(ctx, f.partial())
	if err != nil {
		return err
	}
	if auth.MetaOf(c).UID != f.principal.User.UID {
		return fmt.Errorf("%w: provider account belongs to another user", auth.ErrCredentialIncorrect)
	}
	if err := l.accounts.Delete(ctx, c); err != nil {
		return err
	}
	f.outcome = &Outcome{User: f.principal.User, Credential: c}
	return nil
}
