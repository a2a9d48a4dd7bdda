package oauth

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/credkit/pkg/auth"
)

// Action is what a provider callback does with the returned identity.
type Action string

// Authenticate creates a user from an unlinked provider account, and
// Register signs in with an already linked one.
const (
	ActionAuthenticate Action = "authenticate"
	ActionRegister     Action = "register"
	ActionAssociate    Action = "associate"
	ActionRemove       Action = "remove"
)

// Actions lists every supported action.
var Actions = []Action{ActionAuthenticate, ActionRegister, ActionAssociate, ActionRemove}

// ParseAction converts s to an Action, case-insensitively.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionAuthenticate, ActionRegister, ActionAssociate, ActionRemove:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

func (a Action) String() string { return string(a) }

// RequiresAuthentication reports whether the caller must already be signed in.
func (a Action) RequiresAuthentication() bool {
	return a == ActionAssociate || a == ActionRemove
}

// GuardMode is the guard the callback runs under for a.
func (a Action) GuardMode() auth.GuardMode {
	if a.RequiresAuthentication() {
		return auth.Required
	}
	return auth.Denied
}
