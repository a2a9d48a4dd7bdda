package oauth

import "context"

// ProviderIdentity is the account a provider vouched for after a code exchange.
type ProviderIdentity struct {
	AccountID int64
	Username  string
}

// ProviderExchanger turns an authorization code into a provider identity.
// Implementations return ErrIncorrectCode when the provider rejects the code.
type ProviderExchanger interface {
	Exchange(ctx context.Context, code string) (ProviderIdentity, error)
}

// Provider is a ProviderExchanger that can also build the authorize URL
// the user is redirected to.
type Provider interface {
	ProviderExchanger
	AuthCodeURL(state string, action Action) string
}
