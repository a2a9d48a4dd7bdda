// Package oauth links third-party provider accounts to credkit users.
//
// A flow starts with Linker.AuthURL, which binds a one-time state token to
// one of four actions and returns the provider authorize URL. The provider
// redirects back to the callback, where Linker.Callback checks the caller's
// session against the action, redeems the state, exchanges the code and
// applies the action:
//
//	authenticate  create a user from an unlinked provider account
//	register      sign in with an already linked provider account
//	associate     link the provider account to the signed-in user
//	remove        unlink the provider account from the signed-in user
//
// State tokens are kept by a StateStore. RedisStateStore is meant for
// production, MemoryStateStore for tests and single-process deployments.
package oauth
