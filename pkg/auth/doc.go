// Package auth is the identity and credential core of credkit. A user is an
// opaque identifier reached through one or more credentials, and the package
// keeps the mapping between the two consistent under concurrent requests.
//
// # Credential Kinds
//
// Four kinds are supported. Each stored kind has a matching partial type
// carrying unauthenticated input:
//
//   - EmailPassword / PartialEmailPassword: email address plus argon2id password hash
//   - UsernamePassword / PartialUsernamePassword: case-insensitive username plus password hash
//   - GithubOAuth / PartialGithubOAuth: GitHub account id and login, produced by a code exchange
//   - TOTPMethod / PartialTOTP: RFC 6238 second factor, one per user
//
// The first three are exclusive: a user holds at most one of each, recorded
// in its CredentialLookup. TOTP is additive and never counted there.
//
// # Usage
//
//	svc := auth.NewService(pgstore.New(pool),
//		auth.WithLogger(log),
//		auth.WithPasswordHasher(password.NewHasher(cfg.Password)),
//	)
//
//	// First credential creates the user.
//	user, err := svc.CreateUser(ctx, auth.PartialEmailPassword{Email: "a@b.com", Password: "secret-pw"})
//
//	// Later logins.
//	user, err = svc.AuthenticateUser(ctx, auth.PartialEmailPassword{Email: "a@b.com", Password: "secret-pw"})
//
//	// Link another kind.
//	_, err = svc.Associate(ctx, auth.PartialUsernamePassword{Username: "alice", Password: "pw-2-long"}, user.UID)
//
// # Consistency
//
// Every mutation runs inside Store.WithTx. Associate inserts the credential row
// and upserts the lookup slot in one transaction; Delete locks the lookup row,
// refuses to remove the last exclusive credential and clears the slot. Natural
// key uniqueness is left to the store, which reports ErrRecordConflict.
//
// # Errors
//
// All failures are reported as the sentinel errors in errors.go. Unknown keys
// and wrong secrets both produce ErrNotFound so callers cannot enumerate
// accounts.
//
// # Guard
//
// Service.Guard turns the identity asserted by the session layer into a
// Principal for one of three modes: Denied (anonymous only), Allowed
// (optional user) and Required (existing user only).
package auth
