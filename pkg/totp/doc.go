// Package totp implements RFC 6238 time-based one-time passwords over raw
// byte secrets.
//
// Checker validates codes with a configurable digit count, step and skew:
//
//	checker := totp.NewChecker(totp.DefaultCheckerConfig())
//	ok := checker.Check(secret, "123456", time.Now())
//
// GenerateSecret, SecretToBase32 and GetTOTPURI cover enrollment: the base32
// form and the otpauth:// URI are what authenticator apps consume.
//
// EncryptSecret and DecryptSecret seal secrets with AES-256-GCM for storage.
// The key is read from TOTP_ENCRYPTION_KEY as base64; cmd/totpkey prints a
// fresh one.
//
// Checks are stateless. A code is accepted for every step inside the skew
// window, including after it has already been used once.
package totp
