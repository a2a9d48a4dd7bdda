package totp

import "errors"

// Secret handling.
var (
	ErrMissingSecret    = errors.New("missing secret")
	ErrInvalidSecret    = errors.New("invalid secret")
	ErrSecretGeneration = errors.New("failed to generate TOTP secret key")
)

// Encryption at rest.
var (
	ErrEncryptionKeyNotSet        = errors.New("TOTP encryption key not set")
	ErrInvalidEncryptionKeyLength = errors.New("invalid encryption key length")
	ErrKeyGeneration              = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey  = errors.New("failed to load encryption key")
	ErrFailedToEncryptSecret      = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret      = errors.New("failed to decrypt TOTP secret")
	ErrCipherTooShort             = errors.New("cipher text too short")
)

// Provisioning URIs.
var (
	ErrMissingAccountName = errors.New("missing account name")
	ErrMissingIssuer      = errors.New("missing issuer")
)
