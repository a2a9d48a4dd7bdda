package totp

// Config is the process-level TOTP configuration.
type Config struct {
	// EncryptionKey is a base64-encoded 32 byte AES key. When empty, secrets
	// are stored unencrypted.
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`
	// Issuer is the service name shown in authenticator apps.
	Issuer  string `env:"TOTP_ISSUER" envDefault:"credkit"`
	Checker CheckerConfig
}
