package password

// Config holds argon2id cost parameters. Defaults match the argon2 reference
// recommendation of 19 MiB memory, two passes and one lane.
type Config struct {
	Time       uint32 `env:"PASSWORD_ARGON2_TIME" envDefault:"2"`
	MemoryKiB  uint32 `env:"PASSWORD_ARGON2_MEMORY_KIB" envDefault:"19456"`
	Threads    uint8  `env:"PASSWORD_ARGON2_THREADS" envDefault:"1"`
	KeyLength  uint32 `env:"PASSWORD_ARGON2_KEY_LENGTH" envDefault:"32"`
	SaltLength uint32 `env:"PASSWORD_ARGON2_SALT_LENGTH" envDefault:"16"`
}

// DefaultConfig returns the parameters used when no configuration is loaded.
func DefaultConfig() Config {
	return Config{
		Time:       2,
		MemoryKiB:  19 * 1024,
		Threads:    1,
		KeyLength:  32,
		SaltLength: 16,
	}
}
