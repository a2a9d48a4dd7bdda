package password

import "errors"

var (
	ErrInvalidHash         = errors.New("password: invalid encoded hash")
	ErrIncompatibleVersion = errors.New("password: incompatible argon2 version")
	ErrSaltGeneration      = errors.New("password: failed to generate salt")
)
