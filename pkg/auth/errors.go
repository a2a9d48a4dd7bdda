package auth

import (
	"errors"
	"fmt"
)

// Domain errors returned by Service. Callers match them with errors.Is.
var (
	// ErrNotFound covers both an unknown natural key and a secret mismatch.
	ErrNotFound               = errors.New("auth: not found")
	ErrExists                 = errors.New("auth: already exists")
	ErrInvalid                = errors.New("auth: invalid input")
	ErrCredentialDisabled     = errors.New("auth: credential disabled")
	ErrCredentialCannotDelete = errors.New("auth: cannot delete the last credential")
	ErrCredentialAssociated   = errors.New("auth: credential kind already associated")
	ErrCredentialIncorrect    = errors.New("auth: incorrect credential")
	ErrUserAuthenticated      = errors.New("auth: user already authenticated")
	ErrUserNotAuthenticated   = fmt.Errorf("%w: user not authenticated", ErrCredentialIncorrect)
	ErrHashFailure            = errors.New("auth: password hash failure")
	ErrStoreFailure           = errors.New("auth: store failure")
)

// Store contract errors. Store implementations return these and Service
// translates them; they never escape the package boundary on their own.
var (
	ErrRecordNotFound = errors.New("store: record not found")
	ErrRecordConflict = errors.New("store: unique constraint violation")
	ErrOwnerMissing   = errors.New("store: owner does not exist")
)

// storeError maps a store error onto the domain taxonomy.
// notFound is returned in place of ErrRecordNotFound.
func storeError(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRecordNotFound):
		return notFound
	case errors.Is(err, ErrRecordConflict):
		return ErrExists
	case errors.Is(err, ErrOwnerMissing):
		return ErrNotFound
	case isDomainError(err):
		return err
	default:
		return errors.Join(ErrStoreFailure, err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrExists, ErrInvalid, ErrCredentialDisabled,
		ErrCredentialCannotDelete, ErrCredentialAssociated, ErrCredentialIncorrect,
		ErrUserAuthenticated, ErrHashFailure, ErrStoreFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
