package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("joins field messages", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		errs.Add(validator.ValidationError{Field: "password", Message: "too short"})
		assert.Equal(t, "validation failed: email: is required; password: too short", errs.Error())
	})
}

func TestValidationErrors_Accessors(t *testing.T) {
	t.Parallel()

	errs := validator.ValidationErrors{
		{Field: "password", Message: "too short"},
		{Field: "email", Message: "invalid"},
		{Field: "password", Message: "too common"},
	}

	assert.True(t, errs.Has("email"))
	assert.False(t, errs.Has("username"))
	assert.Equal(t, []string{"too short", "too common"}, errs.Get("password"))
	assert.Equal(t, []string{"password", "email"}, errs.Fields())
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("nil when all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", "x"),
			validator.MinLenString("name", "xyz", 2),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", " "),
			validator.MinLenString("password", "abc", 8),
			validator.MaxLenString("password", "abc", 2),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 3)
		assert.Equal(t, []string{"name", "password"}, errs.Fields())
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	base := validator.ValidationErrors{{Field: "f", Message: "m"}}
	wrapped := fmt.Errorf("outer: %w", base)

	assert.True(t, validator.IsValidationError(wrapped))
	assert.Equal(t, base, validator.ExtractValidationErrors(wrapped))

	plain := errors.New("plain")
	assert.False(t, validator.IsValidationError(plain))
	assert.Nil(t, validator.ExtractValidationErrors(plain))
	assert.Nil(t, validator.ExtractValidationErrors(nil))
}
