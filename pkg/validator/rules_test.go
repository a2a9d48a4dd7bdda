package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/credkit/pkg/validator"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"plain", false},
		{"@example.com", false},
		{"user@localhost", false},
		{"user@example..com", false},
		{"Bob <bob@example.com>", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, validator.ValidEmail("email", tt.value).Check())
		})
	}
}

func TestValidUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"alice", true},
		{"a.b_c-d", true},
		{"bo", false},
		{"Alice", false},
		{"has space", false},
		{"this-username-is-way-too-long-to-be-accepted", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, validator.ValidUsername("username", tt.value, 3, 39).Check())
		})
	}
}

func TestStringLengthRules(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.MinLenString("f", "ünï", 3).Check())
	assert.False(t, validator.MinLenString("f", "ab", 3).Check())
	assert.True(t, validator.MaxLenString("f", "ünïcode", 7).Check())
	assert.False(t, validator.MaxLenString("f", "abcd", 3).Check())

	rule := validator.MinLenString("password", "", 8)
	assert.Equal(t, "password", rule.Error.Field)
	assert.Equal(t, "validation.min_length", rule.Error.TranslationKey)
	assert.Equal(t, 8, rule.Error.TranslationValues["min"])
}

func TestValidOTP(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.ValidOTP("code", "012345", 6).Check())
	assert.False(t, validator.ValidOTP("code", "12345", 6).Check())
	assert.False(t, validator.ValidOTP("code", "12a456", 6).Check())
	assert.False(t, validator.ValidOTP("code", "", 0).Check())
}
