package totp_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/credkit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rfcKey = []byte("12345678901234567890")

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	t.Run("honours the minimum size", func(t *testing.T) {
		t.Parallel()
		secret, err := totp.GenerateSecret(16)
		require.NoError(t, err)
		assert.Len(t, secret, totp.MinSecretSize)
	})

	t.Run("larger sizes are kept", func(t *testing.T) {
		t.Parallel()
		secret, err := totp.GenerateSecret(256)
		require.NoError(t, err)
		assert.Len(t, secret, 256)
	})
}

func TestSecretBase32RoundTrip(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret(totp.MinSecretSize)
	require.NoError(t, err)

	encoded := totp.SecretToBase32(secret)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, encoded)

	decoded, err := totp.SecretFromBase32(encoded)
	require.NoError(t, err)
	assert.Equal(t, secret, decoded)

	_, err = totp.SecretFromBase32("not base32!")
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
}

func TestGetTOTPURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.TOTPParams
		want    string
		wantErr error
	}{
		{
			name: "Basic URI",
			params: totp.TOTPParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
				Issuer:      "TestApp",
			},
			want: "otpauth://totp/TestApp:test@example.com?algorithm=SHA1&digits=6&issuer=TestApp&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "URI with special characters",
			params: totp.TOTPParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test+user@example.com",
				Issuer:      "Test & App",
				Algorithm:   "SHA1",
				Digits:      6,
				Period:      30,
			},
			want: "otpauth://totp/Test%20&%20App:test+user@example.com?algorithm=SHA1&digits=6&issuer=Test+%26+App&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name:    "Missing secret",
			params:  totp.TOTPParams{AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "Lowercase secret",
			params:  totp.TOTPParams{Secret: "abc", AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name:    "Missing issuer",
			params:  totp.TOTPParams{Secret: "ABC", AccountName: "a"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.GetTOTPURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateHOTP_RFC4226Vectors(t *testing.T) {
	t.Parallel()

	want := []int{755224, 287082, 359152, 969429, 338314, 254676, 287922, 162583, 399871, 520489}
	for counter, code := range want {
		assert.Equal(t, code, totp.GenerateHOTP(rfcKey, int64(counter), 6), "counter %d", counter)
	}
}

func TestGenerateCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix int64
		want string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, totp.GenerateCode(rfcKey, time.Unix(tt.unix, 0), 8, 30))
		assert.Equal(t, tt.want[2:], totp.GenerateCode(rfcKey, time.Unix(tt.unix, 0), 6, 30))
	}
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret(totp.MinSecretSize)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	checker := totp.NewChecker(totp.DefaultCheckerConfig())
	code := func(at time.Time) string { return totp.GenerateCode(secret, at, 6, 30) }

	tests := []struct {
		name string
		code string
		want bool
	}{
		{"current step", code(now), true},
		{"previous step", code(now.Add(-30 * time.Second)), true},
		{"next step", code(now.Add(30 * time.Second)), true},
		{"outside skew", code(now.Add(-90 * time.Second)), false},
		{"surrounding whitespace", " " + code(now) + " ", true},
		{"wrong length", "12345", false},
		{"non digits", "12a456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, checker.Check(secret, tt.code, now))
		})
	}

	t.Run("empty secret never matches", func(t *testing.T) {
		t.Parallel()
		assert.False(t, checker.Check(nil, code(now), now))
	})

	t.Run("zero skew accepts only the current step", func(t *testing.T) {
		t.Parallel()
		strict := totp.NewChecker(totp.CheckerConfig{Digits: 6, Period: 30, Skew: 0})
		assert.True(t, strict.Check(secret, code(now), now))
		assert.False(t, strict.Check(secret, code(now.Add(-30*time.Second)), now))
	})
}
