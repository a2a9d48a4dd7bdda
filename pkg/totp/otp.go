package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"time"
)

const (
	DefaultDigits    = 6
	DefaultPeriod    = 30
	DefaultSkew      = 1
	DefaultAlgorithm = "SHA1"

	// MinSecretSize is the smallest secret, in bytes, accepted for a TOTP method.
	MinSecretSize = 128
)

// ValidateSecretKeyRegex matches unpadded or padded RFC 4648 base32.
var ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// TOTPParams contains the parameters for TOTP URI generation
type TOTPParams struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // User identifier shown in the authenticator (required)
	Issuer      string // Service name shown in the authenticator (required)
	Algorithm   string // Defaults to SHA1
	Digits      int    // Defaults to 6
	Period      int    // Defaults to 30 seconds
}

// Validate ensures all required TOTP parameters are present and valid
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 defaults applied to zero-valued fields
func (p TOTPParams) GetDefaults() TOTPParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecret returns size random bytes. Sizes below MinSecretSize are raised to it.
func GenerateSecret(size int) ([]byte, error) {
	if size < MinSecretSize {
		size = MinSecretSize
	}
	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Join(ErrSecretGeneration, err)
	}
	return secret, nil
}

// SecretToBase32 encodes secret for display in authenticator apps.
func SecretToBase32(secret []byte) string {
	return base32NoPad.EncodeToString(secret)
}

// SecretFromBase32 decodes a secret produced by SecretToBase32.
func SecretFromBase32(s string) ([]byte, error) {
	if !ValidateSecretKeyRegex.MatchString(s) {
		return nil, ErrInvalidSecret
	}
	secret, err := base32NoPad.DecodeString(trimPadding(s))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return secret, nil
}

func trimPadding(s string) string {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return s
}

// GetTOTPURI builds an otpauth:// URI in the Key Uri Format:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-SHA1 one-time password.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects 4 bytes.
	offset := sum[len(sum)-1] & 0x0f
	code := int(binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff)

	return code % int(math.Pow10(digits))
}

// GenerateCode returns the code for the period containing t, zero padded to digits.
func GenerateCode(secret []byte, t time.Time, digits, period int) string {
	if digits <= 0 {
		digits = DefaultDigits
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	counter := t.Unix() / int64(period)
	return fmt.Sprintf("%0*d", digits, GenerateHOTP(secret, counter, digits))
}
