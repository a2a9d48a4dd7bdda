package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoSecret         = errors.New("cookie.no_secret")
	ErrSecretTooShort   = errors.New("cookie.secret_too_short")
	ErrCookieNotFound   = errors.New("cookie.not_found")
	ErrInvalidFormat    = errors.New("cookie.invalid_format")
	ErrInvalidSignature = errors.New("cookie.invalid_signature")
	ErrExpired          = errors.New("cookie.expired")
)

const minSecretLength = 32

// Manager writes and reads HMAC-signed cookies.
type Manager struct {
	secrets  []string
	defaults Options
}

// New creates a Manager. The first secret signs new cookies; every secret
// is accepted on read so keys can be rotated.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := applyOptions(Options{
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		now:      time.Now,
	}, opts)

	return &Manager{secrets: secrets, defaults: defaults}, nil
}

// SetSigned writes value under name with a signature bound to the name and
// to the expiry derived from MaxAge.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	o := applyOptions(m.defaults, opts)

	var expires int64
	if o.MaxAge > 0 {
		expires = o.now().Add(time.Duration(o.MaxAge) * time.Second).Unix()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    m.sign(name, value, expires),
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: o.SameSite,
	})
}

// GetSigned returns the verified value of the cookie name.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return m.verify(name, c.Value)
}

// Delete expires the cookie name.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: true,
		SameSite: m.defaults.SameSite,
	})
}

// Encoded form: base64(value) "." expiry "." base64(hmac).
func (m *Manager) sign(name, value string, expires int64) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + strconv.FormatInt(expires, 10)
	return payload + "." + mac(m.secrets[0], name, payload)
}

func (m *Manager) verify(name, signed string) (string, error) {
	payload, sig, ok := cutLast(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	encoded, exp, ok := strings.Cut(payload, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	expires, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", ErrInvalidFormat
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	valid := false
	for _, secret := range m.secrets {
		if hmac.Equal([]byte(sig), []byte(mac(secret, name, payload))) {
			valid = true
			break
		}
	}
	if !valid {
		return "", ErrInvalidSignature
	}
	if expires > 0 && !m.defaults.now().Before(time.Unix(expires, 0)) {
		return "", ErrExpired
	}
	return string(value), nil
}

func mac(secret, name, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
