package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

// roundTrip copies the cookies written to rec into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, cookie.ErrNoSecret},
		{"empty secrets", []string{"", ""}, cookie.ErrNoSecret},
		{"secret too short", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid secret", []string{secret}, nil},
		{"rotation", []string{secret, oldSecret}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		for _, v := range []string{"", "0b7c6c8e-7d0a-4f7e-9f2b-0d7c6f1d2a3b", "a.b.c|d=e"} {
			rec := httptest.NewRecorder()
			m.SetSigned(rec, "session", v)

			got, err := m.GetSigned(roundTrip(rec), "session")
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("attributes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "session", "uid", cookie.WithMaxAge(60))
		c := rec.Result().Cookies()[0]
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 60, c.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()

		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "session")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "session", "user-a")
		signed := rec.Result().Cookies()[0].Value

		other := httptest.NewRecorder()
		m.SetSigned(other, "session", "user-b")
		forged := strings.SplitN(other.Result().Cookies()[0].Value, ".", 2)[0] + signed[strings.Index(signed, "."):]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: forged})
		_, err := m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("value bound to cookie name", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "csrf", "uid")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: rec.Result().Cookies()[0].Value})
		_, err := m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		for _, v := range []string{"plain", "a.b", "!!!.0.sig", "dXNlcg.notanumber.sig"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "session", Value: v})
			_, err := m.GetSigned(req, "session")
			assert.ErrorIs(t, err, cookie.ErrInvalidFormat, v)
		}
	})
}

func TestManager_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	m, err := cookie.New([]string{secret}, cookie.WithMaxAge(60), cookie.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "session", "uid")
	req := roundTrip(rec)

	got, err := m.GetSigned(req, "session")
	require.NoError(t, err)
	assert.Equal(t, "uid", got)

	now = now.Add(time.Minute)
	_, err = m.GetSigned(req, "session")
	assert.ErrorIs(t, err, cookie.ErrExpired)
}

func TestManager_Rotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{oldSecret})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	old.SetSigned(rec, "session", "uid")

	rotated, err := cookie.New([]string{secret, oldSecret})
	require.NoError(t, err)
	got, err := rotated.GetSigned(roundTrip(rec), "session")
	require.NoError(t, err)
	assert.Equal(t, "uid", got)

	fresh, err := cookie.New([]string{secret})
	require.NoError(t, err)
	_, err = fresh.GetSigned(roundTrip(rec), "session")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secret}, cookie.WithPath("/auth"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "session")
	c := rec.Result().Cookies()[0]
	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Equal(t, "/auth", c.Path)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{Secrets: " " + secret + " , ,", Path: "/", MaxAge: 10, Secure: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "session", "uid")
	c := rec.Result().Cookies()[0]
	assert.Equal(t, 10, c.MaxAge)
	assert.True(t, c.Secure)

	_, err = cookie.NewFromConfig(cookie.Config{Secrets: " , "})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
