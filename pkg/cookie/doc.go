// Package cookie writes and reads HMAC-SHA256 signed HTTP cookies.
//
// A signed cookie carries its value, an optional expiry and a signature over
// both plus the cookie name, so a value cannot be replayed under another
// cookie name or past its lifetime. Values are not encrypted; store opaque
// identifiers, never secrets.
//
//	m, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")}, cookie.WithMaxAge(3600))
//	m.SetSigned(w, "session", userID)
//	id, err := m.GetSigned(r, "session")
//
// Multiple secrets enable rotation: the first signs, all of them verify.
// Cookies are always HttpOnly.
package cookie
