package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under "user_id". A nil id yields an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// RequestID records the request identifier under "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Component records the emitting package under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// CredentialKind records a credential kind under "credential_kind".
func CredentialKind(kind string) slog.Attr {
	return slog.String("credential_kind", kind)
}

// Action records an OAuth linking action under "action".
func Action(name string) slog.Attr {
	return slog.String("action", name)
}

// RetryCount records the attempt number under "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records d under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// ClientIP records the caller address under "client_ip".
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}
