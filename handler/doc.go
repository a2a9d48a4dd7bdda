// Package handler provides type-safe HTTP request handling.
//
// A HandlerFunc receives a request struct already decoded by the configured
// binders and returns a Response. Wrap adapts it to net/http:
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinders[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](errorHandler),
//	))
//
// Responses are JSON envelopes ({"data": ...} or {"error": {...}}), empty
// bodies or redirects. A handler that fails returns handler.Error(err); the
// ErrorHandler built by NewErrorHandler classifies err into an HTTPError,
// logs it with the request context and writes the JSON error body.
package handler
