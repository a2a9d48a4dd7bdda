// Package binder decodes HTTP requests into typed structs.
//
// Each binder reads one source: JSON reads the body, Query reads `query`
// tagged fields from the URL, Path reads `path` tagged fields through a
// router specific extractor such as chi.URLParam.
//
//	type CallbackRequest struct {
//		Action string `path:"action"`
//		Code   string `query:"code"`
//	}
//
// Binders never alter decoded values; normalization belongs to the domain.
package binder
