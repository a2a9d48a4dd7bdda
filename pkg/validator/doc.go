// Package validator provides rule-based input validation. Rules are plain
// values combined with Apply, which returns ValidationErrors listing every
// failed rule:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", email),
//		validator.MinLenString("password", pw, 8),
//	)
//	if validator.IsValidationError(err) {
//		for _, f := range validator.ExtractValidationErrors(err) { ... }
//	}
package validator
