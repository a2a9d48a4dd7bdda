package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// The local part is otherwise kept as typed: distinct mailboxes stay distinct.
var NormalizeEmail = Compose(strings.TrimSpace, strings.ToLower)

// NormalizeUsername trims surrounding whitespace and applies Unicode case
// folding, so names differing only in case compare equal.
var NormalizeUsername = Compose(strings.TrimSpace, foldCase)

// foldCase builds a Caser per call; Casers are stateful and not safe for
// concurrent use.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Apply runs value through transforms in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, fn := range transforms {
		value = fn(value)
	}
	return value
}

// Compose returns a reusable pipeline of transforms.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}
