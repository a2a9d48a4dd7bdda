// Package sanitizer normalizes user-supplied identifiers before they are
// validated and stored. Transformations compose with Apply and Compose.
package sanitizer
