package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenString counts runes, not bytes.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) >= min
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// ValidEmail accepts a bare RFC 5322 address whose domain has at least one dot.
// Display names ("Bob <bob@x.io>") are rejected.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			at := strings.LastIndexByte(value, '@')
			if at <= 0 {
				return false
			}
			domain := value[at+1:]
			if !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidUsername expects an already normalized (lowercase) username.
func ValidUsername(field, value string, minLen, maxLen int) Rule {
	return Rule{
		Check: func() bool {
			n := utf8.RuneCountInString(value)
			return n >= minLen && n <= maxLen && usernameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be %d-%d characters of lowercase letters, digits, dots, underscores or hyphens", minLen, maxLen),
			TranslationKey: "validation.username",
			TranslationValues: map[string]any{
				"field":   field,
				"min_len": minLen,
				"max_len": maxLen,
			},
		},
	}
}

// ValidOTP validates a numeric one-time code of exactly length digits.
func ValidOTP(field, value string, length int) Rule {
	return Rule{
		Check: func() bool {
			if length <= 0 || len(value) != length {
				return false
			}
			for _, r := range value {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be a %d-digit code", length),
			TranslationKey:    "validation.otp_code",
			TranslationValues: map[string]any{"field": field, "length": length},
		},
	}
}
