package totp

import (
	"crypto/subtle"
	"strings"
	"time"
)

// CheckerConfig controls code length, step and accepted clock drift.
type CheckerConfig struct {
	Digits int `env:"TOTP_DIGITS" envDefault:"6"`
	Period int `env:"TOTP_PERIOD" envDefault:"30"`
	// Skew is the number of periods accepted on either side of now.
	Skew int `env:"TOTP_SKEW" envDefault:"1"`
}

// DefaultCheckerConfig returns RFC 6238 parameters: 6 digits, 30 second step, one step of skew.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Digits: DefaultDigits, Period: DefaultPeriod, Skew: DefaultSkew}
}

// Checker validates codes against raw secrets. It keeps no record of used
// codes, so a code is accepted for every period inside the skew window.
type Checker struct {
	cfg CheckerConfig
}

// NewChecker returns a Checker; zero fields fall back to the defaults.
func NewChecker(cfg CheckerConfig) *Checker {
	if cfg.Digits <= 0 {
		cfg.Digits = DefaultDigits
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Skew < 0 {
		cfg.Skew = 0
	}
	return &Checker{cfg: cfg}
}

// Check reports whether code is valid for secret at now.
func (c *Checker) Check(secret []byte, code string, now time.Time) bool {
	code = strings.TrimSpace(code)
	if len(secret) == 0 || len(code) != c.cfg.Digits || !isDigits(code) {
		return false
	}

	ok := 0
	for i := -c.cfg.Skew; i <= c.cfg.Skew; i++ {
		at := now.Add(time.Duration(i*c.cfg.Period) * time.Second)
		want := GenerateCode(secret, at, c.cfg.Digits, c.cfg.Period)
		ok |= subtle.ConstantTimeCompare([]byte(want), []byte(code))
	}
	return ok == 1
}

// Config returns the effective configuration.
func (c *Checker) Config() CheckerConfig { return c.cfg }

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
