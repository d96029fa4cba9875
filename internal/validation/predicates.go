package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New()

func tag(t string) Predicate {
	return func(value string) bool {
		return validate.Var(value, t) == nil
	}
}

// NotEmpty fails for empty or whitespace-only values.
func NotEmpty() Predicate {
	return func(value string) bool {
		return validate.Var(strings.TrimSpace(value), "required") == nil
	}
}

// Alpha accepts letters only, including accented ones.
func Alpha() Predicate {
	return tag("alphaunicode")
}

// AlphanumericSpaces accepts letters and digits separated by spaces.
func AlphanumericSpaces() Predicate {
	return func(value string) bool {
		return validate.Var(strings.ReplaceAll(value, " ", ""), "alphanumunicode") == nil
	}
}

// Length accepts values whose character count is within [min, max].
// A max of zero or less leaves the upper bound open.
func Length(min, max int) Predicate {
	t := fmt.Sprintf("min=%d", min)
	if max > 0 {
		t += fmt.Sprintf(",max=%d", max)
	}
	return tag(t)
}

// Email accepts values shaped like an email address.
func Email() Predicate {
	return tag("email")
}

// OneOf accepts exactly one of the allowed values.
func OneOf(allowed ...string) Predicate {
	allowed = slices.Clone(allowed)
	return func(value string) bool {
		return slices.Contains(allowed, value)
	}
}

// PasswordPolicy is the minimum composition a password must satisfy.
type PasswordPolicy struct {
	MinLength  int
	MinLower   int
	MinUpper   int
	MinDigits  int
	MinSymbols int
}

// DefaultPasswordPolicy requires eight characters with at least one
// lowercase letter, uppercase letter, digit and symbol.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:  8,
	MinLower:   1,
	MinUpper:   1,
	MinDigits:  1,
	MinSymbols: 1,
}

// Satisfied reports whether password meets the policy.
func (p PasswordPolicy) Satisfied(password string) bool {
	var length, lower, upper, digits, symbols int
	for _, r := range password {
		length++
		switch {
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			symbols++
		}
	}
	return length >= p.MinLength &&
		lower >= p.MinLower &&
		upper >= p.MinUpper &&
		digits >= p.MinDigits &&
		symbols >= p.MinSymbols
}

// StrongPassword accepts passwords that satisfy policy.
func StrongPassword(policy PasswordPolicy) Predicate {
	return policy.Satisfied
}
