// Package validation holds the input rules of the account service: per-field
// format checks and the min/max consistency check on preference pairs.
//
// Every function returns the full list of violations it found; callers
// concatenate them and fail with common.ValidationError only at the end.
package validation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/cmiyc/internal/common"
)

const maxNameLength = 50

var (
	emailRe         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	middleInitialRe = regexp.MustCompile(`^[A-Za-z]$`)
	digitsRe        = regexp.MustCompile(`^[0-9]+$`)

	// JSON number with an all-zero fraction and no sign or exponent.
	integralNumRe = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.0+)?$`)
)

// NormalizeEmail trims and lower-cases an address. Emails are compared
// case-insensitively everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email checks format and length of an already normalized address.
func Email(email string) []common.Violation {
	switch {
	case email == "":
		return violation("email", "is required")
	case len(email) > common.MaxEmailLength:
		return violation("email", "must be at most "+strconv.Itoa(common.MaxEmailLength)+" characters")
	case !emailRe.MatchString(email):
		return violation("email", "must be a valid email address")
	}
	return nil
}

// Name checks a required name field.
func Name(field, value string) []common.Violation {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return violation(field, "is required")
	case utf8.RuneCountInString(value) > maxNameLength:
		return violation(field, "must be at most "+strconv.Itoa(maxNameLength)+" characters")
	}
	return nil
}

// MiddleInitial accepts an empty value or exactly one ASCII letter.
func MiddleInitial(value string) []common.Violation {
	if value == "" || middleInitialRe.MatchString(value) {
		return nil
	}
	return violation("middle_initial", "must be a single letter")
}

// Password checks the minimum length of a new password.
func Password(field, value string) []common.Violation {
	if len(value) < common.MinPasswordLength {
		return violation(field, "must be at least "+strconv.Itoa(common.MinPasswordLength)+" characters")
	}
	return nil
}

// RequiredBool parses a required JSON boolean.
func RequiredBool(field string, raw json.RawMessage) (bool, []common.Violation) {
	if isMissing(raw) {
		return false, violation(field, "is required")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, violation(field, "must be a boolean")
	}
	return b, nil
}

// RequiredBound parses a required preference bound.
func RequiredBound(field string, raw json.RawMessage) (int64, []common.Violation) {
	if isMissing(raw) {
		return 0, violation(field, "is required")
	}
	v, ok := ParseBound(raw)
	if !ok {
		return 0, violation(field, "must be a non-negative integer")
	}
	return v, nil
}

// ParseBound accepts a non-negative whole number given either as a JSON
// number or as a string of ASCII digits.
//
// Strings must match ^[0-9]+$: no sign, no surrounding space, no fraction.
// A JSON number may carry an all-zero fraction, so 5 and 5.0 both give 5.
// Signs (including -0), exponents, non-zero fractions and values beyond
// int64 are rejected.
func ParseBound(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil || !digitsRe.MatchString(s) {
			return 0, false
		}
	} else {
		if !integralNumRe.MatchString(s) {
			return 0, false
		}
		s, _, _ = strings.Cut(s, ".")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isMissing(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func violation(field, message string) []common.Violation {
	return []common.Violation{{Field: field, Message: message}}
}
