package validation

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Built-in validator names.
const (
	FormatPassword       = "password"
	FormatPasswordLength = "password-length"
	FormatEmail          = "email"
	FormatNumber         = "number"
	FormatPattern        = "pattern"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// PasswordSymbols lists the special characters a strong password must use.
const PasswordSymbols = "@$!%*?&"

var (
	// ErrUnknownFormat is returned by CheckSchema for unregistered format names.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrEmptyPattern is returned when a pattern field declares no expression.
	ErrEmptyPattern = errors.New("empty pattern")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// builtinValidators are registered as validator tags. The email and number
// tags replace the library's own rules of the same name.
func builtinValidators() map[string]Validator {
	return map[string]Validator{
		FormatPassword: StrongPassword,
		FormatEmail:    Email,
		FormatNumber:   Number,
	}
}

// StrongPassword requires MinPasswordLength characters including a Latin
// letter, a digit and one of PasswordSymbols.
func StrongPassword(s string) bool {
	if !LongPassword(s) {
		return false
	}
	var letter, digit, symbol bool
	for _, r := range s {
		switch {
		case ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			letter = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return letter && digit && symbol
}

// LongPassword only enforces MinPasswordLength.
func LongPassword(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength
}

// Email accepts local@domain.tld with no whitespace or extra @.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Number accepts anything strconv parses as a finite float64.
func Number(s string) bool {
	_, err := ParseNumber(s)
	return err == nil
}

// ParseNumber parses a trimmed decimal input, accepting a comma decimal
// separator.
func ParseNumber(s string) (float64, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
