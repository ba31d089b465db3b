package rate

import (
	"fmt"
	"nburates/internal/domain"
	"slices"
	"strings"
	"unicode"
)

// ParseCurrencies turns a currency specification into an ordered list of codes. Each
// element may itself be a comma-separated list, so "USD,EUR" and ["USD", "EUR"] are
// equivalent. Whitespace is dropped and codes are upper-cased.
func ParseCurrencies(spec ...string) ([]string, error) {
	codes := make([]string, 0, len(spec))
	for _, s := range spec {
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		if s == "" {
			continue
		}
		for _, code := range strings.Split(s, ",") {
			code = strings.ToUpper(code)
			if err := ValidateCode(code); err != nil {
				return nil, err
			}
			if slices.Contains(codes, code) {
				return nil, fmt.Errorf("%w: currency %q is listed twice", domain.ErrInvalidInput, code)
			}
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: currency list %q is empty", domain.ErrInvalidInput, spec)
	}
	return codes, nil
}

// ValidateCode accepts three ASCII letters.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty currency code", domain.ErrInvalidInput)
	}
	if len(code) != 3 {
		return fmt.Errorf("%w: currency code %q must have 3 letters", domain.ErrInvalidInput, code)
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return fmt.Errorf("%w: currency code %q must contain only letters", domain.ErrInvalidInput, code)
		}
	}
	return nil
}
