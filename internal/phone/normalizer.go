// Package phone turns customer-entered Kenyan mobile numbers into the
// 2547XXXXXXXX form the mobile-money processor expects.
package phone

import (
	"strings"

	apperrors "storefront/internal/errors"
)

const (
	CountryCode     = "254"
	canonicalLength = 12
)

const InvalidNumberMessage = "Please enter a valid Kenyan phone number (e.g., 07... or 254...)"

// Normalize strips formatting from raw and rewrites local forms
// (07XXXXXXXX, 7XXXXXXXX) to the international one. Anything that does not
// end up as 12 digits starting with the country code is rejected.
func Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)

	switch {
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		digits = CountryCode + digits[1:]
	case len(digits) == 9 && !strings.HasPrefix(digits, "0"):
		digits = CountryCode + digits
	}

	if len(digits) != canonicalLength || !strings.HasPrefix(digits, CountryCode) {
		return "", apperrors.NewCheckoutError(apperrors.CodeInvalidPhoneNumber, InvalidNumberMessage, nil)
	}

	return digits, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
