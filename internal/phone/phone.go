// Package phone normalizes user-entered phone numbers to E.164 form.
package phone

import "strings"

// Normalize converts a raw phone number to E.164. The second return value is
// false when the input cannot be normalized.
//
// Rules: non-digit characters are stripped. An input that begins with "+"
// keeps its explicit country code. Otherwise 11 digits starting with "1" are
// treated as a US/Canada number with the country code included, exactly 10
// digits get defaultCountryCode prepended, and 7-15 digits are passed
// through with a "+" prefix. Anything else is rejected.
func Normalize(raw, defaultCountryCode string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	digits := stripNonDigits(trimmed)
	if digits == "" {
		return "", false
	}

	if hasPlus {
		return "+" + digits, true
	}

	switch {
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	case len(digits) == 10:
		return "+" + defaultCountryCode + digits, true
	case len(digits) >= 7 && len(digits) <= 15:
		return "+" + digits, true
	}

	return "", false
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
