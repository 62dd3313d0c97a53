package utils

import "strings"

// NormalizePhone strips spaces, dashes and a leading country code so that
// "+91 98765-43210" and "9876543210" compare equal.
func NormalizePhone(phone, countryCode string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if countryCode != "" && strings.HasPrefix(p, countryCode) && len(p) > len(countryCode)+9 {
		p = strings.TrimPrefix(p, countryCode)
	}
	return p
}

// IsValidPhone reports whether phone is exactly ten digits.
func IsValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// E164 prefixes a local number with the country code for SMS delivery.
func E164(phone, countryCode string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return countryCode + phone
}
