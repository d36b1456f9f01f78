package domain

import (
	"regexp"
	"strings"
)

// Customer is the invoice owner snapshot sent to the gateway. Phone and
// email are mandatory for Cashfree orders.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DisplayName returns the customer name with the gateway's required fallback.
func (c Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Customer"
}

// indianMobileRe matches a 10-digit Indian mobile number, optionally
// prefixed with +91. Indian mobiles start with 6-9.
var indianMobileRe = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)

var phoneStripRe = regexp.MustCompile(`[^0-9+]`)

// SanitizePhone strips everything except digits and the plus sign
// (spaces, dashes, parentheses).
func SanitizePhone(raw string) string {
	return phoneStripRe.ReplaceAllString(raw, "")
}

// ValidIndianMobile reports whether a sanitized phone number is a valid
// Indian mobile in either 10-digit or +91-prefixed form.
func ValidIndianMobile(phone string) bool {
	return indianMobileRe.MatchString(phone)
}

// FormatPhoneE164 normalises a sanitized, validated phone number to the
// +91-prefixed form the gateway expects.
func FormatPhoneE164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+91" + phone
}
