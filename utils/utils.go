package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// FormatAmount renders 1234567 as "1 234 567" for user-facing messages.
func FormatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// NormalizeCardNumber strips spaces and separators from a card number.
// Returns "" if the result is not a plausible card number.
func NormalizeCardNumber(input string) string {
	card := nonDigits.ReplaceAllString(input, "")
	switch len(card) {
	case 16, 18, 19:
		return card
	}
	return ""
}

// NormalizePhone brings a RU phone number to +7XXXXXXXXXX form.
// Returns "" if the input cannot be normalized.
func NormalizePhone(input string) string {
	phone := regexp.MustCompile(`[^\d+]`).ReplaceAllString(input, "")
	switch {
	case strings.HasPrefix(phone, "8"):
		phone = "+7" + phone[1:]
	case strings.HasPrefix(phone, "7"):
		phone = "+" + phone
	}
	if !strings.HasPrefix(phone, "+7") || len(phone) != 12 {
		return ""
	}
	return phone
}

// MaskDetails hides the middle of payout details for display.
func MaskDetails(method, details string) string {
	switch {
	case method == "card" && len(details) >= 16:
		return details[:4] + " **** **** " + details[len(details)-4:]
	case method == "sbp" && len(details) >= 10:
		return "+7 (" + details[2:5] + ") ***-**-" + details[len(details)-2:]
	case len(details) > 10:
		return details[:10] + "***"
	}
	return details
}
