package message

import (
	"net/url"
	"strings"
)

const shareBaseURL = "https://wa.me/"

// NormalizePhone strips everything but digits and prepends the country
// prefix when the number has exactly localDigits digits and is not
// already prefixed. No dialability check; an empty or malformed input
// passes through reduced to its digits.
func NormalizePhone(raw, countryPrefix string, localDigits int) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == localDigits && !strings.HasPrefix(digits, countryPrefix) {
		digits = countryPrefix + digits
	}
	return digits
}

// ShareLink builds the messenger URI carrying the rendered summary.
// A missing phone yields a link with an empty recipient; the share
// target rejects it, not us.
func ShareLink(summary, phone, countryPrefix string, localDigits int) string {
	recipient := NormalizePhone(phone, countryPrefix, localDigits)
	return shareBaseURL + recipient + "?text=" + escapeText(summary)
}

// escapeText percent-encodes the summary. QueryEscape's "+" for spaces
// is not understood by the share target, so spaces become %20.
func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
