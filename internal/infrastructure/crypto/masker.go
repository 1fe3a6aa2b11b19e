package crypto

import (
	"regexp"
	"strings"
)

// Mask is the replacement emitted for sensitive material.
const Mask = "***MASKED***"

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
	cardPattern   = regexp.MustCompile(`\b(?:\d[ \-]?){13,19}\b`)
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)

	// Property names whose values are always masked in dumps, whether or
	// not the value is actually encrypted.
	sensitiveNamePattern = regexp.MustCompile(`(?i)(password|secret|key|token|credential)`)
)

// Masker redacts sensitive values for logs and diagnostics output.
type Masker struct{}

// NewMasker creates a Masker.
func NewMasker() *Masker {
	return &Masker{}
}

// MaskText redacts emails, phone numbers, card numbers and bearer tokens
// inside free-form text.
func (m *Masker) MaskText(text string) string {
	if text == "" {
		return text
	}
	text = bearerPattern.ReplaceAllString(text, "Bearer "+Mask)
	text = emailPattern.ReplaceAllString(text, Mask)
	text = cardPattern.ReplaceAllString(text, Mask)
	text = phonePattern.ReplaceAllString(text, Mask)
	return text
}

// MaskValue redacts a single value, keeping a short prefix for
// identification when the value is long enough to stay unguessable.
func (m *Masker) MaskValue(value string) string {
	if value == "" {
		return value
	}
	if len(value) <= 8 {
		return Mask
	}
	return value[:2] + Mask
}

// IsSensitiveName reports whether a property name matches the sensitive
// naming convention (password, secret, key, token, credential).
func (m *Masker) IsSensitiveName(name string) bool {
	return sensitiveNamePattern.MatchString(name)
}

// MaskEmail keeps the first character and the domain of an address.
func (m *Masker) MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return Mask
	}
	return email[:1] + "***" + email[at:]
}
