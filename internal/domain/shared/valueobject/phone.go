package valueobject

import (
	"fmt"
	"strings"
	"unicode"
)

// phoneDigits is the required number of digits for a local contact number
const phoneDigits = 11

// Phone is a normalized contact number: digits only, exactly 11 digits.
// Uniqueness across owners, doctors and contacts is enforced by the
// registry service; this type guarantees the format.
type Phone struct {
	number string
}

// NewPhone normalizes the input (strips every non-digit rune) and validates
// the resulting digit count.
func NewPhone(raw string) (Phone, error) {
	normalized := NormalizePhone(raw)
	if normalized == "" {
		return Phone{}, fmt.Errorf("contact number must be set")
	}
	if len(normalized) != phoneDigits {
		return Phone{}, fmt.Errorf("contact number must be exactly %d digits", phoneDigits)
	}
	return Phone{number: normalized}, nil
}

// NormalizePhone strips every non-digit rune from the input
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String returns the normalized digit string
func (p Phone) String() string {
	return p.number
}

// IsZero returns true when no number is set
func (p Phone) IsZero() bool {
	return p.number == ""
}

// Equals compares two phones by normalized value
func (p Phone) Equals(other Phone) bool {
	return p.number == other.number
}
