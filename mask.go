package shroud

import (
	"strings"
	"unicode"
)

// Content-aware policies. Each understands one data format and keeps its
// structure visible; input that does not match the format degrades to
// the placeholder in effect.

// SSNPolicy masks Social Security Numbers: 123-45-6789 -> ***-**-6789
func SSNPolicy() TextPolicy {
	return CustomWith(string(NameSSN), maskSSN)
}

func maskSSN(value string, m Markers) string {
	digits := extractDigits(value)
	if len(digits) != 9 {
		return m.Placeholder
	}
	mask := string(m.Mask)
	return strings.Repeat(mask, 3) + "-" + strings.Repeat(mask, 2) + "-" + digits[5:]
}

// UUIDPolicy keeps the first UUID segment:
// 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
func UUIDPolicy() TextPolicy {
	return CustomWith(string(NameUUID), maskUUID)
}

func maskUUID(value string, m Markers) string {
	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		return m.Placeholder
	}
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.Repeat(string(m.Mask), len([]rune(parts[i])))
	}
	return strings.Join(parts, "-")
}

// IBANPolicy keeps the country code, check digits and last 4 characters:
// GB82WEST12345698765432 -> GB82**************5432
func IBANPolicy() TextPolicy {
	return CustomWith(string(NameIBAN), func(value string, m Markers) string {
		return Keep(4, 4).WithMaskChar(m.Mask).withPlaceholder(m.Placeholder).Apply(value)
	})
}

// PersonNamePolicy keeps the first letter of each word: John Smith -> J*** S****
func PersonNamePolicy() TextPolicy {
	return CustomWith(string(NamePerson), maskPersonName)
}

func maskPersonName(value string, m Markers) string {
	words := strings.Fields(value)
	if len(words) == 0 {
		return m.Placeholder
	}
	for i, word := range words {
		runes := []rune(word)
		words[i] = string(runes[0]) + strings.Repeat(string(m.Mask), len(runes)-1)
	}
	return strings.Join(words, " ")
}

// extractDigits returns only the digit characters from a string.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
