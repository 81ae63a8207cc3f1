// Package validation содержит функции нормализации и валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

const defaultCountryCode = "91"

// minPhoneDigits: код страны и десять цифр абонентского номера.
const minPhoneDigits = 12

// NormalizePhoneNumber приводит произвольно введённый номер к виду +<код страны><цифры>.
func NormalizePhoneNumber(phone string) string {
	cleaned := DigitsOnly(phone)

	switch {
	case len(cleaned) == 10:
		return "+" + defaultCountryCode + cleaned
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, defaultCountryCode):
		return "+" + cleaned
	case len(cleaned) >= 10:
		return "+" + cleaned
	}

	return "+" + defaultCountryCode + cleaned
}

// IsValidPhone проверяет, что после нормализации номер содержит код страны и полный абонентский номер.
func IsValidPhone(phone string) bool {
	return len(DigitsOnly(NormalizePhoneNumber(phone))) >= minPhoneDigits
}

// PhoneDigits возвращает нормализованный номер без знака "+".
func PhoneDigits(phone string) string {
	return DigitsOnly(NormalizePhoneNumber(phone))
}

// DigitsOnly оставляет в строке только ASCII-цифры.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch < unicode.MaxASCII && unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
