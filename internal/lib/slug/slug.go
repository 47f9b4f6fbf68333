// Package slug содержит функции нормализации и проверки слагов,
// используемых как человекочитаемые идентификаторы программ, статей и рубрик.
package slug

import (
	"strings"
	"unicode"
)

// Make нормализует произвольную строку в слаг: нижний регистр,
// латинские буквы и цифры, остальные символы схлопываются в дефисы.
// Диакритика частых французских букв транслитерируется.
func Make(s string) string {
	var b strings.Builder
	lastDash := true // подавляет ведущие дефисы
	for _, r := range strings.ToLower(s) {
		r = stripAccent(r)
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValid сообщает, является ли строка корректным слагом.
func IsValid(s string) bool {
	return s != "" && s == Make(s)
}

func stripAccent(r rune) rune {
	switch r {
	case 'à', 'â', 'ä':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'î', 'ï':
		return 'i'
	case 'ô', 'ö':
		return 'o'
	case 'ù', 'û', 'ü':
		return 'u'
	case 'ç':
		return 'c'
	}
	return r
}
