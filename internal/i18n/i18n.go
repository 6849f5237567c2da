package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Language is a UI language supported by the app.
type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case Arabic, English:
		return Language(s), nil
	}
	return "", fmt.Errorf("unsupported language %q (use ar or en)", s)
}

// IsRTL reports whether the language is written right to left.
func IsRTL(lang Language) bool {
	return lang == Arabic
}

// T returns the translation for key, falling back to English and then to
// the key itself.
func T(lang Language, key Key) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := translations[English][key]; ok {
		return s
	}
	return string(key)
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice formats an IQD amount with thousands separators, e.g. 830,000.
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d", amount)
}
