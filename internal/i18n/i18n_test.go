package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "830,000", FormatPrice(830000))
	assert.Equal(t, "0", FormatPrice(0))
	assert.Equal(t, "1,250,000", FormatPrice(1250000))
}

func TestT_FallsBackToEnglishThenKey(t *testing.T) {
	assert.Equal(t, "النتيجة", T(Arabic, ResultsTitle))
	assert.Equal(t, "Results", T(English, ResultsTitle))
	assert.Equal(t, "Results", T(Language("fr"), ResultsTitle))
	assert.Equal(t, "noSuchKey", T(English, Key("noSuchKey")))
}

func TestEveryKeyTranslatedInBothLanguages(t *testing.T) {
	for key := range translations[English] {
		_, ok := translations[Arabic][key]
		assert.True(t, ok, "missing arabic translation for %s", key)
	}
	for key := range translations[Arabic] {
		_, ok := translations[English][key]
		assert.True(t, ok, "missing english translation for %s", key)
	}
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("en")
	assert.NoError(t, err)
	assert.Equal(t, English, lang)
	assert.True(t, IsRTL(Arabic))
	assert.False(t, IsRTL(English))

	_, err = ParseLanguage("fr")
	assert.Error(t, err)
}
