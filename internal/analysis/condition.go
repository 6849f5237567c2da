package analysis

import (
	"fmt"
	"time"

	"github.com/raine/balla/internal/i18n"
)

// Condition is the seller-declared condition tier. It is not verified.
type Condition string

const (
	DeclaredNew       Condition = "new"
	DeclaredCleanUsed Condition = "clean_used"
	DeclaredWorn      Condition = "worn"
)

var conditionLabels = map[Condition]map[i18n.Language]string{
	DeclaredNew:       {i18n.Arabic: "جديد", i18n.English: "New"},
	DeclaredCleanUsed: {i18n.Arabic: "مستعمل نظيف", i18n.English: "Clean used"},
	DeclaredWorn:      {i18n.Arabic: "مستهلك", i18n.English: "Worn"},
}

// Conditions returns the declared tiers in display order.
func Conditions() []Condition {
	return []Condition{DeclaredNew, DeclaredCleanUsed, DeclaredWorn}
}

// ParseCondition validates a declared condition identifier.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if _, ok := conditionLabels[c]; !ok {
		return "", fmt.Errorf("unknown condition %q (use new, clean_used or worn)", s)
	}
	return c, nil
}

// Label returns the display label. The Arabic label is the form sent to the
// analysis service.
func (c Condition) Label(lang i18n.Language) string {
	labels, ok := conditionLabels[c]
	if !ok {
		return string(c)
	}
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[i18n.English]
}

// ValidatePurchaseYear accepts four-digit years up to and including the
// current year.
func ValidatePurchaseYear(year int, now time.Time) error {
	if year < 1000 || year > 9999 {
		return fmt.Errorf("purchase year %d is not a four-digit year", year)
	}
	if year > now.Year() {
		return fmt.Errorf("purchase year %d is in the future", year)
	}
	return nil
}
