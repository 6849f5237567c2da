// Package region holds the closed set of Iraqi governorates used for
// display and for localized price adjustment.
package region

import (
	"errors"
	"fmt"

	"github.com/raine/balla/internal/i18n"
)

// ErrUnknownRegion is returned for identifiers outside the fixed set.
var ErrUnknownRegion = errors.New("unknown region")

// ID is a governorate's machine identifier.
type ID string

// Region is a governorate with its display names.
type Region struct {
	ID     ID
	Name   string // English; this is what the analysis service prices by
	NameAr string
}

// DisplayName returns the name in the given UI language.
func (r Region) DisplayName(lang i18n.Language) string {
	if lang == i18n.Arabic {
		return r.NameAr
	}
	return r.Name
}

var governorates = []Region{
	{ID: "baghdad", Name: "Baghdad", NameAr: "بغداد"},
	{ID: "basra", Name: "Basra", NameAr: "البصرة"},
	{ID: "nineveh", Name: "Nineveh", NameAr: "نينوى"},
	{ID: "anbar", Name: "Anbar", NameAr: "الأنبار"},
	{ID: "kirkuk", Name: "Kirkuk", NameAr: "كركوك"},
	{ID: "salahdin", Name: "Salah al-Din", NameAr: "صلاح الدين"},
	{ID: "diyala", Name: "Diyala", NameAr: "ديالى"},
	{ID: "babil", Name: "Babil", NameAr: "بابل"},
	{ID: "karbala", Name: "Karbala", NameAr: "كربلاء"},
	{ID: "najaf", Name: "Najaf", NameAr: "النجف"},
	{ID: "wasit", Name: "Wasit", NameAr: "واسط"},
	{ID: "maysan", Name: "Maysan", NameAr: "ميسان"},
	{ID: "dhiqar", Name: "Dhi Qar", NameAr: "ذي قار"},
	{ID: "muthanna", Name: "Al-Muthanna", NameAr: "المثنى"},
	{ID: "qadisiyyah", Name: "Al-Qadisiyyah", NameAr: "القادسية"},
	{ID: "erbil", Name: "Erbil", NameAr: "أربيل"},
	{ID: "sulaymaniyah", Name: "Sulaymaniyah", NameAr: "السليمانية"},
	{ID: "duhok", Name: "Duhok", NameAr: "دهوك"},
}

var byID = func() map[ID]Region {
	m := make(map[ID]Region, len(governorates))
	for _, g := range governorates {
		m[g.ID] = g
	}
	return m
}()

// All returns every governorate in display order.
func All() []Region {
	out := make([]Region, len(governorates))
	copy(out, governorates)
	return out
}

// Lookup resolves an identifier.
func Lookup(id ID) (Region, error) {
	r, ok := byID[id]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, id)
	}
	return r, nil
}

// Valid reports whether id belongs to the fixed set.
func Valid(id ID) bool {
	_, ok := byID[id]
	return ok
}
