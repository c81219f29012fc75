// Package schedule holds the shift catalog and the clock arithmetic used to
// plan shifts and to pay them.
package schedule

import (
	"slices"
	"time"

	"shiftplan/internal/models"
)

// Definition is the default shape of a shift type.
type Definition struct {
	Type    models.ShiftType `json:"type"`
	Start   string           `json:"start"`
	End     string           `json:"end"`
	Weekday bool             `json:"weekday"`
}

var order = []models.ShiftType{
	models.ShiftMorning,
	models.ShiftLate,
	models.ShiftNight,
	models.ShiftWeekendMorning,
	models.ShiftWeekendNight,
}

var catalog = map[models.ShiftType]Definition{
	models.ShiftMorning:        {Type: models.ShiftMorning, Start: "06:00", End: "14:00", Weekday: true},
	models.ShiftLate:           {Type: models.ShiftLate, Start: "14:00", End: "22:00", Weekday: true},
	models.ShiftNight:          {Type: models.ShiftNight, Start: "22:00", End: "06:00", Weekday: true},
	models.ShiftWeekendMorning: {Type: models.ShiftWeekendMorning, Start: "06:00", End: "18:00", Weekday: false},
	models.ShiftWeekendNight:   {Type: models.ShiftWeekendNight, Start: "18:00", End: "06:00", Weekday: false},
}

// secondary shift types a primary type can be paired with
var compatibility = map[models.ShiftType][]models.ShiftType{
	models.ShiftMorning:        {models.ShiftWeekendMorning},
	models.ShiftLate:           {models.ShiftWeekendNight},
	models.ShiftNight:          {models.ShiftWeekendNight},
	models.ShiftWeekendMorning: {models.ShiftMorning},
	models.ShiftWeekendNight:   {models.ShiftLate, models.ShiftNight},
}

// Types lists the shift types in catalog order.
func Types() []models.ShiftType {
	return slices.Clone(order)
}

func Definitions() []Definition {
	defs := make([]Definition, 0, len(order))
	for _, t := range order {
		defs = append(defs, catalog[t])
	}
	return defs
}

func Lookup(t models.ShiftType) (Definition, bool) {
	def, ok := catalog[t]
	return def, ok
}

func Valid(t models.ShiftType) bool {
	_, ok := catalog[t]
	return ok
}

func Compatible(primary models.ShiftType) []models.ShiftType {
	return slices.Clone(compatibility[primary])
}

func IsCompatible(primary, secondary models.ShiftType) bool {
	return slices.Contains(compatibility[primary], secondary)
}

// FitsDate reports whether the type is meant for the day of the week of d:
// weekday types Monday to Friday, weekend types Saturday and Sunday.
func FitsDate(t models.ShiftType, d models.Date) bool {
	def, ok := catalog[t]
	if !ok {
		return false
	}
	wd := d.Weekday()
	weekend := wd == time.Saturday || wd == time.Sunday
	return def.Weekday != weekend
}

// AllowedTypes is the union of the users' primary and secondary types, in
// catalog order.
func AllowedTypes(users ...*models.User) []models.ShiftType {
	set := make(map[models.ShiftType]struct{})
	for _, u := range users {
		for _, t := range u.ShiftTypes() {
			set[t] = struct{}{}
		}
	}
	allowed := make([]models.ShiftType, 0, len(set))
	for _, t := range order {
		if _, ok := set[t]; ok {
			allowed = append(allowed, t)
		}
	}
	return allowed
}
