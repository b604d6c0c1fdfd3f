// Package icons resolves the single concrete icon key used to render an
// asset. Every surface that shows an asset (list, detail, picker) goes
// through Resolve so the fallback chain cannot drift between views.
package icons

import "github.com/custodia-app/custodia/internal/models"

// DefaultIcon is the global fallback for unknown categories.
const DefaultIcon = "cube"

// validIcons is the set of icon keys the clients ship.
var validIcons = map[string]struct{}{
	"airplane":       {},
	"bicycle":        {},
	"boat":           {},
	"business":       {},
	"calendar":       {},
	"car":            {},
	"car-sport":      {},
	"card":           {},
	"cash":           {},
	"construct":      {},
	"cube":           {},
	"document":       {},
	"fitness":        {},
	"home":           {},
	"key":            {},
	"laptop":         {},
	"leaf":           {},
	"medical":        {},
	"paw":            {},
	"people":         {},
	"person":         {},
	"phone-portrait": {},
	"shield-checkmark": {},
	"tv":             {},
	"watch":          {},
}

// iconAliases maps icon names retired from the picker to their replacements.
var iconAliases = map[string]string{
	"automobile": "car",
	"building":   "business",
	"dog":        "paw",
	"hospital":   "medical",
	"telephone":  "phone-portrait",
}

// Resolve returns the icon key to display for an asset. It is total: an
// unknown custom icon falls through to the category default, and an unknown
// category falls through to DefaultIcon.
func Resolve(category models.AssetCategory, custom string) string {
	if custom != "" {
		if _, ok := validIcons[custom]; ok {
			return custom
		}
		if alias, ok := iconAliases[custom]; ok {
			if _, ok := validIcons[alias]; ok {
				return alias
			}
		}
	}
	return Default(category)
}

// Default returns the default icon for a category. Legacy category aliases
// (car, house) resolve through their current category first.
func Default(category models.AssetCategory) string {
	if norm, ok := models.NormalizeCategory(string(category)); ok {
		category = norm
	}
	switch category {
	case models.CategoryVehicles:
		return "car"
	case models.CategoryProperties:
		return "home"
	case models.CategoryAnimals:
		return "paw"
	case models.CategoryPeople:
		return "person"
	case models.CategoryDevices:
		return "phone-portrait"
	case models.CategorySubscriptions:
		return "card"
	case models.CategoryOther:
		return DefaultIcon
	}
	return DefaultIcon
}

// Valid reports whether key is a member of the known icon set. The picker
// endpoint uses it to reject stale keys before they are persisted.
func Valid(key string) bool {
	_, ok := validIcons[key]
	return ok
}

// Known returns the full valid icon set for picker UIs.
func Known() []string {
	keys := make([]string, 0, len(validIcons))
	for k := range validIcons {
		keys = append(keys, k)
	}
	return keys
}
