package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetCategory is the closed set of asset categories.
type AssetCategory string

const (
	CategoryVehicles      AssetCategory = "vehicles"
	CategoryProperties    AssetCategory = "properties"
	CategoryAnimals       AssetCategory = "animals"
	CategoryPeople        AssetCategory = "people"
	CategoryDevices       AssetCategory = "devices"
	CategorySubscriptions AssetCategory = "subscriptions"
	CategoryOther         AssetCategory = "other"
)

// legacyCategoryAliases maps category names written by older clients to the
// current set. Rows carrying an alias still exist in the wild, so aliases are
// accepted on input and during display resolution.
var legacyCategoryAliases = map[AssetCategory]AssetCategory{
	"car":   CategoryVehicles,
	"house": CategoryProperties,
}

// NormalizeCategory resolves legacy aliases and reports whether the result is
// a known category.
func NormalizeCategory(raw string) (AssetCategory, bool) {
	c := AssetCategory(strings.ToLower(strings.TrimSpace(raw)))
	if mapped, ok := legacyCategoryAliases[c]; ok {
		c = mapped
	}
	switch c {
	case CategoryVehicles, CategoryProperties, CategoryAnimals, CategoryPeople,
		CategoryDevices, CategorySubscriptions, CategoryOther:
		return c, true
	}
	return c, false
}

// Asset represents a tracked real-world item (vehicle, property, animal, ...).
// Identifier is free text whose meaning depends on the category: a plate
// number for vehicles, an address for properties, a serial for devices.
type Asset struct {
	ID         string        `gorm:"type:char(36);primaryKey" json:"id"`
	Category   AssetCategory `gorm:"size:32;not null;index" json:"category"`
	Name       string        `gorm:"size:255;not null" json:"name"`
	Identifier string        `gorm:"size:255" json:"identifier,omitempty"`
	Icon       string        `gorm:"size:64" json:"icon,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BeforeCreate assigns a server-side id when the caller did not provide one.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Asset
func (Asset) TableName() string {
	return "assets"
}
