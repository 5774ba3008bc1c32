package models

import (
	"regexp"
	"strings"
)

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:150;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:10;not null" json:"measurement_unit"`
}

type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:16;not null;uniqueIndex" json:"name"`
	Color string `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string `gorm:"size:16;not null;uniqueIndex" json:"slug"`
}

var (
	tagColorPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3}|[0-9a-f]{6})$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidTagColor reports whether color is a #rgb or #rrggbb hex value.
func ValidTagColor(color string) bool {
	return tagColorPattern.MatchString(color)
}

// ValidSlug reports whether slug only holds letters, digits, hyphens and underscores.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// NormalizeColor lowercases a hex color so uniqueness is case-insensitive.
func NormalizeColor(color string) string {
	return strings.ToLower(color)
}
