package models

import (
	"fmt"
	"strings"
)

// Category is one of the four fixed preparation tracks every ledger entry,
// goal, and completed problem belongs to.
type Category string

const (
	CategoryCoding     Category = "coding"
	CategoryAptitude   Category = "aptitude"
	CategoryCore       Category = "core"
	CategorySoftSkills Category = "softskills"
)

// AllCategories returns the tracks in their canonical display order.
func AllCategories() []Category {
	return []Category{CategoryCoding, CategoryAptitude, CategoryCore, CategorySoftSkills}
}

func (c Category) String() string {
	return string(c)
}

// Valid reports whether the category belongs to the fixed enum.
func (c Category) Valid() bool {
	switch c {
	case CategoryCoding, CategoryAptitude, CategoryCore, CategorySoftSkills:
		return true
	}
	return false
}

// ParseCategory normalizes user input into a Category.
func ParseCategory(value string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(value)))
	if !category.Valid() {
		return "", fmt.Errorf("unknown category %q", value)
	}
	return category, nil
}
