package domain

import (
	"strings"
	"time"
)

type ProjectCategory string

const (
	CategoryResidential ProjectCategory = "Residential"
	CategoryCommercial  ProjectCategory = "Commercial"
	CategoryIndustrial  ProjectCategory = "Industrial"
	CategoryRenovation  ProjectCategory = "Renovation"
)

var ProjectCategories = []ProjectCategory{
	CategoryResidential,
	CategoryCommercial,
	CategoryIndustrial,
	CategoryRenovation,
}

// ParseProjectCategory matches a category name case-insensitively.
// The empty string parses to the empty category, meaning "all".
func ParseProjectCategory(s string) (ProjectCategory, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	for _, c := range ProjectCategories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Project is a portfolio entry shown on the public site and managed
// from the admin console. Image holds either a URL or embedded data.
type Project struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:180;not null" json:"title"`
	Category    ProjectCategory `gorm:"type:varchar(30);index" json:"category"`
	Location    string          `gorm:"size:140" json:"location"`
	Year        string          `gorm:"size:10" json:"year"`
	Area        string          `gorm:"size:40" json:"area"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"type:text" json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c ProjectCategory) Valid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial, CategoryRenovation:
		return true
	}
	return false
}
