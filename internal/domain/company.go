package domain

import "time"

// CompanyDetailsID is the fixed primary key of the singleton row. All
// writes upsert against it so the table never holds a second record.
const CompanyDetailsID uint = 1

// CompanyDetails is the global site configuration: contact info, brand
// identity and the headline stats rendered on the public pages. JSON
// names follow the admin display model (camelCase); column names are
// the snake_case storage model.
type CompanyDetails struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Phone             string    `gorm:"size:40" json:"phone"`
	Email             string    `gorm:"size:140" json:"email"`
	Address           string    `gorm:"size:255" json:"address"`
	WorkingHours      string    `gorm:"size:120" json:"workingHours"`
	BrandName         string    `gorm:"size:140" json:"brandName"`
	BrandSubtitle     string    `gorm:"size:140" json:"brandSubtitle"`
	YearsExperience   string    `gorm:"size:20" json:"yearsExperience"`
	ProjectsCompleted string    `gorm:"size:20" json:"projectsCompleted"`
	HappyClients      string    `gorm:"size:20" json:"happyClients"`
	Facebook          string    `gorm:"size:255" json:"facebook"`
	Instagram         string    `gorm:"size:255" json:"instagram"`
	Linkedin          string    `gorm:"size:255" json:"linkedin"`
	Twitter           string    `gorm:"size:255" json:"twitter"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultCompanyDetails is what the site renders before the admin has
// saved anything.
func DefaultCompanyDetails() CompanyDetails {
	return CompanyDetails{
		ID:                CompanyDetailsID,
		Phone:             "(123) 456-7890",
		Email:             "info@meridianbuild.com",
		Address:           "Harbor Point Tower, Business Bay, Dubai",
		WorkingHours:      "Sun - Thu: 9:00 AM - 5:30 PM",
		BrandName:         "MERIDIAN CONSTRUCTION LLC",
		BrandSubtitle:     "",
		YearsExperience:   "14+",
		ProjectsCompleted: "200+",
		HappyClients:      "99%",
		Facebook:          "#",
		Instagram:         "#",
		Linkedin:          "#",
		Twitter:           "#",
	}
}
