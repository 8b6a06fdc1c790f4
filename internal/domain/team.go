package domain

import "time"

// TeamMember listings render in ascending order_index.
type TeamMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:140;not null" json:"name"`
	Role       string    `gorm:"size:140" json:"role"`
	Image      string    `gorm:"type:text" json:"image"`
	Bio        string    `gorm:"type:text" json:"bio"`
	Linkedin   string    `gorm:"size:255" json:"linkedin"`
	Twitter    string    `gorm:"size:255" json:"twitter"`
	OrderIndex int       `gorm:"index" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
