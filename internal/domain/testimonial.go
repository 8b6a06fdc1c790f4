package domain

import "time"

type Testimonial struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClientName string    `gorm:"size:140;not null" json:"client_name"`
	Role       string    `gorm:"size:140" json:"role"`
	Content    string    `gorm:"type:text" json:"content"`
	Image      string    `gorm:"type:text" json:"image"`
	Rating     int       `gorm:"default:5" json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
