package domain

import "time"

// Service describes one of the company's offerings. Features is an
// ordered list stored as a JSON column.
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:180;not null" json:"title"`
	Icon        string    `gorm:"size:60" json:"icon"`
	Description string    `gorm:"type:text" json:"description"`
	Features    []string  `gorm:"type:jsonb;serializer:json" json:"features"`
	DocumentURL string    `gorm:"size:255" json:"document_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
