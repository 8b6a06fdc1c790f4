package domain

import (
	"time"

	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusReviewed  QuoteStatus = "reviewed"
	QuoteStatusContacted QuoteStatus = "contacted"
)

// Quote is a visitor inquiry submitted through the public contact form.
// Status moves between the three values in any order, driven manually
// by an admin; no transition history is kept.
type Quote struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"size:140;not null" json:"name"`
	Email     string      `gorm:"size:140;not null;index" json:"email"`
	Phone     string      `gorm:"size:50" json:"phone"`
	Message   string      `gorm:"type:text;not null" json:"message"`
	Status    QuoteStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusReviewed, QuoteStatusContacted:
		return true
	}
	return false
}

// BeforeCreate defaults the status so a bare contact-form insert always
// lands as pending.
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.Status == "" {
		q.Status = QuoteStatusPending
	}
	return nil
}
