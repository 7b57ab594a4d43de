package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkingHours holds one weekly opening-hours entry per day of week.
// A barbershop has at most 7 entries; a missing entry means closed that day.
type WorkingHours struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BarbershopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_working_hours_shop_day" json:"barbershop_id"`
	DayOfWeek    int       `gorm:"not null;uniqueIndex:idx_working_hours_shop_day" json:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime     string    `gorm:"not null;default:'09:00'" json:"open_time"`
	CloseTime    string    `gorm:"not null;default:'19:00'" json:"close_time"`
	IsClosed     bool      `gorm:"default:false" json:"is_closed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (w *WorkingHours) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
