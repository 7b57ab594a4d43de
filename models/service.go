package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BarbershopID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"barbershop_id"`
	Barbershop      Barbershop     `gorm:"foreignKey:BarbershopID" json:"barbershop,omitempty"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `json:"description"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"` // must be > 0
	Price           float64        `gorm:"not null" json:"price"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
