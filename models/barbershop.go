package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Barbershop struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null;index" json:"name"`
	Description string         `json:"description"`
	Address     string         `gorm:"not null" json:"address"`
	City        string         `gorm:"not null;index" json:"city"`
	PostalCode  string         `json:"postal_code"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Website     string         `json:"website"`
	ImageURL    string         `json:"image_url"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Services    []Service      `gorm:"foreignKey:BarbershopID" json:"services,omitempty"`
	WorkingHours []WorkingHours `gorm:"foreignKey:BarbershopID" json:"working_hours,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Barbershop) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
