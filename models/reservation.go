package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

type Reservation struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BarbershopID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"barbershop_id"`
	Barbershop      Barbershop        `gorm:"foreignKey:BarbershopID" json:"barbershop,omitempty"`
	ServiceID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"service_id"`
	Service         Service           `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	StartTime       time.Time         `gorm:"not null;index" json:"start_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"` // Snapshot of service duration at booking time
	TotalPrice      float64           `gorm:"not null" json:"total_price"`      // Snapshot of service price at booking time
	Status          ReservationStatus `gorm:"default:pending;index" json:"status"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// EndTime returns the exclusive end of the reserved interval.
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// IsActive reports whether the reservation still occupies its time slot.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}

// AllowedTransitions defines the valid reservation status state machine.
// Cancelled and completed are terminal.
var AllowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted},
	ReservationStatusConfirmed: {ReservationStatusCancelled, ReservationStatusCompleted},
	ReservationStatusCancelled: {},
	ReservationStatusCompleted: {},
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to ReservationStatus) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
