package booking

import (
	"time"

	"github.com/google/uuid"

	"barberli-backend/models"
)

// CancellationCutoff is how long before the start time a customer may still
// cancel. Evaluated against "now" at the moment of the request, not at
// booking time.
const CancellationCutoff = 2 * time.Hour

// CanCancel checks the cancellation policy for a reservation, in order:
// ownership, terminal states, then the cutoff. A cancellation at exactly the
// cutoff boundary is still allowed.
func CanCancel(r *models.Reservation, userID uuid.UUID, now time.Time) error {
	if r.UserID != userID {
		return ErrForbidden
	}
	if r.Status == models.ReservationStatusCancelled {
		return ErrAlreadyCancelled
	}
	if r.Status == models.ReservationStatusCompleted {
		return ErrCompleted
	}
	if r.StartTime.Sub(now) < CancellationCutoff {
		return ErrTooLate
	}
	return nil
}
