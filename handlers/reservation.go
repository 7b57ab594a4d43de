package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"barberli-backend/booking"
	"barberli-backend/models"
	"barberli-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ReservationHandler struct {
	DB *gorm.DB
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// transitionStatus flips a reservation's status only while the row still holds
// the status the caller checked against, so a concurrent update cannot be
// silently overwritten. Returns false when the row changed underneath us.
func transitionStatus(db *gorm.DB, reservation *models.Reservation, to models.ReservationStatus) (bool, error) {
	result := db.Model(reservation).
		Where("status = ?", reservation.Status).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	reservation.Status = to
	return true, nil
}

type createReservationRequest struct {
	BarbershopID uuid.UUID `json:"barbershop_id" binding:"required"`
	ServiceID    uuid.UUID `json:"service_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	Notes        string    `json:"notes"`
}

// CreateReservation books a slot. Validation runs cheapest-first outside the
// transaction; the overlap check and the insert happen inside one transaction
// holding a per-barbershop advisory lock, so two concurrent requests for the
// same slot serialize and exactly one wins. The exclusion constraint on
// reservations is the backstop if anything slips past.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	start := req.StartTime.UTC()
	now := time.Now().UTC()
	if !start.After(now) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot book a time in the past"})
		return
	}

	var service models.Service
	if err := h.DB.Where("id = ? AND is_active = ?", req.ServiceID, true).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}
	if service.BarbershopID != req.BarbershopID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service does not belong to the specified barbershop"})
		return
	}

	var barbershop models.Barbershop
	if err := h.DB.Where("id = ? AND is_active = ?", req.BarbershopID, true).First(&barbershop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barbershop not found"})
		return
	}

	duration := time.Duration(service.DurationMinutes) * time.Minute
	end := start.Add(duration)

	var hours models.WorkingHours
	err := h.DB.Where("barbershop_id = ? AND day_of_week = ?", req.BarbershopID, int(start.Weekday())).First(&hours).Error
	if err != nil || hours.IsClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barbershop is closed on this day"})
		return
	}

	openH, openM, err := booking.ParseClock(hours.OpenTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Working hours are misconfigured"})
		return
	}
	closeH, closeM, err := booking.ParseClock(hours.CloseTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Working hours are misconfigured"})
		return
	}
	year, month, day := start.Date()
	open := time.Date(year, month, day, openH, openM, 0, 0, time.UTC)
	close := time.Date(year, month, day, closeH, closeM, 0, 0, time.UTC)
	if start.Before(open) || end.After(close) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The selected time is outside working hours"})
		return
	}

	reservation := models.Reservation{
		ID:              uuid.New(),
		UserID:          userID,
		BarbershopID:    req.BarbershopID,
		ServiceID:       req.ServiceID,
		StartTime:       start,
		DurationMinutes: service.DurationMinutes,
		TotalPrice:      service.Price,
		Status:          models.ReservationStatusPending,
		Notes:           req.Notes,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			// Serializes concurrent bookings for the same barbershop until
			// this transaction commits or rolls back.
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", req.BarbershopID.String()).Error; err != nil {
				return err
			}
		}

		// No service runs longer than a day, so any conflicting reservation
		// starts within 24h before our slot.
		var existing []models.Reservation
		if err := tx.Where(
			"barbershop_id = ? AND status IN ? AND start_time > ? AND start_time < ?",
			req.BarbershopID,
			[]models.ReservationStatus{models.ReservationStatusPending, models.ReservationStatusConfirmed},
			start.Add(-24*time.Hour), end,
		).Find(&existing).Error; err != nil {
			return err
		}

		for _, r := range existing {
			if booking.Overlaps(start, end, r.StartTime, r.EndTime()) {
				return booking.ErrSlotTaken
			}
		}

		return tx.Create(&reservation).Error
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, booking.ErrSlotTaken) || (errors.As(err, &pgErr) && pgErr.Code == "23P01") {
			c.JSON(http.StatusConflict, gin.H{"error": "This time slot is no longer available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		return
	}

	h.DB.Preload("User").Preload("Barbershop").Preload("Service").First(&reservation, reservation.ID)

	utils.SendReservationConfirmation(utils.ReservationEmailData{
		CustomerName:      reservation.User.Name,
		CustomerEmail:     reservation.User.Email,
		BarbershopName:    barbershop.Name,
		BarbershopAddress: barbershop.Address,
		BarbershopPhone:   barbershop.Phone,
		ServiceName:       service.Name,
		ServicePrice:      reservation.TotalPrice,
		AppointmentDate:   start.Format("2006-01-02"),
		AppointmentTime:   start.Format("15:04"),
		Notes:             reservation.Notes,
	})

	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) GetReservations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.Reservation{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	var reservations []models.Reservation
	if err := query.Preload("Barbershop").Preload("Service").
		Order("start_time DESC").Offset(offset).Limit(limit).
		Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var reservation models.Reservation
	if err := h.DB.Preload("Barbershop").Preload("Service").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&reservation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CancelReservation applies the customer cancellation policy: the caller must
// own the reservation, it must not already be cancelled or completed, and the
// start time must be at least the cutoff away.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var reservation models.Reservation
	if err := h.DB.Preload("User").Preload("Barbershop").Preload("Service").
		Where("id = ?", c.Param("id")).
		First(&reservation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	if err := booking.CanCancel(&reservation, userID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, booking.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own reservations"})
		case errors.Is(err, booking.ErrAlreadyCancelled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation is already cancelled"})
		case errors.Is(err, booking.ErrCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Completed reservations cannot be cancelled"})
		case errors.Is(err, booking.ErrTooLate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reservations can only be cancelled at least 2 hours before the start time"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reservation"})
		}
		return
	}

	updated, err := transitionStatus(h.DB, &reservation, models.ReservationStatusCancelled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reservation"})
		return
	}
	if !updated {
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation was updated concurrently; please retry"})
		return
	}

	utils.SendReservationCancellation(utils.ReservationEmailData{
		CustomerName:      reservation.User.Name,
		CustomerEmail:     reservation.User.Email,
		BarbershopName:    reservation.Barbershop.Name,
		BarbershopAddress: reservation.Barbershop.Address,
		BarbershopPhone:   reservation.Barbershop.Phone,
		ServiceName:       reservation.Service.Name,
		ServicePrice:      reservation.TotalPrice,
		AppointmentDate:   reservation.StartTime.Format("2006-01-02"),
		AppointmentTime:   reservation.StartTime.Format("15:04"),
	})

	c.JSON(http.StatusOK, reservation)
}

// ==================== Admin operations ====================

func (h *ReservationHandler) GetAllReservations(c *gin.Context) {
	query := h.DB.Preload("User").Preload("Barbershop").Preload("Service")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if shopID := c.Query("barbershop_id"); shopID != "" {
		query = query.Where("barbershop_id = ?", shopID)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date; expected YYYY-MM-DD"})
			return
		}
		query = query.Where("start_time >= ? AND start_time < ?", day, day.Add(24*time.Hour))
	}

	var reservations []models.Reservation
	if err := query.Order("start_time DESC").Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// UpdateReservationStatus moves a reservation through its state machine.
// Invalid transitions (anything out of cancelled or completed, or an unknown
// status) are rejected.
func (h *ReservationHandler) UpdateReservationStatus(c *gin.Context) {
	var req struct {
		Status models.ReservationStatus `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	switch req.Status {
	case models.ReservationStatusPending, models.ReservationStatusConfirmed,
		models.ReservationStatusCancelled, models.ReservationStatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status '%s'", req.Status)})
		return
	}

	var reservation models.Reservation
	if err := h.DB.Preload("User").Preload("Barbershop").
		Where("id = ?", c.Param("id")).
		First(&reservation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	if !models.IsValidTransition(reservation.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Cannot change status from '%s' to '%s'", reservation.Status, req.Status),
		})
		return
	}

	updated, err := transitionStatus(h.DB, &reservation, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reservation status"})
		return
	}
	if !updated {
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation was updated concurrently; please retry"})
		return
	}

	utils.SendReservationStatusUpdate(
		reservation.User.Email,
		reservation.User.Name,
		reservation.Barbershop.Name,
		string(req.Status),
	)

	c.JSON(http.StatusOK, reservation)
}
