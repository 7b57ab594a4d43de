package handlers

import (
	"fmt"
	"net/http"
	"time"

	"barberli-backend/booking"
	"barberli-backend/models"
	"barberli-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BarbershopHandler struct {
	DB *gorm.DB
}

func (h *BarbershopHandler) GetBarbershops(c *gin.Context) {
	var barbershops []models.Barbershop
	query := h.DB.Preload("Services", "is_active = ?", true).Preload("WorkingHours").Where("is_active = ?", true)

	if city := c.Query("city"); city != "" {
		query = query.Where("LOWER(city) LIKE LOWER(?)", "%"+city+"%")
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(address) LIKE LOWER(?)", like, like, like)
	}

	if err := query.Order("name ASC").Find(&barbershops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch barbershops"})
		return
	}

	c.JSON(http.StatusOK, barbershops)
}

func (h *BarbershopHandler) GetBarbershop(c *gin.Context) {
	id := c.Param("id")

	var barbershop models.Barbershop
	if err := h.DB.Preload("Services", "is_active = ?", true).
		Preload("WorkingHours", func(db *gorm.DB) *gorm.DB { return db.Order("day_of_week ASC") }).
		Where("id = ? AND is_active = ?", id, true).
		First(&barbershop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barbershop not found"})
		return
	}

	c.JSON(http.StatusOK, barbershop)
}

// GetAvailableSlots lists the free start times for a service on a given date.
// A closed day is not an error: it answers 200 with an empty slot list.
func (h *BarbershopHandler) GetAvailableSlots(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barbershop id"})
		return
	}

	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing service_id"})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing date; expected YYYY-MM-DD"})
		return
	}

	var service models.Service
	if err := h.DB.Where("id = ? AND is_active = ?", serviceID, true).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}
	if service.BarbershopID != shopID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service does not belong to the specified barbershop"})
		return
	}

	hours := h.workingHoursFor(shopID, int(date.Weekday()))
	if hours == nil || hours.IsClosed {
		c.JSON(http.StatusOK, gin.H{"slots": []string{}})
		return
	}

	// Existing active reservations occupy slots. Always read from the store:
	// caching these would re-open the double-booking window.
	dayStart := date
	dayEnd := date.Add(24 * time.Hour)
	var reservations []models.Reservation
	if err := h.DB.Where(
		"barbershop_id = ? AND status IN ? AND start_time >= ? AND start_time < ?",
		shopID,
		[]models.ReservationStatus{models.ReservationStatusPending, models.ReservationStatusConfirmed},
		dayStart, dayEnd,
	).Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	busy := make([]booking.Interval, 0, len(reservations))
	for _, r := range reservations {
		busy = append(busy, booking.ReservationInterval(r))
	}

	duration := time.Duration(service.DurationMinutes) * time.Minute
	slots := booking.AvailableSlots(hours, date, duration, busy)

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Format(time.RFC3339))
	}

	c.JSON(http.StatusOK, gin.H{"slots": out})
}

// workingHoursFor returns the hours entry for one weekday, going through the
// short-TTL schedule cache. A nil result means no entry exists for that day.
func (h *BarbershopHandler) workingHoursFor(shopID uuid.UUID, dayOfWeek int) *models.WorkingHours {
	week, ok := utils.Schedules.Get(shopID)
	if !ok {
		if err := h.DB.Where("barbershop_id = ?", shopID).Order("day_of_week").Find(&week).Error; err != nil {
			return nil
		}
		utils.Schedules.Set(shopID, week)
	}

	for i := range week {
		if week[i].DayOfWeek == dayOfWeek {
			return &week[i]
		}
	}
	return nil
}

// ==================== Admin management ====================

func (h *BarbershopHandler) CreateBarbershop(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Address     string  `json:"address" binding:"required"`
		City        string  `json:"city" binding:"required"`
		PostalCode  string  `json:"postal_code"`
		Phone       string  `json:"phone"`
		Email       string  `json:"email"`
		Website     string  `json:"website"`
		ImageURL    string  `json:"image_url"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	barbershop := models.Barbershop{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsActive:    true,
	}

	if err := h.DB.Create(&barbershop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create barbershop"})
		return
	}

	c.JSON(http.StatusCreated, barbershop)
}

func (h *BarbershopHandler) UpdateBarbershop(c *gin.Context) {
	id := c.Param("id")

	var barbershop models.Barbershop
	if err := h.DB.Where("id = ?", id).First(&barbershop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barbershop not found"})
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Address     *string  `json:"address"`
		City        *string  `json:"city"`
		PostalCode  *string  `json:"postal_code"`
		Phone       *string  `json:"phone"`
		Email       *string  `json:"email"`
		Website     *string  `json:"website"`
		ImageURL    *string  `json:"image_url"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		IsActive    *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&barbershop).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update barbershop"})
			return
		}
	}

	h.DB.Preload("Services").Preload("WorkingHours").First(&barbershop, barbershop.ID)
	c.JSON(http.StatusOK, barbershop)
}

func (h *BarbershopHandler) GetWorkingHours(c *gin.Context) {
	id := c.Param("id")

	var hours []models.WorkingHours
	if err := h.DB.Where("barbershop_id = ?", id).Order("day_of_week").Find(&hours).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch working hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}

func (h *BarbershopHandler) UpdateWorkingHours(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barbershop id"})
		return
	}

	var barbershop models.Barbershop
	if err := h.DB.Where("id = ?", shopID).First(&barbershop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barbershop not found"})
		return
	}

	var req []struct {
		DayOfWeek int    `json:"day_of_week"`
		OpenTime  string `json:"open_time" binding:"required"`
		CloseTime string `json:"close_time" binding:"required"`
		IsClosed  bool   `json:"is_closed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	for _, entry := range req {
		if entry.DayOfWeek < 0 || entry.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid day_of_week %d; expected 0 (Sunday) to 6 (Saturday)", entry.DayOfWeek)})
			return
		}
		if !booking.ValidClock(entry.OpenTime) || !booking.ValidClock(entry.CloseTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Times for day %d must be zero-padded 24-hour HH:MM", entry.DayOfWeek)})
			return
		}
		if !entry.IsClosed && entry.CloseTime <= entry.OpenTime {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Close time (%s) must be after open time (%s) for day %d", entry.CloseTime, entry.OpenTime, entry.DayOfWeek),
			})
			return
		}
	}

	for _, entry := range req {
		var existing models.WorkingHours
		err := h.DB.Where("barbershop_id = ? AND day_of_week = ?", shopID, entry.DayOfWeek).First(&existing).Error
		if err != nil {
			h.DB.Create(&models.WorkingHours{
				ID:           uuid.New(),
				BarbershopID: shopID,
				DayOfWeek:    entry.DayOfWeek,
				OpenTime:     entry.OpenTime,
				CloseTime:    entry.CloseTime,
				IsClosed:     entry.IsClosed,
			})
			continue
		}
		h.DB.Model(&existing).Updates(map[string]interface{}{
			"open_time":  entry.OpenTime,
			"close_time": entry.CloseTime,
			"is_closed":  entry.IsClosed,
		})
	}

	utils.Schedules.Invalidate(shopID)

	var hours []models.WorkingHours
	h.DB.Where("barbershop_id = ?", shopID).Order("day_of_week").Find(&hours)
	c.JSON(http.StatusOK, hours)
}

func (h *BarbershopHandler) CreateService(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barbershop id"})
		return
	}

	var barbershop models.Barbershop
	if err := h.DB.Where("id = ?", shopID).First(&barbershop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barbershop not found"})
		return
	}

	var req struct {
		Name            string  `json:"name" binding:"required"`
		Description     string  `json:"description"`
		DurationMinutes int     `json:"duration_minutes" binding:"required,min=1"`
		Price           float64 `json:"price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	service := models.Service{
		ID:              uuid.New(),
		BarbershopID:    shopID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}

	if err := h.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *BarbershopHandler) UpdateService(c *gin.Context) {
	serviceID := c.Param("service_id")

	var service models.Service
	if err := h.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		DurationMinutes *int     `json:"duration_minutes"`
		Price           *float64 `json:"price"`
		IsActive        *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be at least 1 minute"})
			return
		}
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&service).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
			return
		}
	}

	c.JSON(http.StatusOK, service)
}

func (h *BarbershopHandler) DeleteService(c *gin.Context) {
	serviceID := c.Param("service_id")

	var service models.Service
	if err := h.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	// Soft delete keeps the service resolvable from historical reservations.
	if err := h.DB.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}
