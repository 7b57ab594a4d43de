package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barberli-backend/models"
)

func slotsURL(shop models.Barbershop, svc models.Service, date time.Time) string {
	return fmt.Sprintf("/api/barbershops/%s/slots?service_id=%s&date=%s",
		shop.ID, svc.ID, date.Format("2006-01-02"))
}

func TestGetBarbershopsFiltersByCity(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	seedBarbershop(db, "Casa Cuts")
	rabat := seedBarbershop(db, "Rabat Fades")
	db.Model(&rabat).Update("city", "Rabat")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/barbershops?city=rabat", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	shops := parseResponseArray(w)
	if len(shops) != 1 {
		t.Fatalf("expected 1 shop, got %d", len(shops))
	}
}

func TestGetBarbershopsHidesInactive(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	seedBarbershop(db, "Open Shop")
	hidden := seedBarbershop(db, "Closed Down")
	db.Model(&hidden).Update("is_active", false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/barbershops", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if shops := parseResponseArray(w); len(shops) != 1 {
		t.Errorf("expected 1 active shop, got %d", len(shops))
	}
}

func TestGetBarbershopNotFound(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	hidden := seedBarbershop(db, "Gone")
	db.Model(&hidden).Update("is_active", false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/barbershops/"+hidden.ID.String(), nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("inactive shop should 404, got %d", w.Code)
	}
}

func TestGetAvailableSlotsFullDay(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Slots Shop")
	svc := seedService(db, shop.ID, "Haircut", 45, 80)
	seedWorkingHours(db, shop.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, nextMonday()), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	slots, ok := resp["slots"].([]interface{})
	if !ok || len(slots) == 0 {
		t.Fatalf("expected slots, got %v", resp["slots"])
	}

	first, _ := time.Parse(time.RFC3339, slots[0].(string))
	if first.Hour() != 9 || first.Minute() != 0 {
		t.Errorf("first slot should be 09:00, got %v", first)
	}
	last, _ := time.Parse(time.RFC3339, slots[len(slots)-1].(string))
	if last.Hour() != 18 || last.Minute() != 15 {
		t.Errorf("last slot for a 45m service in 09:00-19:00 should be 18:15, got %v", last)
	}
}

func TestGetAvailableSlotsExcludesBooked(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Busy Shop")
	svc := seedService(db, shop.ID, "Haircut", 45, 80)
	seedWorkingHours(db, shop.ID)
	customer, _ := seedTestUser(db, "busy-customer@test.com", "customer")

	day := nextMonday()
	nineAM := day.Add(9 * time.Hour)
	seedReservation(db, customer.ID, shop.ID, svc.ID, nineAM, 45, models.ReservationStatusConfirmed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, day), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	slots := parseResponse(w)["slots"].([]interface{})
	for _, raw := range slots {
		s, _ := time.Parse(time.RFC3339, raw.(string))
		if s.Equal(nineAM) {
			t.Error("09:00 is booked and must not be offered")
		}
		if s.Equal(day.Add(9*time.Hour + 30*time.Minute)) {
			t.Error("09:30 overlaps the 09:00-09:45 booking and must not be offered")
		}
	}
}

func TestGetAvailableSlotsCancelledReservationFreesSlot(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Freed Shop")
	svc := seedService(db, shop.ID, "Haircut", 45, 80)
	seedWorkingHours(db, shop.ID)
	customer, _ := seedTestUser(db, "freed-customer@test.com", "customer")

	day := nextMonday()
	nineAM := day.Add(9 * time.Hour)
	seedReservation(db, customer.ID, shop.ID, svc.ID, nineAM, 45, models.ReservationStatusCancelled)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, day), nil))

	slots := parseResponse(w)["slots"].([]interface{})
	found := false
	for _, raw := range slots {
		s, _ := time.Parse(time.RFC3339, raw.(string))
		if s.Equal(nineAM) {
			found = true
		}
	}
	if !found {
		t.Error("a cancelled reservation must not block its slot")
	}
}

func TestGetAvailableSlotsClosedDay(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Closed Monday")
	svc := seedService(db, shop.ID, "Haircut", 30, 50)
	seedWorkingHours(db, shop.ID)
	seedClosedDay(db, shop.ID, 1) // Monday

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, nextMonday()), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("closed day should still answer 200, got %d", w.Code)
	}
	if slots := parseResponse(w)["slots"].([]interface{}); len(slots) != 0 {
		t.Errorf("closed day should have no slots, got %d", len(slots))
	}
}

func TestGetAvailableSlotsUnknownService(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "No Service")
	seedWorkingHours(db, shop.ID)

	url := fmt.Sprintf("/api/barbershops/%s/slots?service_id=%s&date=%s",
		shop.ID, "11111111-1111-1111-1111-111111111111", nextMonday().Format("2006-01-02"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", url, nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetAvailableSlotsServiceFromOtherShop(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Shop A")
	other := seedBarbershop(db, "Shop B")
	foreign := seedService(db, other.ID, "Other Cut", 30, 50)
	seedWorkingHours(db, shop.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, foreign, nextMonday()), nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetAvailableSlotsBadDate(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)

	shop := seedBarbershop(db, "Bad Date")
	svc := seedService(db, shop.ID, "Haircut", 30, 50)

	url := fmt.Sprintf("/api/barbershops/%s/slots?service_id=%s&date=07-09-2026", shop.ID, svc.ID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", url, nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed date, got %d", w.Code)
	}
}

// ==================== Admin management ====================

func TestCreateBarbershopRequiresAdmin(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, customerToken := seedTestUser(db, "not-admin@test.com", "customer")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/barbershops", map[string]string{
		"name": "Nope", "address": "A", "city": "C",
	}, customerToken))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", w.Code)
	}
}

func TestCreateBarbershopAsAdmin(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "admin@test.com", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/barbershops", map[string]interface{}{
		"name":    "New Shop",
		"address": "5 Avenue Mohammed V",
		"city":    "Marrakech",
	}, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Barbershop{}).Where("name = ?", "New Shop").Count(&count)
	if count != 1 {
		t.Error("barbershop should have been created")
	}
}

func TestUpdateWorkingHoursValidation(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "hours-admin@test.com", "admin")
	shop := seedBarbershop(db, "Hours Shop")

	url := "/api/admin/barbershops/" + shop.ID.String() + "/working-hours"

	tests := []struct {
		name string
		body []map[string]interface{}
		want int
	}{
		{
			name: "valid upsert",
			body: []map[string]interface{}{{"day_of_week": 1, "open_time": "10:00", "close_time": "18:00"}},
			want: http.StatusOK,
		},
		{
			name: "bad clock format",
			body: []map[string]interface{}{{"day_of_week": 1, "open_time": "9am", "close_time": "18:00"}},
			want: http.StatusBadRequest,
		},
		{
			name: "close before open",
			body: []map[string]interface{}{{"day_of_week": 1, "open_time": "18:00", "close_time": "09:00"}},
			want: http.StatusBadRequest,
		},
		{
			name: "day out of range",
			body: []map[string]interface{}{{"day_of_week": 7, "open_time": "09:00", "close_time": "18:00"}},
			want: http.StatusBadRequest,
		},
		{
			name: "closed day ignores ordering",
			body: []map[string]interface{}{{"day_of_week": 2, "open_time": "18:00", "close_time": "09:00", "is_closed": true}},
			want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authRequest("PUT", url, tt.body, adminToken))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateWorkingHoursUpserts(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "upsert-admin@test.com", "admin")
	shop := seedBarbershop(db, "Upsert Shop")
	seedWorkingHours(db, shop.ID)

	url := "/api/admin/barbershops/" + shop.ID.String() + "/working-hours"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", url, []map[string]interface{}{
		{"day_of_week": 1, "open_time": "11:00", "close_time": "17:00"},
	}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var row models.WorkingHours
	db.Where("barbershop_id = ? AND day_of_week = ?", shop.ID, 1).First(&row)
	if row.OpenTime != "11:00" || row.CloseTime != "17:00" {
		t.Errorf("existing row should have been updated, got %s-%s", row.OpenTime, row.CloseTime)
	}

	var count int64
	db.Model(&models.WorkingHours{}).Where("barbershop_id = ? AND day_of_week = ?", shop.ID, 1).Count(&count)
	if count != 1 {
		t.Errorf("expected a single row per day, got %d", count)
	}
}

func TestUpdateWorkingHoursInvalidatesSlotCache(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "cache-admin@test.com", "admin")
	shop := seedBarbershop(db, "Cache Shop")
	svc := seedService(db, shop.ID, "Haircut", 30, 50)
	seedWorkingHours(db, shop.ID)

	day := nextMonday()

	// Prime the schedule cache.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, day), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("priming request failed: %d", w.Code)
	}

	// Close Monday; the next slot listing must see it immediately.
	url := "/api/admin/barbershops/" + shop.ID.String() + "/working-hours"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", url, []map[string]interface{}{
		{"day_of_week": 1, "open_time": "09:00", "close_time": "19:00", "is_closed": true},
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("hours update failed: %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", slotsURL(shop, svc, day), nil))
	if slots := parseResponse(w)["slots"].([]interface{}); len(slots) != 0 {
		t.Errorf("stale cached hours served after update: got %d slots", len(slots))
	}
}

func TestServiceLifecycle(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "svc-admin@test.com", "admin")
	shop := seedBarbershop(db, "Service Shop")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/barbershops/"+shop.ID.String()+"/services", map[string]interface{}{
		"name":             "Beard Trim",
		"duration_minutes": 30,
		"price":            40.0,
	}, adminToken))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := parseResponse(w)
	serviceID, _ := created["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/services/"+serviceID, map[string]interface{}{
		"price": 45.0,
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/admin/services/"+serviceID, nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	var count int64
	db.Model(&models.Service{}).Where("id = ?", serviceID).Count(&count)
	if count != 0 {
		t.Error("deleted service should not be visible through default queries")
	}
}

func TestUpdateServiceRejectsBadValues(t *testing.T) {
	db := freshDB()
	router := setupBarbershopRouter(db)
	_, adminToken := seedTestUser(db, "bad-svc-admin@test.com", "admin")
	shop := seedBarbershop(db, "Bad Values Shop")
	svc := seedService(db, shop.ID, "Haircut", 30, 50)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/services/"+svc.ID.String(), map[string]interface{}{
		"duration_minutes": 0,
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero duration: expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/services/"+svc.ID.String(), map[string]interface{}{
		"price": -5.0,
	}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative price: expected 400, got %d", w.Code)
	}
}
