package utils

import (
	"sync"
	"time"

	"barberli-backend/models"

	"github.com/google/uuid"
)

// ScheduleCacheTTL bounds how stale a cached weekly schedule may be. Opening
// hours change rarely, so a short staleness window is acceptable for slot
// listing. Reservations are NEVER cached: staleness there causes double
// bookings.
const ScheduleCacheTTL = 1 * time.Minute

type scheduleEntry struct {
	hours     []models.WorkingHours
	fetchedAt time.Time
}

// ScheduleCache is an in-memory TTL cache of weekly working hours per
// barbershop.
type ScheduleCache struct {
	entries map[uuid.UUID]*scheduleEntry
	mu      sync.RWMutex
}

// Global schedule cache instance, used by the slot listing path.
var Schedules = NewScheduleCache()

func NewScheduleCache() *ScheduleCache {
	return &ScheduleCache{entries: make(map[uuid.UUID]*scheduleEntry)}
}

// Get returns the cached weekly hours for a barbershop, if still fresh.
func (sc *ScheduleCache) Get(barbershopID uuid.UUID) ([]models.WorkingHours, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	entry, exists := sc.entries[barbershopID]
	if !exists || time.Since(entry.fetchedAt) > ScheduleCacheTTL {
		return nil, false
	}
	return entry.hours, true
}

// Set stores the weekly hours for a barbershop and prunes expired entries.
func (sc *ScheduleCache) Set(barbershopID uuid.UUID, hours []models.WorkingHours) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	cutoff := time.Now().Add(-ScheduleCacheTTL)
	for id, entry := range sc.entries {
		if entry.fetchedAt.Before(cutoff) {
			delete(sc.entries, id)
		}
	}

	sc.entries[barbershopID] = &scheduleEntry{hours: hours, fetchedAt: time.Now()}
}

// Invalidate drops a barbershop's cached schedule after its hours are edited.
func (sc *ScheduleCache) Invalidate(barbershopID uuid.UUID) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.entries, barbershopID)
}
