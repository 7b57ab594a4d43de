package database

import (
	"fmt"
	"log"
	"os"

	"barberli-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=barberli port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension)
	// and gist indexing over uuid equality (btree_gist, needed by the no-overlap
	// constraint below).
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist;`).Error; err != nil {
			return fmt.Errorf("failed to enable btree_gist extension: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Barbershop{},
		&models.Service{},
		&models.WorkingHours{},
		&models.Reservation{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		if err := ensureReservationOverlapConstraint(db); err != nil {
			return err
		}
	}

	return nil
}

// ensureReservationOverlapConstraint installs the database-level backstop for
// the core booking invariant: no two pending/confirmed reservations of the
// same barbershop may occupy overlapping [start, start+duration) intervals.
// tstzrange defaults to half-open bounds, so back-to-back appointments are
// allowed. A violating insert fails with SQLSTATE 23P01, which the booking
// handler surfaces as a slot conflict. Safe to run repeatedly.
func ensureReservationOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec(`
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1 FROM pg_constraint
    WHERE conname = 'reservations_no_overlap'
      AND conrelid = 'reservations'::regclass
  ) THEN
    ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
      EXCLUDE USING gist (
        barbershop_id WITH =,
        tstzrange(start_time, start_time + make_interval(mins => duration_minutes)) WITH &&
      ) WHERE (status IN ('pending', 'confirmed'));
  END IF;
END $$;
	`).Error; err != nil {
		return fmt.Errorf("failed to ensure reservations no-overlap constraint: %w", err)
	}
	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@barberli.ma"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}
