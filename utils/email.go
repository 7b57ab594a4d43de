package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

// ReservationEmailData carries everything the reservation emails need, so the
// sender never reaches back into the database.
type ReservationEmailData struct {
	CustomerName      string
	CustomerEmail     string
	BarbershopName    string
	BarbershopAddress string
	BarbershopPhone   string
	ServiceName       string
	ServicePrice      float64
	AppointmentDate   string
	AppointmentTime   string
	Notes             string
}

func reservationDetailsHTML(data ReservationEmailData) string {
	notes := ""
	if data.Notes != "" {
		notes = fmt.Sprintf("<li>Notes: %s</li>", data.Notes)
	}
	return fmt.Sprintf(`<ul>
<li>Barbershop: <strong>%s</strong></li>
<li>Address: %s</li>
<li>Phone: %s</li>
<li>Service: %s</li>
<li>Date: %s at %s</li>
<li>Price: <strong>%.2f MAD</strong></li>
%s
</ul>`, data.BarbershopName, data.BarbershopAddress, data.BarbershopPhone,
		data.ServiceName, data.AppointmentDate, data.AppointmentTime, data.ServicePrice, notes)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to BarberLi!"
		body := fmt.Sprintf(`<h2>Welcome to BarberLi, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Browse barbershops near you</li>
<li>Book appointments online in a few clicks</li>
<li>Manage your reservations from your dashboard</li>
</ul>
<p>See you soon!</p>
<p>The BarberLi Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

// SendReservationConfirmation notifies the customer that their reservation was
// placed. Runs in a goroutine; a delivery failure is logged and never affects
// the booking itself.
func SendReservationConfirmation(data ReservationEmailData) {
	go func() {
		subject := fmt.Sprintf("Reservation Confirmed - %s", data.BarbershopName)
		body := fmt.Sprintf(`<h2>Reservation Confirmed!</h2>
<p>Hi %s,</p>
<p>Your reservation has been placed successfully. Here are the details:</p>
%s
<p>You can cancel free of charge up to 2 hours before your appointment.</p>
<p>The BarberLi Team</p>`, strings.Split(data.CustomerName, " ")[0], reservationDetailsHTML(data))
		if err := SendEmail(data.CustomerEmail, subject, body); err != nil {
			log.Printf("Failed to send reservation confirmation to %s: %v", data.CustomerEmail, err)
		}
	}()
}

// SendReservationCancellation notifies the customer that their reservation was
// cancelled. Same fire-and-forget contract as the confirmation email.
func SendReservationCancellation(data ReservationEmailData) {
	go func() {
		subject := fmt.Sprintf("Reservation Cancelled - %s", data.BarbershopName)
		body := fmt.Sprintf(`<h2>Reservation Cancelled</h2>
<p>Hi %s,</p>
<p>Your reservation has been cancelled. For reference:</p>
%s
<p>We hope to see you again soon.</p>
<p>The BarberLi Team</p>`, strings.Split(data.CustomerName, " ")[0], reservationDetailsHTML(data))
		if err := SendEmail(data.CustomerEmail, subject, body); err != nil {
			log.Printf("Failed to send reservation cancellation to %s: %v", data.CustomerEmail, err)
		}
	}()
}

// SendReservationStatusUpdate notifies the customer after an admin status
// change (confirmed, completed).
func SendReservationStatusUpdate(email, name, barbershopName, status string) {
	go func() {
		subject := fmt.Sprintf("Reservation Update - %s", barbershopName)
		body := fmt.Sprintf(`<h2>Reservation Status Update</h2>
<p>Hi %s,</p>
<p>Your reservation at <strong>%s</strong> is now: <strong>%s</strong></p>
<p>The BarberLi Team</p>`, strings.Split(name, " ")[0], barbershopName, status)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send status update email to %s: %v", email, err)
		}
	}()
}
