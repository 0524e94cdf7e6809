package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Email struct {
	To      string
	Subject string
	HTML    string
}

// BookingDetails is the data every booking email renders.
type BookingDetails struct {
	RecipientName    string
	PropertyTitle    string
	PropertyLocation string
	Date             string
	StartTime        string
	EndTime          string
	Mode             string
	Notes            string
	ClientName       string
	ClientEmail      string
	ClientPhone      string
	ZoomLink         string
	OfficeAddress    string
}

const (
	SubjectBookingReceived  = "Booking Request Received"
	SubjectBookingRequest   = "New Booking Request - Action Required"
	SubjectBookingConfirmed = "Your Appointment is Confirmed"
	SubjectBookingCancelled = "Your Appointment has been Cancelled"
	SubjectRealtorConfirmed = "New Appointment Confirmed"
	SubjectRealtorCancelled = "Appointment Cancelled"
	SubjectPasswordReset    = "Password Reset Request"
)

func render(name, subject, to string, data interface{}) (Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Email{}, fmt.Errorf("failed to render %s email: %v", name, err)
	}
	return Email{To: to, Subject: subject, HTML: buf.String()}, nil
}

// BookingReceived goes to the client right after a booking request is stored.
func BookingReceived(to string, d BookingDetails) (Email, error) {
	return render("booking_received", SubjectBookingReceived, to, d)
}

// BookingRequest asks the realtor to act on a new booking.
func BookingRequest(to string, d BookingDetails) (Email, error) {
	return render("booking_request", SubjectBookingRequest, to, d)
}

func BookingConfirmed(to string, d BookingDetails) (Email, error) {
	return render("booking_confirmed", SubjectBookingConfirmed, to, d)
}

func BookingCancelled(to string, d BookingDetails) (Email, error) {
	return render("booking_cancelled", SubjectBookingCancelled, to, d)
}

func RealtorConfirmed(to string, d BookingDetails) (Email, error) {
	return render("realtor_confirmed", SubjectRealtorConfirmed, to, d)
}

func RealtorCancelled(to string, d BookingDetails) (Email, error) {
	return render("realtor_cancelled", SubjectRealtorCancelled, to, d)
}

func PasswordReset(to, link string) (Email, error) {
	return render("password_reset", SubjectPasswordReset, to, struct{ Link string }{link})
}
