package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingSold      BookingStatus = "SOLD"
	BookingCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingSold, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status update from s to next is allowed.
// Only pending bookings move, and only to confirmed or cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingPending {
		return false
	}
	return next == BookingConfirmed || next == BookingCancelled
}

type BookingMode string

const (
	ModeInPerson BookingMode = "IN_PERSON"
	ModeZoom     BookingMode = "ZOOM"
)

func (m BookingMode) Valid() bool {
	return m == ModeInPerson || m == ModeZoom
}

type Booking struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Date          time.Time           `bson:"date" json:"date"`
	Day           string              `bson:"day" json:"day"`
	StartTime     string              `bson:"start_time" json:"start_time"`
	EndTime       string              `bson:"end_time" json:"end_time"`
	Mode          BookingMode         `bson:"mode" json:"mode"`
	Status        BookingStatus       `bson:"status" json:"status"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Realtor       primitive.ObjectID  `bson:"realtor" json:"realtor"`
	Client        primitive.ObjectID  `bson:"client" json:"client"`
	Property      primitive.ObjectID  `bson:"property" json:"property"`
	CreatedBy     *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	IsRealtor     bool                `bson:"is_realtor" json:"is_realtor"`
	Name          string              `bson:"name,omitempty" json:"name,omitempty"`
	Email         string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string              `bson:"phone,omitempty" json:"phone,omitempty"`
	ZoomLink      string              `bson:"zoom_link,omitempty" json:"zoom_link,omitempty"`
	OfficeAddress string              `bson:"office_address,omitempty" json:"office_address,omitempty"`
	Active        bool                `bson:"active" json:"-"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// Minutes returns the booked interval in minutes since midnight.
func (b *Booking) Minutes() (int, int, error) {
	return ParseRange(b.StartTime, b.EndTime)
}

// BookingTransition is the set of fields written when a booking changes status.
type BookingTransition struct {
	Status        BookingStatus
	ZoomLink      string
	OfficeAddress string
}
