package models

import (
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlackoutType string

const (
	BlackoutDay   BlackoutType = "DAY"
	BlackoutTime  BlackoutType = "TIME"
	BlackoutRange BlackoutType = "RANGE"
)

// RealtorAvailability is a period in which a realtor is not available.
type RealtorAvailability struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Realtor   primitive.ObjectID `bson:"realtor" json:"realtor"`
	Type      BlackoutType       `bson:"type" json:"type"`
	Date      string             `bson:"date,omitempty" json:"date,omitempty"`             // YYYY-MM-DD
	StartTime string             `bson:"start_time,omitempty" json:"start_time,omitempty"` // HH:MM
	EndTime   string             `bson:"end_time,omitempty" json:"end_time,omitempty"`     // HH:MM
	StartDate string             `bson:"start_date,omitempty" json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string             `bson:"end_date,omitempty" json:"end_date,omitempty"`     // YYYY-MM-DD
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	Deleted   bool               `bson:"deleted" json:"deleted"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Check validates the fields required by the blackout's type.
func (a *RealtorAvailability) Check() error {
	if a.Realtor.IsZero() {
		return httperr.Invalid("realtor is required")
	}
	switch a.Type {
	case BlackoutDay:
		if _, err := time.Parse(DayLayout, a.Date); err != nil {
			return httperr.Invalid("a DAY blackout needs a date in YYYY-MM-DD form")
		}
	case BlackoutTime:
		if _, err := time.Parse(DayLayout, a.Date); err != nil {
			return httperr.Invalid("a TIME blackout needs a date in YYYY-MM-DD form")
		}
		if a.StartTime == "" || a.EndTime == "" {
			return httperr.Invalid("a TIME blackout needs a start and end time")
		}
		if _, _, err := ParseRange(a.StartTime, a.EndTime); err != nil {
			return err
		}
	case BlackoutRange:
		start, err1 := time.Parse(DayLayout, a.StartDate)
		end, err2 := time.Parse(DayLayout, a.EndDate)
		if err1 != nil || err2 != nil {
			return httperr.Invalid("a RANGE blackout needs a start and end date in YYYY-MM-DD form")
		}
		if end.Before(start) {
			return httperr.Invalid("start date %s must not be after end date %s", a.StartDate, a.EndDate)
		}
	default:
		return httperr.Invalid("type must be one of DAY, TIME, RANGE")
	}
	return nil
}

// Blocks reports whether the blackout covers any part of [start, end) minutes on day.
func (a *RealtorAvailability) Blocks(day time.Time, start, end int) bool {
	if a.Deleted {
		return false
	}
	ds := DayKey(day)
	switch a.Type {
	case BlackoutDay:
		return a.Date == ds
	case BlackoutTime:
		if a.Date != ds {
			return false
		}
		s, e, err := ParseRange(a.StartTime, a.EndTime)
		if err != nil {
			return false
		}
		return Overlaps(start, end, s, e)
	case BlackoutRange:
		startT, err1 := time.Parse(DayLayout, a.StartDate)
		endT, err2 := time.Parse(DayLayout, a.EndDate)
		if err1 != nil || err2 != nil {
			return false
		}
		d := DayStart(day)
		// inclusive on both ends
		return !d.Before(startT) && !d.After(endT)
	}
	return false
}
