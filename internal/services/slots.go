package services

import (
	"github.com/joshua-takyi/realtorhub/internal/models"
)

// Bookable hours; each slot is one hour and the last one ends at CloseHour.
const (
	OpenHour  = 9
	CloseHour = 18
)

type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DaySlots lists every hourly slot of the business day.
func DaySlots() []Slot {
	slots := make([]Slot, 0, CloseHour-OpenHour)
	for h := OpenHour; h < CloseHour; h++ {
		slots = append(slots, Slot{
			StartTime: models.FormatClock(h * 60),
			EndTime:   models.FormatClock((h + 1) * 60),
		})
	}
	return slots
}

// FreeSlots returns the day's slots that overlap none of the given bookings.
// Cancelled bookings and bookings with unreadable times are ignored.
func FreeSlots(bookings []*models.Booking) []Slot {
	type interval struct{ start, end int }
	taken := make([]interval, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		s, e, err := b.Minutes()
		if err != nil {
			continue
		}
		taken = append(taken, interval{s, e})
	}

	free := []Slot{}
	for h, slot := range DaySlots() {
		start := (OpenHour + h) * 60
		blocked := false
		for _, t := range taken {
			if models.Overlaps(start, start+60, t.start, t.end) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, slot)
		}
	}
	return free
}
