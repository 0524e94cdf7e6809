package services

import (
	"context"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
)

type AvailabilityService struct {
	repo models.AvailabilityRepo
	now  func() time.Time
}

func NewAvailabilityService(repo models.AvailabilityRepo) *AvailabilityService {
	return &AvailabilityService{repo: repo, now: time.Now}
}

type AvailabilityInput struct {
	RealtorID string
	Type      string
	Date      string
	StartTime string
	EndTime   string
	StartDate string
	EndDate   string
	Note      string
}

// CreateBlackout records a period in which the calling realtor cannot take appointments.
func (as *AvailabilityService) CreateBlackout(ctx context.Context, caller *helpers.Claims, in AvailabilityInput) (*models.RealtorAvailability, error) {
	realtorID := strings.TrimSpace(in.RealtorID)
	if realtorID == "" && caller != nil {
		realtorID = caller.UserID
	}
	rid, err := models.ParseID("realtor", realtorID)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsOwner(rid.Hex()) {
		return nil, httperr.New(httperr.Forbidden, "realtors can only manage their own availability")
	}

	a := &models.RealtorAvailability{
		Realtor:   rid,
		Type:      models.BlackoutType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Date:      strings.TrimSpace(in.Date),
		StartTime: strings.TrimSpace(in.StartTime),
		EndTime:   strings.TrimSpace(in.EndTime),
		StartDate: strings.TrimSpace(in.StartDate),
		EndDate:   strings.TrimSpace(in.EndDate),
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: as.now().UTC(),
	}
	// only keep the fields that belong to the type
	switch a.Type {
	case models.BlackoutDay:
		a.StartTime, a.EndTime, a.StartDate, a.EndDate = "", "", "", ""
	case models.BlackoutTime:
		a.StartDate, a.EndDate = "", ""
	case models.BlackoutRange:
		a.Date, a.StartTime, a.EndTime = "", "", ""
	}
	if err := a.Check(); err != nil {
		return nil, err
	}
	return as.repo.CreateAvailability(ctx, a)
}

func (as *AvailabilityService) ListBlackouts(ctx context.Context, realtorID string) ([]*models.RealtorAvailability, error) {
	if strings.TrimSpace(realtorID) == "" {
		return as.repo.ListAvailability(ctx, nil)
	}
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}
	return as.repo.ListAvailability(ctx, &rid)
}

// CancelBlackout soft-deletes a blackout owned by the caller and returns it.
func (as *AvailabilityService) CancelBlackout(ctx context.Context, caller *helpers.Claims, id string) (*models.RealtorAvailability, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, httperr.New(httperr.Unauthenticated, "authentication required")
	}

	// a foreign or already cancelled id reads as missing
	rid, err := models.ParseID("realtor", caller.UserID)
	if err != nil {
		return nil, httperr.New(httperr.Unauthenticated, "authentication required")
	}
	mine, err := as.repo.ListAvailability(ctx, &rid)
	if err != nil {
		return nil, err
	}
	owned := false
	for _, a := range mine {
		if a.ID == oid {
			owned = true
			break
		}
	}
	if !owned {
		return nil, httperr.Missing("availability")
	}
	return as.repo.CancelAvailability(ctx, oid)
}

// BlackoutsOn returns the realtor's blackouts that touch [start, end) on day.
func (as *AvailabilityService) BlackoutsOn(ctx context.Context, realtorID, date, start, end string) ([]*models.RealtorAvailability, error) {
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}
	day, err := models.ParseDay(date)
	if err != nil {
		return nil, err
	}
	s, e := 0, 24*60
	if start != "" || end != "" {
		if s, e, err = models.ParseRange(start, end); err != nil {
			return nil, err
		}
	}

	all, err := as.repo.ListAvailability(ctx, &rid)
	if err != nil {
		return nil, err
	}
	hits := []*models.RealtorAvailability{}
	for _, a := range all {
		if a.Blocks(day, s, e) {
			hits = append(hits, a)
		}
	}
	return hits, nil
}
