package services

import (
	"context"
	"testing"

	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/storetest"
)

func TestBlackoutLifecycle(t *testing.T) {
	store := storetest.New()
	realtor := store.AddUser("rita", models.RoleRealtor)
	other := store.AddUser("omar", models.RoleRealtor)
	svc := NewAvailabilityService(store)
	ctx := context.Background()
	me := &helpers.Claims{UserID: realtor.ID.Hex(), Role: string(models.RoleRealtor)}

	day, err := svc.CreateBlackout(ctx, me, AvailabilityInput{Type: "day", Date: "2025-03-10", StartTime: "09:00"})
	if err != nil {
		t.Fatalf("DAY blackout: %v", err)
	}
	if day.Type != models.BlackoutDay || day.StartTime != "" {
		t.Errorf("DAY blackout should drop time fields, got %+v", day)
	}

	if _, err := svc.CreateBlackout(ctx, me, AvailabilityInput{Type: "TIME", Date: "2025-03-11", StartTime: "13:00", EndTime: "15:00"}); err != nil {
		t.Fatalf("TIME blackout: %v", err)
	}
	if _, err := svc.CreateBlackout(ctx, me, AvailabilityInput{Type: "RANGE", StartDate: "2025-04-01", EndDate: "2025-04-07", Note: "vacation"}); err != nil {
		t.Fatalf("RANGE blackout: %v", err)
	}

	invalid := []AvailabilityInput{
		{Type: "TIME", Date: "2025-03-11"},
		{Type: "TIME", Date: "2025-03-11", StartTime: "15:00", EndTime: "13:00"},
		{Type: "RANGE", StartDate: "2025-04-07", EndDate: "2025-04-01"},
		{Type: "WEEK", Date: "2025-03-11"},
		{Type: "DAY"},
	}
	for _, in := range invalid {
		if _, err := svc.CreateBlackout(ctx, me, in); !httperr.Is(err, httperr.InvalidInput) {
			t.Errorf("%+v: expected invalid input, got %v", in, err)
		}
	}

	if _, err := svc.CreateBlackout(ctx, me, AvailabilityInput{RealtorID: other.ID.Hex(), Type: "DAY", Date: "2025-03-10"}); !httperr.Is(err, httperr.Forbidden) {
		t.Errorf("expected forbidden for another realtor's calendar, got %v", err)
	}

	list, err := svc.ListBlackouts(ctx, realtor.ID.Hex())
	if err != nil {
		t.Fatalf("ListBlackouts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 blackouts, got %d", len(list))
	}

	hits, err := svc.BlackoutsOn(ctx, realtor.ID.Hex(), "2025-03-11", "14:00", "15:00")
	if err != nil || len(hits) != 1 {
		t.Fatalf("BlackoutsOn 14:00 = %d, %v", len(hits), err)
	}
	if hits, _ := svc.BlackoutsOn(ctx, realtor.ID.Hex(), "2025-03-11", "09:00", "10:00"); len(hits) != 0 {
		t.Errorf("morning should be free, got %+v", hits)
	}
	if hits, _ := svc.BlackoutsOn(ctx, realtor.ID.Hex(), "2025-04-07", "", ""); len(hits) != 1 {
		t.Errorf("last day of the range should be blocked, got %d", len(hits))
	}

	stranger := &helpers.Claims{UserID: other.ID.Hex(), Role: string(models.RoleRealtor)}
	if _, err := svc.CancelBlackout(ctx, stranger, day.ID.Hex()); !httperr.Is(err, httperr.NotFound) {
		t.Errorf("expected not found for a foreign blackout, got %v", err)
	}

	cancelled, err := svc.CancelBlackout(ctx, me, day.ID.Hex())
	if err != nil {
		t.Fatalf("CancelBlackout: %v", err)
	}
	if !cancelled.Deleted {
		t.Error("expected the blackout to be marked deleted")
	}
	if _, err := svc.CancelBlackout(ctx, me, day.ID.Hex()); !httperr.Is(err, httperr.NotFound) {
		t.Errorf("cancelling twice should read as not found, got %v", err)
	}

	list, _ = svc.ListBlackouts(ctx, realtor.ID.Hex())
	if len(list) != 2 {
		t.Errorf("expected 2 blackouts after cancel, got %d", len(list))
	}
	if hits, _ := svc.BlackoutsOn(ctx, realtor.ID.Hex(), "2025-03-10", "", ""); len(hits) != 0 {
		t.Errorf("a cancelled blackout should not block, got %+v", hits)
	}
}
