package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/meeting"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const meetingTopic = "Real Estate Client Meeting"

type BookingService struct {
	bookings      models.BookingRepo
	properties    models.PropertyRepo
	users         models.UserRepo
	mail          EmailQueue
	meetings      MeetingScheduler
	officeAddress string
	location      *time.Location
	logger        *slog.Logger
	now           func() time.Time
}

type BookingServiceConfig struct {
	OfficeAddress string
	Timezone      string
}

func NewBookingService(
	bookings models.BookingRepo,
	properties models.PropertyRepo,
	users models.UserRepo,
	mail EmailQueue,
	meetings MeetingScheduler,
	cfg BookingServiceConfig,
	logger *slog.Logger,
) *BookingService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
	}
	return &BookingService{
		bookings:      bookings,
		properties:    properties,
		users:         users,
		mail:          mail,
		meetings:      meetings,
		officeAddress: cfg.OfficeAddress,
		location:      loc,
		logger:        logger,
		now:           time.Now,
	}
}

// AvailableSlots returns the hourly slots of a day not taken by an active booking
// of the same property and realtor.
func (bs *BookingService) AvailableSlots(ctx context.Context, date, propertyID, realtorID string) ([]Slot, error) {
	day, err := models.ParseDay(date)
	if err != nil {
		return nil, err
	}
	pid, err := models.ParseID("propertyId", propertyID)
	if err != nil {
		return nil, err
	}
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}

	booked, err := bs.bookings.ActiveBookingsForSlotDay(ctx, pid, rid, models.DayKey(day))
	if err != nil {
		return nil, err
	}
	return FreeSlots(booked), nil
}

type BookingInput struct {
	Date       string
	Slot       string
	StartTime  string
	EndTime    string
	Mode       string
	Status     string
	Notes      string
	ClientID   string
	RealtorID  string
	PropertyID string
	Name       string
	Email      string
	Phone      string
}

// bookingDraft is the validated, storage-ready part shared by both creation paths.
type bookingDraft struct {
	day        time.Time
	start, end int
	startText  string
	endText    string
	mode       models.BookingMode
	client     primitive.ObjectID
	realtor    primitive.ObjectID
	property   primitive.ObjectID
}

func (bs *BookingService) draft(date, start, end, mode, clientID, realtorID, propertyID string) (*bookingDraft, error) {
	d := &bookingDraft{}
	var err error
	if d.day, err = models.ParseDay(date); err != nil {
		return nil, err
	}
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, httperr.Invalid("startTime and endTime are required")
	}
	if d.start, d.end, err = models.ParseRange(start, end); err != nil {
		return nil, err
	}
	d.startText, d.endText = models.FormatClock(d.start), models.FormatClock(d.end)

	d.mode = models.BookingMode(strings.TrimSpace(mode))
	if !d.mode.Valid() {
		return nil, httperr.Invalid("mode must be IN_PERSON or ZOOM")
	}
	if d.client, err = models.ParseID("clientId", clientID); err != nil {
		return nil, err
	}
	if d.realtor, err = models.ParseID("realtorId", realtorID); err != nil {
		return nil, err
	}
	if d.property, err = models.ParseID("propertyId", propertyID); err != nil {
		return nil, err
	}
	return d, nil
}

// checkReferences makes sure the property, realtor and client exist.
func (bs *BookingService) checkReferences(ctx context.Context, d *bookingDraft) (*models.Property, *models.User, *models.User, error) {
	property, err := bs.properties.GetPropertyByID(ctx, d.property)
	if err != nil {
		return nil, nil, nil, err
	}
	realtor, err := bs.users.GetUserByID(ctx, d.realtor)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, nil, nil, httperr.Missing("realtor")
		}
		return nil, nil, nil, err
	}
	if !realtor.IsRealtor() {
		return nil, nil, nil, httperr.Invalid("realtorId does not belong to a realtor")
	}
	client, err := bs.users.GetUserByID(ctx, d.client)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, nil, nil, httperr.Missing("client")
		}
		return nil, nil, nil, err
	}
	return property, realtor, client, nil
}

// checkConflict rejects an interval that overlaps another active booking of the realtor.
func (bs *BookingService) checkConflict(ctx context.Context, d *bookingDraft) error {
	existing, err := bs.bookings.ActiveBookingsForRealtorDay(ctx, d.realtor, models.DayKey(d.day))
	if err != nil {
		return err
	}
	for _, b := range existing {
		s, e, err := b.Minutes()
		if err != nil {
			continue
		}
		if models.Overlaps(d.start, d.end, s, e) {
			return httperr.New(httperr.Conflict, "the realtor is already booked from %s to %s on %s", b.StartTime, b.EndTime, b.Day)
		}
	}
	return nil
}

func (d *bookingDraft) booking(now time.Time) *models.Booking {
	return &models.Booking{
		Date:      d.day,
		Day:       models.DayKey(d.day),
		StartTime: d.startText,
		EndTime:   d.endText,
		Mode:      d.mode,
		Status:    models.BookingPending,
		Realtor:   d.realtor,
		Client:    d.client,
		Property:  d.property,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateBooking stores a client's viewing request as PENDING and notifies both parties.
func (bs *BookingService) CreateBooking(ctx context.Context, in BookingInput) (*models.Booking, error) {
	start, end := in.StartTime, in.EndTime
	if strings.TrimSpace(in.Slot) != "" && (strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "") {
		var err error
		if start, end, err = models.SplitSlot(in.Slot); err != nil {
			return nil, err
		}
	}

	d, err := bs.draft(in.Date, start, end, in.Mode, in.ClientID, in.RealtorID, in.PropertyID)
	if err != nil {
		return nil, err
	}
	status := models.BookingStatus(strings.TrimSpace(in.Status))
	if status == "" {
		return nil, httperr.Invalid("status is required")
	}
	if !status.Valid() {
		return nil, httperr.Invalid("invalid status %q", in.Status)
	}
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return nil, httperr.Invalid("name must be at least 2 characters")
	}
	email := helpers.NormalizeEmail(in.Email)
	if !helpers.IsValidEmail(email) {
		return nil, httperr.Invalid("invalid email address")
	}
	phone := strings.TrimSpace(in.Phone)
	if !helpers.IsValidPhone(phone) {
		return nil, httperr.Invalid("phone number must look like 123-456-7890")
	}

	property, realtor, _, err := bs.checkReferences(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := bs.checkConflict(ctx, d); err != nil {
		return nil, err
	}

	b := d.booking(bs.now().UTC())
	b.Notes = strings.TrimSpace(in.Notes)
	b.Name = name
	b.Email = email
	b.Phone = phone

	created, err := bs.bookings.CreateBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	details := bs.details(created, property, nil, realtor)
	bs.send("booking received", created, func() (notify.Email, error) {
		return notify.BookingReceived(created.Email, details)
	})
	if realtor.Email != "" {
		rd := details
		rd.RecipientName = realtor.FullName()
		bs.send("booking request", created, func() (notify.Email, error) {
			return notify.BookingRequest(realtor.Email, rd)
		})
	}
	return created, nil
}

type RealtorBookingInput struct {
	Date       string
	StartTime  string
	EndTime    string
	Mode       string
	Notes      string
	Status     string
	ClientID   string
	PropertyID string
	RealtorID  string
	CreatedBy  string
}

// CreateRealtorBooking records a booking a realtor made on a client's behalf. No emails are sent.
func (bs *BookingService) CreateRealtorBooking(ctx context.Context, caller *helpers.Claims, in RealtorBookingInput) (*models.Booking, error) {
	if caller == nil || !caller.IsRealtor() {
		return nil, httperr.New(httperr.Forbidden, "only realtors can create realtor bookings")
	}
	if strings.TrimSpace(in.RealtorID) == "" {
		in.RealtorID = caller.UserID
	}
	d, err := bs.draft(in.Date, in.StartTime, in.EndTime, in.Mode, in.ClientID, in.RealtorID, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if !caller.IsOwner(d.realtor.Hex()) {
		return nil, httperr.New(httperr.Forbidden, "realtors can only create bookings in their own calendar")
	}

	status := models.BookingPending
	if s := strings.TrimSpace(in.Status); s != "" {
		status = models.BookingStatus(s)
		if status != models.BookingPending && status != models.BookingConfirmed {
			return nil, httperr.Invalid("a new booking must be PENDING or CONFIRMED")
		}
	}

	createdBy := d.realtor
	if strings.TrimSpace(in.CreatedBy) != "" {
		if createdBy, err = models.ParseID("created_by", in.CreatedBy); err != nil {
			return nil, err
		}
	}

	if _, _, _, err := bs.checkReferences(ctx, d); err != nil {
		return nil, err
	}
	if err := bs.checkConflict(ctx, d); err != nil {
		return nil, err
	}

	b := d.booking(bs.now().UTC())
	b.Notes = strings.TrimSpace(in.Notes)
	b.CreatedBy = &createdBy
	b.IsRealtor = true
	if status == models.BookingConfirmed {
		t, err := bs.settle(ctx, b, status)
		if err != nil {
			return nil, err
		}
		b.Status = t.Status
		b.ZoomLink = t.ZoomLink
		b.OfficeAddress = t.OfficeAddress
	}
	return bs.bookings.CreateBooking(ctx, b)
}

// settle prepares the fields written when a booking reaches status. Confirming a
// ZOOM booking provisions the meeting first; a failure there aborts the change.
func (bs *BookingService) settle(ctx context.Context, b *models.Booking, status models.BookingStatus) (models.BookingTransition, error) {
	t := models.BookingTransition{Status: status}
	if status != models.BookingConfirmed {
		return t, nil
	}
	if b.Mode == models.ModeInPerson {
		t.OfficeAddress = bs.officeAddress
		return t, nil
	}

	start, err := bs.startsAt(b)
	if err != nil {
		return t, err
	}
	link, err := bs.meetings.CreateMeeting(ctx, meeting.Request{
		Topic:    meetingTopic,
		Start:    start,
		Duration: time.Hour,
		Timezone: bs.location.String(),
	})
	if err != nil {
		bs.logger.Error("meeting provisioning failed", "booking_id", b.ID.Hex(), "error", err)
		return t, httperr.Wrap(httperr.Upstream, err, "failed to create the video meeting, booking was not confirmed")
	}
	t.ZoomLink = link
	return t, nil
}

func (bs *BookingService) startsAt(b *models.Booking) (time.Time, error) {
	mins, err := models.ParseClock(b.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	day := b.Date.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), mins/60, mins%60, 0, 0, bs.location), nil
}

// UpdateStatus confirms or cancels a pending booking. The booking's realtor may do
// either; its client may only cancel.
func (bs *BookingService) UpdateStatus(ctx context.Context, caller *helpers.Claims, id, status string) (*models.Booking, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	next := models.BookingStatus(strings.TrimSpace(status))
	if next != models.BookingConfirmed && next != models.BookingCancelled {
		return nil, httperr.Invalid("status must be CONFIRMED or CANCELLED")
	}

	b, err := bs.bookings.GetBookingByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, httperr.New(httperr.Unauthenticated, "authentication required")
	}
	isRealtor := caller.IsOwner(b.Realtor.Hex())
	isClient := caller.IsOwner(b.Client.Hex())
	if !isRealtor && !(isClient && next == models.BookingCancelled) {
		return nil, httperr.New(httperr.Forbidden, "you are not allowed to change this booking")
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, httperr.Invalid("booking is %s and can no longer change", b.Status)
	}

	t, err := bs.settle(ctx, b, next)
	if err != nil {
		return nil, err
	}
	updated, err := bs.bookings.TransitionBooking(ctx, b.ID, b.Status, t)
	if err != nil {
		return nil, err
	}

	bs.notifyStatus(ctx, updated)
	return updated, nil
}

func (bs *BookingService) notifyStatus(ctx context.Context, b *models.Booking) {
	property, err := bs.properties.GetPropertyByID(ctx, b.Property)
	if err != nil {
		bs.logger.Warn("booking property lookup failed", "booking_id", b.ID.Hex(), "error", err)
	}
	client, err := bs.users.GetUserByID(ctx, b.Client)
	if err != nil {
		bs.logger.Warn("booking client lookup failed", "booking_id", b.ID.Hex(), "error", err)
	}
	realtor, err := bs.users.GetUserByID(ctx, b.Realtor)
	if err != nil {
		bs.logger.Warn("booking realtor lookup failed", "booking_id", b.ID.Hex(), "error", err)
	}

	details := bs.details(b, property, client, realtor)
	clientEmail := b.Email
	if clientEmail == "" && client != nil {
		clientEmail = client.Email
	}
	if clientEmail != "" {
		cd := details
		if client != nil {
			cd.RecipientName = client.FirstName
		}
		bs.send("status update", b, func() (notify.Email, error) {
			if b.Status == models.BookingConfirmed {
				return notify.BookingConfirmed(clientEmail, cd)
			}
			return notify.BookingCancelled(clientEmail, cd)
		})
	}
	if realtor != nil && realtor.Email != "" {
		rd := details
		rd.RecipientName = realtor.FirstName
		bs.send("realtor status update", b, func() (notify.Email, error) {
			if b.Status == models.BookingConfirmed {
				return notify.RealtorConfirmed(realtor.Email, rd)
			}
			return notify.RealtorCancelled(realtor.Email, rd)
		})
	}
}

func (bs *BookingService) details(b *models.Booking, property *models.Property, client, realtor *models.User) notify.BookingDetails {
	d := notify.BookingDetails{
		Date:          b.Day,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Mode:          string(b.Mode),
		Notes:         b.Notes,
		ClientName:    b.Name,
		ClientEmail:   b.Email,
		ClientPhone:   b.Phone,
		ZoomLink:      b.ZoomLink,
		OfficeAddress: b.OfficeAddress,
	}
	if property != nil {
		d.PropertyTitle = property.Title
		d.PropertyLocation = property.Location
	}
	if client != nil {
		if d.ClientName == "" {
			d.ClientName = client.FullName()
		}
		if d.ClientEmail == "" {
			d.ClientEmail = client.Email
		}
		if d.ClientPhone == "" {
			d.ClientPhone = client.PhoneNumber
		}
	}
	return d
}

// send renders and queues an email. Failures are logged and never reach the caller.
func (bs *BookingService) send(kind string, b *models.Booking, build func() (notify.Email, error)) {
	email, err := build()
	if err != nil {
		bs.logger.Error("failed to render booking email", "kind", kind, "booking_id", b.ID.Hex(), "error", err)
		return
	}
	if !bs.mail.Enqueue(email) {
		bs.logger.Warn("booking email dropped", "kind", kind, "booking_id", b.ID.Hex())
	}
}

func (bs *BookingService) ListBookings(ctx context.Context, realtorID string) ([]*models.Booking, error) {
	if strings.TrimSpace(realtorID) == "" {
		return bs.bookings.ListBookings(ctx, nil)
	}
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}
	return bs.bookings.ListBookings(ctx, &rid)
}

func (bs *BookingService) ListBookingsByClient(ctx context.Context, clientID string) ([]*models.Booking, error) {
	cid, err := models.ParseID("clientId", clientID)
	if err != nil {
		return nil, err
	}
	return bs.bookings.ListBookingsByClient(ctx, cid)
}

// UniqueClients lists every client who has booked with the realtor.
func (bs *BookingService) UniqueClients(ctx context.Context, realtorID string) ([]*models.User, error) {
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}
	ids, err := bs.bookings.ClientIDsForRealtor(ctx, rid)
	if err != nil {
		return nil, err
	}
	return bs.users.GetUsersByIDs(ctx, ids)
}
