// Package storetest is an in-memory implementation of the repository
// interfaces, used by tests across the service and transport layers.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store implements every repository interface on top of in-memory maps.
type Store struct {
	mu           sync.Mutex
	users        map[primitive.ObjectID]*models.User
	properties   map[primitive.ObjectID]*models.Property
	bookings     []*models.Booking
	availability []*models.RealtorAvailability
	messages     []*models.Message
}

func New() *Store {
	return &Store{
		users:      map[primitive.ObjectID]*models.User{},
		properties: map[primitive.ObjectID]*models.Property{},
	}
}

// AddUser stores a user with a predictable email and phone number.
func (m *Store) AddUser(first string, role models.Role) *models.User {
	u := &models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   first,
		LastName:    "Tester",
		Gender:      "Other",
		PhoneNumber: "416-555-0100",
		Email:       first + "@example.com",
		Role:        role,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return u
}

func (m *Store) AddProperty(title string, realtor primitive.ObjectID, price float64) *models.Property {
	p := &models.Property{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  "A place",
		Price:        price,
		Location:     "Toronto",
		PropertyType: models.PropertyHouse,
		Realtor:      realtor,
		CreatedAt:    time.Now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[p.ID] = p
	return p
}

func (m *Store) BookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

// User returns a copy of the stored user, or nil.
func (m *Store) User(id primitive.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (m *Store) MessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// users

func (m *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, httperr.New(httperr.Conflict, "user already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	c := *user
	m.users[user.ID] = &c
	return user, nil
}

func (m *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, httperr.Missing("user")
	}
	c := *u
	return &c, nil
}

func (m *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, httperr.Missing("user")
}

func (m *Store) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			c := *u
			return &c, nil
		}
	}
	return nil, httperr.Missing("user")
}

func (m *Store) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (m *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, httperr.Missing("user")
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = *update.ProfilePicture
	}
	c := *u
	return &c, nil
}

func (m *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return httperr.Missing("user")
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
	return nil
}

func (m *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return httperr.Missing("user")
	}
	u.Password = hash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return nil
}

func (m *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return httperr.Missing("user")
	}
	delete(m.users, id)
	return nil
}

// properties

func (m *Store) CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	c := *p
	m.properties[p.ID] = &c
	return p, nil
}

func (m *Store) GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, httperr.Missing("property")
	}
	c := *p
	return &c, nil
}

func (m *Store) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Property{}
	for _, id := range ids {
		if p, ok := m.properties[id]; ok {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *Store) ListProperties(ctx context.Context, f models.PropertyFilter) ([]*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Property{}
	for _, p := range m.properties {
		if p.Archived {
			continue
		}
		if f.Realtor != nil && p.Realtor != *f.Realtor {
			continue
		}
		if f.PropertyType != nil && p.PropertyType != *f.PropertyType {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (m *Store) ReplaceProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[p.ID]; !ok {
		return nil, httperr.Missing("property")
	}
	c := *p
	m.properties[p.ID] = &c
	return p, nil
}

func (m *Store) ArchiveProperty(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return httperr.Missing("property")
	}
	p.Archived = true
	return nil
}

func (m *Store) UniqueLocations(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range m.properties {
		if !p.Archived && !seen[p.Location] {
			seen[p.Location] = true
			out = append(out, p.Location)
		}
	}
	sort.Strings(out)
	return out, nil
}

// bookings

func (m *Store) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.Active = b.Status != models.BookingCancelled
	if b.Active {
		for _, o := range m.bookings {
			if o.Active && o.Realtor == b.Realtor && o.Day == b.Day && o.StartTime == b.StartTime {
				return nil, httperr.New(httperr.Conflict, "slot already booked")
			}
		}
	}
	b.ID = primitive.NewObjectID()
	c := *b
	m.bookings = append(m.bookings, &c)
	return b, nil
}

func (m *Store) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, httperr.Missing("booking")
}

func (m *Store) selectBookings(keep func(*models.Booking) bool) []*models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range m.bookings {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	return out
}

func (m *Store) ActiveBookingsForSlotDay(ctx context.Context, property, realtor primitive.ObjectID, day string) ([]*models.Booking, error) {
	return m.selectBookings(func(b *models.Booking) bool {
		return b.Active && b.Property == property && b.Realtor == realtor && b.Day == day
	}), nil
}

func (m *Store) ActiveBookingsForRealtorDay(ctx context.Context, realtor primitive.ObjectID, day string) ([]*models.Booking, error) {
	return m.selectBookings(func(b *models.Booking) bool {
		return b.Active && b.Realtor == realtor && b.Day == day
	}), nil
}

func (m *Store) ListBookings(ctx context.Context, realtor *primitive.ObjectID) ([]*models.Booking, error) {
	return m.selectBookings(func(b *models.Booking) bool {
		return realtor == nil || b.Realtor == *realtor
	}), nil
}

func (m *Store) ListBookingsByClient(ctx context.Context, client primitive.ObjectID) ([]*models.Booking, error) {
	return m.selectBookings(func(b *models.Booking) bool { return b.Client == client }), nil
}

func (m *Store) TransitionBooking(ctx context.Context, id primitive.ObjectID, from models.BookingStatus, t models.BookingTransition) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID != id {
			continue
		}
		if b.Status != from {
			return nil, httperr.New(httperr.Conflict, "booking changed concurrently")
		}
		b.Status = t.Status
		b.Active = t.Status != models.BookingCancelled
		if t.ZoomLink != "" {
			b.ZoomLink = t.ZoomLink
		}
		if t.OfficeAddress != "" {
			b.OfficeAddress = t.OfficeAddress
		}
		c := *b
		return &c, nil
	}
	return nil, httperr.Missing("booking")
}

func (m *Store) ClientIDsForRealtor(ctx context.Context, realtor primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	out := []primitive.ObjectID{}
	for _, b := range m.selectBookings(func(b *models.Booking) bool { return b.Realtor == realtor }) {
		if !seen[b.Client] {
			seen[b.Client] = true
			out = append(out, b.Client)
		}
	}
	return out, nil
}

// availability

func (m *Store) CreateAvailability(ctx context.Context, a *models.RealtorAvailability) (*models.RealtorAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	c := *a
	m.availability = append(m.availability, &c)
	return a, nil
}

func (m *Store) ListAvailability(ctx context.Context, realtor *primitive.ObjectID) ([]*models.RealtorAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.RealtorAvailability{}
	for i := len(m.availability) - 1; i >= 0; i-- {
		a := m.availability[i]
		if a.Deleted || (realtor != nil && a.Realtor != *realtor) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

func (m *Store) CancelAvailability(ctx context.Context, id primitive.ObjectID) (*models.RealtorAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.availability {
		if a.ID == id {
			a.Deleted = true
			c := *a
			return &c, nil
		}
	}
	return nil, httperr.Missing("availability")
}

// messages

func (m *Store) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	c := *msg
	m.messages = append(m.messages, &c)
	return msg, nil
}

func (m *Store) selectMessages(keep func(*models.Message) bool) []*models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Message{}
	for _, msg := range m.messages {
		if keep(msg) {
			c := *msg
			out = append(out, &c)
		}
	}
	return out
}

func (m *Store) Thread(ctx context.Context, a, b, property primitive.ObjectID) ([]*models.Message, error) {
	return m.selectMessages(func(msg *models.Message) bool {
		return msg.Property == property &&
			((msg.From == a && msg.To == b) || (msg.From == b && msg.To == a))
	}), nil
}

func (m *Store) MessagesForUser(ctx context.Context, user primitive.ObjectID) ([]*models.Message, error) {
	return m.selectMessages(func(msg *models.Message) bool {
		return msg.From == user || msg.To == user
	}), nil
}

func (m *Store) MarkRead(ctx context.Context, recipient primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for _, msg := range m.messages {
		if want[msg.ID] && msg.To == recipient && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}
