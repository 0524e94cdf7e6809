package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.u.ID.Hex()) }
func (r *userResolver) FirstName() string { return r.u.FirstName }
func (r *userResolver) LastName() string { return r.u.LastName }
func (r *userResolver) Gender() string { return r.u.Gender }
func (r *userResolver) PhoneNumber() string { return r.u.PhoneNumber }
func (r *userResolver) Email() string { return r.u.Email }
func (r *userResolver) Role() string { return string(r.u.Role) }
func (r *userResolver) ProfilePicture() *string { return optional(r.u.ProfilePicture) }
func (r *userResolver) CreatedAt() string { return stamp(r.u.CreatedAt) }

func usersOf(list []*models.User) []*userResolver {
	out := make([]*userResolver, 0, len(list))
	for _, u := range list {
		out = append(out, &userResolver{u: u})
	}
	return out
}

type authPayloadResolver struct {
	token string
	user  *models.User
}

func (r *authPayloadResolver) Token() string { return r.token }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.user} }

type resetResponseResolver struct {
	message    string
	redirectTo string
}

func (r *resetResponseResolver) Success() bool { return true }
func (r *resetResponseResolver) Message() string { return r.message }
func (r *resetResponseResolver) RedirectTo() string { return r.redirectTo }

type propertyResolver struct {
	root *Resolver
	p    *models.Property
}

func (r *propertyResolver) ID() graphql.ID { return graphql.ID(r.p.ID.Hex()) }
func (r *propertyResolver) Title() string { return r.p.Title }
func (r *propertyResolver) Description() string { return r.p.Description }
func (r *propertyResolver) Price() float64 { return r.p.Price }
func (r *propertyResolver) Location() string { return r.p.Location }
func (r *propertyResolver) Bedrooms() int32 { return int32(r.p.Bedrooms) }
func (r *propertyResolver) Bathrooms() int32 { return int32(r.p.Bathrooms) }
func (r *propertyResolver) PropertyType() string { return string(r.p.PropertyType) }
func (r *propertyResolver) SquareFeet() int32 { return int32(r.p.SquareFeet) }
func (r *propertyResolver) Furnished() bool { return r.p.Furnished }
func (r *propertyResolver) HasParking() bool { return r.p.HasParking }
func (r *propertyResolver) Archived() bool { return r.p.Archived }
func (r *propertyResolver) CreatedAt() string { return stamp(r.p.CreatedAt) }

func (r *propertyResolver) Features() []string {
	if r.p.Features == nil {
		return []string{}
	}
	return r.p.Features
}

func (r *propertyResolver) Images() []string {
	if r.p.Images == nil {
		return []string{}
	}
	return r.p.Images
}

func (r *propertyResolver) Realtor(ctx context.Context) (*userResolver, error) {
	return r.root.userByID(ctx, r.p.Realtor.Hex())
}

func (r *Resolver) propertiesOf(list []*models.Property) []*propertyResolver {
	out := make([]*propertyResolver, 0, len(list))
	for _, p := range list {
		out = append(out, &propertyResolver{root: r, p: p})
	}
	return out
}

type bookingResolver struct {
	root *Resolver
	b    *models.Booking
}

func (r *bookingResolver) ID() graphql.ID { return graphql.ID(r.b.ID.Hex()) }
func (r *bookingResolver) Date() string { return r.b.Day }
func (r *bookingResolver) StartTime() string { return r.b.StartTime }
func (r *bookingResolver) EndTime() string { return r.b.EndTime }
func (r *bookingResolver) Mode() string { return string(r.b.Mode) }
func (r *bookingResolver) Notes() *string { return optional(r.b.Notes) }
func (r *bookingResolver) Status() string { return string(r.b.Status) }
func (r *bookingResolver) Name() *string { return optional(r.b.Name) }
func (r *bookingResolver) Email() *string { return optional(r.b.Email) }
func (r *bookingResolver) Phone() *string { return optional(r.b.Phone) }
func (r *bookingResolver) ZoomLink() *string { return optional(r.b.ZoomLink) }
func (r *bookingResolver) OfficeAddress() *string { return optional(r.b.OfficeAddress) }
func (r *bookingResolver) IsRealtor() bool { return r.b.IsRealtor }
func (r *bookingResolver) CreatedAt() string { return stamp(r.b.CreatedAt) }
func (r *bookingResolver) UpdatedAt() string { return stamp(r.b.UpdatedAt) }

func (r *bookingResolver) Client(ctx context.Context) (*userResolver, error) {
	return r.root.userByID(ctx, r.b.Client.Hex())
}

func (r *bookingResolver) Realtor(ctx context.Context) (*userResolver, error) {
	return r.root.userByID(ctx, r.b.Realtor.Hex())
}

func (r *bookingResolver) Property(ctx context.Context) (*propertyResolver, error) {
	return r.root.propertyByID(ctx, r.b.Property.Hex())
}

func (r *bookingResolver) CreatedBy(ctx context.Context) (*userResolver, error) {
	if r.b.CreatedBy == nil {
		return nil, nil
	}
	return r.root.userByID(ctx, r.b.CreatedBy.Hex())
}

func (r *Resolver) bookingsOf(list []*models.Booking) []*bookingResolver {
	out := make([]*bookingResolver, 0, len(list))
	for _, b := range list {
		out = append(out, &bookingResolver{root: r, b: b})
	}
	return out
}

type slotResolver struct {
	s services.Slot
}

func (r *slotResolver) StartTime() string { return r.s.StartTime }
func (r *slotResolver) EndTime() string { return r.s.EndTime }

type availabilityResolver struct {
	root *Resolver
	a    *models.RealtorAvailability
}

func (r *availabilityResolver) ID() graphql.ID { return graphql.ID(r.a.ID.Hex()) }
func (r *availabilityResolver) Type() string { return string(r.a.Type) }
func (r *availabilityResolver) Date() *string { return optional(r.a.Date) }
func (r *availabilityResolver) StartTime() *string { return optional(r.a.StartTime) }
func (r *availabilityResolver) EndTime() *string { return optional(r.a.EndTime) }
func (r *availabilityResolver) StartDate() *string { return optional(r.a.StartDate) }
func (r *availabilityResolver) EndDate() *string { return optional(r.a.EndDate) }
func (r *availabilityResolver) Note() *string { return optional(r.a.Note) }
func (r *availabilityResolver) Deleted() bool { return r.a.Deleted }
func (r *availabilityResolver) CreatedAt() string { return stamp(r.a.CreatedAt) }

func (r *availabilityResolver) Realtor(ctx context.Context) (*userResolver, error) {
	return r.root.userByID(ctx, r.a.Realtor.Hex())
}

func (r *Resolver) availabilityOf(list []*models.RealtorAvailability) []*availabilityResolver {
	out := make([]*availabilityResolver, 0, len(list))
	for _, a := range list {
		out = append(out, &availabilityResolver{root: r, a: a})
	}
	return out
}
