package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

// Me returns the authenticated user, or null for anonymous requests.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	caller, ok := helpers.ClaimsFrom(ctx)
	if !ok {
		return nil, nil
	}
	return r.userByID(ctx, caller.UserID)
}

func (r *Resolver) GetUsers(ctx context.Context) ([]*userResolver, error) {
	if _, err := services.RequireCaller(ctx); err != nil {
		return nil, err
	}
	list, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return usersOf(list), nil
}

func (r *Resolver) GetUserByID(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	if _, err := services.RequireCaller(ctx); err != nil {
		return nil, err
	}
	u, err := r.users.GetUser(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

type propertyFilterInput struct {
	PropertyType *string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int32
	Bathrooms    *int32
	Location     *string
	DateListed   *string
	Sort         *string
	Realtor      *graphql.ID
}

func (r *Resolver) GetAllProperties(ctx context.Context, args struct{ Filter *propertyFilterInput }) ([]*propertyResolver, error) {
	var search services.PropertySearch
	if f := args.Filter; f != nil {
		search = services.PropertySearch{
			PropertyType: f.PropertyType,
			MinPrice:     f.MinPrice,
			MaxPrice:     f.MaxPrice,
			Bedrooms:     intPtr(f.Bedrooms),
			Bathrooms:    intPtr(f.Bathrooms),
			Location:     f.Location,
			DateListed:   f.DateListed,
			Sort:         f.Sort,
		}
		if f.Realtor != nil {
			realtor := string(*f.Realtor)
			search.RealtorID = &realtor
		}
	}
	list, err := r.properties.SearchProperties(ctx, search)
	if err != nil {
		return nil, err
	}
	return r.propertiesOf(list), nil
}

func (r *Resolver) GetPropertyByID(ctx context.Context, args struct{ ID graphql.ID }) (*propertyResolver, error) {
	p, err := r.properties.GetProperty(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return &propertyResolver{root: r, p: p}, nil
}

func (r *Resolver) GetRealtorProperties(ctx context.Context, args struct{ RealtorID graphql.ID }) ([]*propertyResolver, error) {
	list, err := r.properties.RealtorProperties(ctx, string(args.RealtorID))
	if err != nil {
		return nil, err
	}
	return r.propertiesOf(list), nil
}

func (r *Resolver) GetUniqueLocations(ctx context.Context) ([]string, error) {
	return r.properties.UniqueLocations(ctx)
}

func (r *Resolver) GetAvailableSlots(ctx context.Context, args struct {
	Date       string
	PropertyID graphql.ID
	RealtorID  graphql.ID
}) ([]*slotResolver, error) {
	slots, err := r.bookings.AvailableSlots(ctx, args.Date, string(args.PropertyID), string(args.RealtorID))
	if err != nil {
		return nil, err
	}
	out := make([]*slotResolver, 0, len(slots))
	for _, s := range slots {
		out = append(out, &slotResolver{s: s})
	}
	return out, nil
}

func (r *Resolver) GetBookings(ctx context.Context, args struct{ RealtorID *graphql.ID }) ([]*bookingResolver, error) {
	if _, err := services.RequireCaller(ctx); err != nil {
		return nil, err
	}
	list, err := r.bookings.ListBookings(ctx, idOf(args.RealtorID))
	if err != nil {
		return nil, err
	}
	return r.bookingsOf(list), nil
}

func (r *Resolver) GetBookingsByClient(ctx context.Context, args struct{ ClientID graphql.ID }) ([]*bookingResolver, error) {
	if _, err := services.RequireCaller(ctx); err != nil {
		return nil, err
	}
	list, err := r.bookings.ListBookingsByClient(ctx, string(args.ClientID))
	if err != nil {
		return nil, err
	}
	return r.bookingsOf(list), nil
}

func (r *Resolver) GetUniqueClients(ctx context.Context, args struct{ RealtorID graphql.ID }) ([]*userResolver, error) {
	if _, err := services.RequireCaller(ctx); err != nil {
		return nil, err
	}
	list, err := r.bookings.UniqueClients(ctx, string(args.RealtorID))
	if err != nil {
		return nil, err
	}
	return usersOf(list), nil
}

func (r *Resolver) GetRealtorAvailability(ctx context.Context, args struct{ RealtorID *graphql.ID }) ([]*availabilityResolver, error) {
	list, err := r.availability.ListBlackouts(ctx, idOf(args.RealtorID))
	if err != nil {
		return nil, err
	}
	return r.availabilityOf(list), nil
}

// GetBlackoutConflicts lists the blackouts that cover the given day, or the
// given window of it when both times are set.
func (r *Resolver) GetBlackoutConflicts(ctx context.Context, args struct {
	RealtorID graphql.ID
	Date      string
	StartTime *string
	EndTime   *string
}) ([]*availabilityResolver, error) {
	list, err := r.availability.BlackoutsOn(ctx, string(args.RealtorID), args.Date, str(args.StartTime), str(args.EndTime))
	if err != nil {
		return nil, err
	}
	return r.availabilityOf(list), nil
}
