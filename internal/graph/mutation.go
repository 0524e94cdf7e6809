package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

type createUserInput struct {
	FirstName       string
	LastName        string
	Gender          string
	PhoneNumber     string
	Email           string
	Password        string
	ConfirmPassword string
	ProfilePicture  *string
	Role            string
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input createUserInput }) (*userResolver, error) {
	in := args.Input
	u, err := r.users.CreateUser(ctx, services.CreateUserInput{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Gender:          in.Gender,
		PhoneNumber:     in.PhoneNumber,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		ProfilePicture:  str(in.ProfilePicture),
		Role:            in.Role,
	})
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Email, Password string }) (*authPayloadResolver, error) {
	token, u, err := r.users.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{token: token, user: u}, nil
}

type updateUserInput struct {
	FirstName      *string
	LastName       *string
	PhoneNumber    *string
	ProfilePicture *string
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphql.ID
	Input updateUserInput
}) (*userResolver, error) {
	caller, err := services.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := r.users.UpdateUser(ctx, caller, string(args.ID), services.UpdateUserInput{
		FirstName:      args.Input.FirstName,
		LastName:       args.Input.LastName,
		PhoneNumber:    args.Input.PhoneNumber,
		ProfilePicture: args.Input.ProfilePicture,
	})
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	caller, err := services.RequireCaller(ctx)
	if err != nil {
		return false, err
	}
	if err := r.users.DeleteUser(ctx, caller, string(args.ID)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Resolver) ResetPassword(ctx context.Context, args struct{ Input struct{ Email string } }) (*resetResponseResolver, error) {
	if err := r.users.RequestPasswordReset(ctx, args.Input.Email); err != nil {
		return nil, err
	}
	return &resetResponseResolver{message: "Password reset email sent", redirectTo: "/login"}, nil
}

func (r *Resolver) ResetPasswordWithToken(ctx context.Context, args struct {
	Input struct {
		Token    string
		Password string
	}
}) (*resetResponseResolver, error) {
	if err := r.users.ResetPasswordWithToken(ctx, args.Input.Token, args.Input.Password); err != nil {
		return nil, err
	}
	return &resetResponseResolver{message: "Password has been reset", redirectTo: "/login"}, nil
}

type addPropertyArgs struct {
	Title        string
	Description  string
	Price        float64
	Location     string
	Bedrooms     int32
	Bathrooms    int32
	PropertyType string
	SquareFeet   int32
	Furnished    *bool
	HasParking   *bool
	Features     *[]string
	Images       *[]string
	Realtor      *graphql.ID
}

func (r *Resolver) AddProperty(ctx context.Context, args addPropertyArgs) (*propertyResolver, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return nil, err
	}
	in := services.PropertyInput{
		Title:        args.Title,
		Description:  args.Description,
		Price:        args.Price,
		Location:     args.Location,
		Bedrooms:     int(args.Bedrooms),
		Bathrooms:    int(args.Bathrooms),
		PropertyType: args.PropertyType,
		SquareFeet:   int(args.SquareFeet),
		Furnished:    args.Furnished != nil && *args.Furnished,
		HasParking:   args.HasParking != nil && *args.HasParking,
		RealtorID:    idOf(args.Realtor),
	}
	if args.Features != nil {
		in.Features = *args.Features
	}
	if args.Images != nil {
		in.Images = *args.Images
	}
	p, err := r.properties.CreateProperty(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	return &propertyResolver{root: r, p: p}, nil
}

type updatePropertyArgs struct {
	ID           graphql.ID
	Title        *string
	Description  *string
	Price        *float64
	Location     *string
	Bedrooms     *int32
	Bathrooms    *int32
	PropertyType *string
	SquareFeet   *int32
	Furnished    *bool
	HasParking   *bool
	Features     *[]string
	Images       *[]string
}

func (r *Resolver) UpdateProperty(ctx context.Context, args updatePropertyArgs) (*propertyResolver, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return nil, err
	}
	update := models.PropertyUpdate{
		Title:       args.Title,
		Description: args.Description,
		Price:       args.Price,
		Location:    args.Location,
		Bedrooms:    intPtr(args.Bedrooms),
		Bathrooms:   intPtr(args.Bathrooms),
		SquareFeet:  intPtr(args.SquareFeet),
		Furnished:   args.Furnished,
		HasParking:  args.HasParking,
		Features:    args.Features,
		Images:      args.Images,
	}
	if args.PropertyType != nil {
		t := models.PropertyType(*args.PropertyType)
		update.PropertyType = &t
	}
	p, err := r.properties.UpdateProperty(ctx, caller, string(args.ID), update)
	if err != nil {
		return nil, err
	}
	return &propertyResolver{root: r, p: p}, nil
}

func (r *Resolver) DeleteProperty(ctx context.Context, args struct{ ID graphql.ID }) (string, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return "", err
	}
	if err := r.properties.ArchiveProperty(ctx, caller, string(args.ID)); err != nil {
		return "", err
	}
	return "Property archived successfully", nil
}

type bookingInput struct {
	Date       string
	Slot       *string
	StartTime  *string
	EndTime    *string
	Mode       string
	Notes      *string
	Status     string
	ClientID   graphql.ID
	RealtorID  graphql.ID
	PropertyID graphql.ID
	Name       string
	Email      string
	Phone      string
}

// CreateBooking books a viewing for the authenticated client.
func (r *Resolver) CreateBooking(ctx context.Context, args struct{ Input bookingInput }) (*bookingResolver, error) {
	caller, err := services.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	in := args.Input
	if !caller.IsOwner(string(in.ClientID)) {
		return nil, httperr.New(httperr.Forbidden, "bookings can only be made for your own account")
	}
	b, err := r.bookings.CreateBooking(ctx, services.BookingInput{
		Date:       in.Date,
		Slot:       str(in.Slot),
		StartTime:  str(in.StartTime),
		EndTime:    str(in.EndTime),
		Mode:       in.Mode,
		Status:     in.Status,
		Notes:      str(in.Notes),
		ClientID:   string(in.ClientID),
		RealtorID:  string(in.RealtorID),
		PropertyID: string(in.PropertyID),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &bookingResolver{root: r, b: b}, nil
}

type realtorBookingInput struct {
	Date       string
	StartTime  string
	EndTime    string
	Mode       string
	Notes      *string
	Status     *string
	ClientID   graphql.ID
	PropertyID graphql.ID
	RealtorID  *graphql.ID
	CreatedBy  *graphql.ID
}

func (r *Resolver) CreateRealtorBooking(ctx context.Context, args struct{ Input realtorBookingInput }) (bool, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return false, err
	}
	in := args.Input
	_, err = r.bookings.CreateRealtorBooking(ctx, caller, services.RealtorBookingInput{
		Date:       in.Date,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Mode:       in.Mode,
		Notes:      str(in.Notes),
		Status:     str(in.Status),
		ClientID:   string(in.ClientID),
		PropertyID: string(in.PropertyID),
		RealtorID:  idOf(in.RealtorID),
		CreatedBy:  idOf(in.CreatedBy),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Resolver) ConfirmBooking(ctx context.Context, args struct{ ID graphql.ID }) (*bookingResolver, error) {
	return r.updateStatus(ctx, string(args.ID), string(models.BookingConfirmed))
}

func (r *Resolver) UpdateBookingStatus(ctx context.Context, args struct {
	ID     graphql.ID
	Status string
}) (*bookingResolver, error) {
	return r.updateStatus(ctx, string(args.ID), args.Status)
}

func (r *Resolver) updateStatus(ctx context.Context, id, status string) (*bookingResolver, error) {
	caller, err := services.RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	b, err := r.bookings.UpdateStatus(ctx, caller, id, status)
	if err != nil {
		return nil, err
	}
	return &bookingResolver{root: r, b: b}, nil
}

type availabilityInput struct {
	Realtor   *graphql.ID
	Type      string
	Date      *string
	StartTime *string
	EndTime   *string
	StartDate *string
	EndDate   *string
	Note      *string
}

func (r *Resolver) CreateRealtorAvailability(ctx context.Context, args struct{ Input availabilityInput }) (*availabilityResolver, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return nil, err
	}
	in := args.Input
	a, err := r.availability.CreateBlackout(ctx, caller, services.AvailabilityInput{
		RealtorID: idOf(in.Realtor),
		Type:      in.Type,
		Date:      str(in.Date),
		StartTime: str(in.StartTime),
		EndTime:   str(in.EndTime),
		StartDate: str(in.StartDate),
		EndDate:   str(in.EndDate),
		Note:      str(in.Note),
	})
	if err != nil {
		return nil, err
	}
	return &availabilityResolver{root: r, a: a}, nil
}

func (r *Resolver) CancelRealtorAvailability(ctx context.Context, args struct{ Input struct{ ID graphql.ID } }) (*availabilityResolver, error) {
	caller, err := services.RequireRealtor(ctx)
	if err != nil {
		return nil, err
	}
	a, err := r.availability.CancelBlackout(ctx, caller, string(args.Input.ID))
	if err != nil {
		return nil, err
	}
	return &availabilityResolver{root: r, a: a}, nil
}
