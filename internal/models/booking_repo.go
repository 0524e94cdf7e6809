package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	// ActiveBookingsForSlotDay returns non-cancelled bookings of a property and realtor on a day.
	ActiveBookingsForSlotDay(ctx context.Context, propertyID, realtorID primitive.ObjectID, day string) ([]*Booking, error)
	// ActiveBookingsForRealtorDay returns every non-cancelled booking the realtor holds on a day.
	ActiveBookingsForRealtorDay(ctx context.Context, realtorID primitive.ObjectID, day string) ([]*Booking, error)
	ListBookings(ctx context.Context, realtorID *primitive.ObjectID) ([]*Booking, error)
	ListBookingsByClient(ctx context.Context, clientID primitive.ObjectID) ([]*Booking, error)
	// TransitionBooking applies t only while the booking is still in status from.
	TransitionBooking(ctx context.Context, id primitive.ObjectID, from BookingStatus, t BookingTransition) (*Booking, error)
	ClientIDsForRealtor(ctx context.Context, realtorID primitive.ObjectID) ([]primitive.ObjectID, error)
}

var bookingOrder = bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.Active = booking.Status != BookingCancelled
	if _, err := col.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, httperr.New(httperr.Conflict, "the realtor already has a booking at %s on %s", booking.StartTime, booking.Day)
		}
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.Missing("booking")
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter, options.Find().SetSort(bookingOrder))
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, nil
}

func (mdb *MongodbRepo) ActiveBookingsForSlotDay(ctx context.Context, propertyID, realtorID primitive.ObjectID, day string) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{
		"property": propertyID,
		"realtor":  realtorID,
		"day":      day,
		"status":   bson.M{"$ne": BookingCancelled},
	})
}

func (mdb *MongodbRepo) ActiveBookingsForRealtorDay(ctx context.Context, realtorID primitive.ObjectID, day string) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{
		"realtor": realtorID,
		"day":     day,
		"status":  bson.M{"$ne": BookingCancelled},
	})
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, realtorID *primitive.ObjectID) ([]*Booking, error) {
	filter := bson.M{}
	if realtorID != nil {
		filter["realtor"] = *realtorID
	}
	return mdb.findBookings(ctx, filter)
}

func (mdb *MongodbRepo) ListBookingsByClient(ctx context.Context, clientID primitive.ObjectID) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"client": clientID})
}

func (mdb *MongodbRepo) TransitionBooking(ctx context.Context, id primitive.ObjectID, from BookingStatus, t BookingTransition) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{
		"status":     t.Status,
		"active":     t.Status != BookingCancelled,
		"updated_at": time.Now().UTC(),
	}
	if t.ZoomLink != "" {
		set["zoom_link"] = t.ZoomLink
	}
	if t.OfficeAddress != "" {
		set["office_address"] = t.OfficeAddress
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking Booking
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.New(httperr.Conflict, "booking status changed concurrently")
		}
		return nil, fmt.Errorf("error updating booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ClientIDsForRealtor(ctx context.Context, realtorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"realtor": realtorID}}},
		{{Key: "$group", Value: bson.M{"_id": "$client"}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating clients: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding clients: %v", err)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		if !r.ID.IsZero() {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}
