package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AvailabilityRepo interface {
	CreateAvailability(ctx context.Context, a *RealtorAvailability) (*RealtorAvailability, error)
	ListAvailability(ctx context.Context, realtorID *primitive.ObjectID) ([]*RealtorAvailability, error)
	// CancelAvailability soft-deletes the record and returns it.
	CancelAvailability(ctx context.Context, id primitive.ObjectID) (*RealtorAvailability, error)
}

func (mdb *MongodbRepo) CreateAvailability(ctx context.Context, a *RealtorAvailability) (*RealtorAvailability, error) {
	col, err := mdb.GetCollection(ctx, AvailabilityColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, a); err != nil {
		return nil, fmt.Errorf("error inserting availability: %v", err)
	}
	return a, nil
}

func (mdb *MongodbRepo) ListAvailability(ctx context.Context, realtorID *primitive.ObjectID) ([]*RealtorAvailability, error) {
	col, err := mdb.GetCollection(ctx, AvailabilityColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"deleted": false}
	if realtorID != nil {
		filter["realtor"] = *realtorID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding availability: %v", err)
	}
	defer cursor.Close(ctx)

	out := []*RealtorAvailability{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding availability: %v", err)
	}
	return out, nil
}

func (mdb *MongodbRepo) CancelAvailability(ctx context.Context, id primitive.ObjectID) (*RealtorAvailability, error) {
	col, err := mdb.GetCollection(ctx, AvailabilityColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a RealtorAvailability
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"deleted": true}}, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.Missing("availability")
		}
		return nil, fmt.Errorf("error cancelling availability: %v", err)
	}
	return &a, nil
}
