package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

const (
	UsersColName        = "users"
	PropertiesColName   = "properties"
	BookingsColName     = "bookings"
	AvailabilityColName = "realtor_availability"
	MessagesColName     = "messages"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// EnsureIndexes creates the indexes every collection relies on. Safe to call on every boot.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
			{
				Keys:    bson.D{{Key: "reset_password_token", Value: 1}},
				Options: options.Index().SetSparse(true).SetName("reset_token_idx"),
			},
		},
		PropertiesColName: {
			{
				Keys:    bson.D{{Key: "realtor", Value: 1}, {Key: "archived", Value: 1}},
				Options: options.Index().SetName("realtor_archived_idx"),
			},
			{
				Keys:    bson.D{{Key: "archived", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("archived_created_idx"),
			},
		},
		BookingsColName: {
			// one active booking per realtor, day and start time
			{
				Keys: bson.D{
					{Key: "realtor", Value: 1},
					{Key: "day", Value: 1},
					{Key: "start_time", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}).
					SetName("realtor_slot_active_unique"),
			},
			{
				Keys:    bson.D{{Key: "property", Value: 1}, {Key: "realtor", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetName("property_realtor_day_idx"),
			},
			{
				Keys:    bson.D{{Key: "client", Value: 1}},
				Options: options.Index().SetName("client_idx"),
			},
		},
		AvailabilityColName: {
			{
				Keys:    bson.D{{Key: "realtor", Value: 1}, {Key: "deleted", Value: 1}},
				Options: options.Index().SetName("realtor_deleted_idx"),
			},
		},
		MessagesColName: {
			{
				Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "property", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("thread_idx"),
			},
			{
				Keys:    bson.D{{Key: "to", Value: 1}, {Key: "read", Value: 1}},
				Options: options.Index().SetName("to_read_idx"),
			},
		},
	}

	for colName, idx := range indexes {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %v", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("error creating indexes on %s: %v", colName, err)
		}
	}
	return nil
}

// ParseID converts a hex id coming from a request into an ObjectID.
func ParseID(field, raw string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, httperr.Invalid("%s is required", field)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, httperr.Invalid("%s is not a valid id", field)
	}
	return id, nil
}
