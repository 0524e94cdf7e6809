package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PropertyRepo interface {
	CreateProperty(ctx context.Context, property *Property) (*Property, error)
	GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, error)
	ReplaceProperty(ctx context.Context, property *Property) (*Property, error)
	ArchiveProperty(ctx context.Context, id primitive.ObjectID) error
	UniqueLocations(ctx context.Context) ([]string, error)
}

func (mdb *MongodbRepo) CreateProperty(ctx context.Context, property *Property) (*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if property.ID.IsZero() {
		property.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, property); err != nil {
		return nil, fmt.Errorf("error inserting property: %v", err)
	}
	return property, nil
}

func (mdb *MongodbRepo) GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var property Property
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.Missing("property")
		}
		return nil, fmt.Errorf("error finding property: %v", err)
	}
	return &property, nil
}

func (mdb *MongodbRepo) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Property, error) {
	if len(ids) == 0 {
		return []*Property{}, nil
	}
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding properties: %v", err)
	}
	defer cursor.Close(ctx)

	properties := []*Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("error decoding properties: %v", err)
	}
	return properties, nil
}

func (mdb *MongodbRepo) ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(filter.SortOrder())
	cursor, err := col.Find(ctx, filter.Query(), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding properties: %v", err)
	}
	defer cursor.Close(ctx)

	properties := []*Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("error decoding properties: %v", err)
	}
	return properties, nil
}

func (mdb *MongodbRepo) ReplaceProperty(ctx context.Context, property *Property) (*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	property.UpdatedAt = time.Now().UTC()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": property.ID}, property)
	if err != nil {
		return nil, fmt.Errorf("error updating property: %v", err)
	}
	if res.MatchedCount == 0 {
		return nil, httperr.Missing("property")
	}
	return property, nil
}

func (mdb *MongodbRepo) ArchiveProperty(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"archived":   true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("error archiving property: %v", err)
	}
	if res.MatchedCount == 0 {
		return httperr.Missing("property")
	}
	return nil
}

func (mdb *MongodbRepo) UniqueLocations(ctx context.Context) ([]string, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	raw, err := col.Distinct(ctx, "location", bson.M{"archived": false})
	if err != nil {
		return nil, fmt.Errorf("error listing locations: %v", err)
	}

	locations := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			locations = append(locations, s)
		}
	}
	sort.Strings(locations)
	return locations, nil
}
