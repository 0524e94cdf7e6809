package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *Message) (*Message, error)
	// Thread returns the messages exchanged between a and b about a property, oldest first.
	Thread(ctx context.Context, a, b, property primitive.ObjectID) ([]*Message, error)
	MessagesForUser(ctx context.Context, user primitive.ObjectID) ([]*Message, error)
	// MarkRead flags the given messages as read, limited to those addressed to recipient.
	MarkRead(ctx context.Context, recipient primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
}

var messageOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (mdb *MongodbRepo) CreateMessage(ctx context.Context, msg *Message) (*Message, error) {
	col, err := mdb.GetCollection(ctx, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("error inserting message: %v", err)
	}
	return msg, nil
}

func (mdb *MongodbRepo) findMessages(ctx context.Context, filter bson.M) ([]*Message, error) {
	col, err := mdb.GetCollection(ctx, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter, options.Find().SetSort(messageOrder))
	if err != nil {
		return nil, fmt.Errorf("error finding messages: %v", err)
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %v", err)
	}
	return messages, nil
}

func (mdb *MongodbRepo) Thread(ctx context.Context, a, b, property primitive.ObjectID) ([]*Message, error) {
	return mdb.findMessages(ctx, bson.M{
		"property": property,
		"$or": bson.A{
			bson.M{"from": a, "to": b},
			bson.M{"from": b, "to": a},
		},
	})
}

func (mdb *MongodbRepo) MessagesForUser(ctx context.Context, user primitive.ObjectID) ([]*Message, error) {
	return mdb.findMessages(ctx, bson.M{
		"$or": bson.A{
			bson.M{"from": user},
			bson.M{"to": user},
		},
	})
}

func (mdb *MongodbRepo) MarkRead(ctx context.Context, recipient primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	col, err := mdb.GetCollection(ctx, MessagesColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "to": recipient},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %v", err)
	}
	return res.ModifiedCount, nil
}
