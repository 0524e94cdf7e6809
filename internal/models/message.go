package models

import (
	"bytes"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Content   string             `bson:"content" json:"content"`
	Property  primitive.ObjectID `bson:"property" json:"property"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// After orders messages by creation time, falling back to id for equal timestamps.
func (m *Message) After(o *Message) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.After(o.CreatedAt)
	}
	return bytes.Compare(m.ID[:], o.ID[:]) > 0
}

// Conversation is one thread of the caller with another party about a property.
type Conversation struct {
	PropertyID     primitive.ObjectID `json:"property_id"`
	PropertyTitle  string             `json:"property_title"`
	OtherParty     primitive.ObjectID `json:"other_party"`
	OtherPartyName string             `json:"other_party_name,omitempty"`
	LastMessage    *Message           `json:"last_message"`
	UnreadCount    int                `json:"unread_count"`
}

type conversationKey struct {
	property primitive.ObjectID
	other    primitive.ObjectID
}

// BuildConversations groups the messages a user sent or received by (property, other party).
// Rows are ordered by their last message, newest first.
func BuildConversations(user primitive.ObjectID, messages []*Message) []*Conversation {
	rows := map[conversationKey]*Conversation{}
	for _, m := range messages {
		var other primitive.ObjectID
		switch user {
		case m.From:
			other = m.To
		case m.To:
			other = m.From
		default:
			continue
		}

		key := conversationKey{property: m.Property, other: other}
		row, ok := rows[key]
		if !ok {
			row = &Conversation{PropertyID: m.Property, OtherParty: other}
			rows[key] = row
		}
		if row.LastMessage == nil || m.After(row.LastMessage) {
			row.LastMessage = m
		}
		if m.To == user && !m.Read {
			row.UnreadCount++
		}
	}

	out := make([]*Conversation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.After(out[j].LastMessage)
	})
	return out
}
