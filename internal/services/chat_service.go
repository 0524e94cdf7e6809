package services

import (
	"context"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxMessageLength = 4000

type ChatService struct {
	messages   models.MessageRepo
	users      models.UserRepo
	properties models.PropertyRepo
	now        func() time.Time
}

func NewChatService(messages models.MessageRepo, users models.UserRepo, properties models.PropertyRepo) *ChatService {
	return &ChatService{
		messages:   messages,
		users:      users,
		properties: properties,
		now:        time.Now,
	}
}

type SendInput struct {
	To         string `json:"to"`
	PropertyID string `json:"propertyId"`
	Content    string `json:"content"`
	TempID     string `json:"tempId"`
}

// SendMessage persists a message from the authenticated sender. Delivery is left to the caller.
func (cs *ChatService) SendMessage(ctx context.Context, from primitive.ObjectID, in SendInput) (*models.Message, error) {
	if strings.TrimSpace(in.To) == "" {
		return nil, httperr.Invalid("recipient is required")
	}
	to, err := models.ParseID("to", in.To)
	if err != nil {
		return nil, err
	}
	if to == from {
		return nil, httperr.Invalid("you cannot message yourself")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, httperr.Invalid("message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, httperr.Invalid("message content must be at most %d characters", maxMessageLength)
	}

	var property primitive.ObjectID
	if strings.TrimSpace(in.PropertyID) != "" {
		if property, err = models.ParseID("propertyId", in.PropertyID); err != nil {
			return nil, err
		}
	}

	if _, err := cs.users.GetUserByID(ctx, to); err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, httperr.Missing("recipient")
		}
		return nil, err
	}

	return cs.messages.CreateMessage(ctx, &models.Message{
		From:      from,
		To:        to,
		Content:   content,
		Property:  property,
		CreatedAt: cs.now().UTC(),
	})
}

// History returns the thread between user and recipient about a property, oldest first.
func (cs *ChatService) History(ctx context.Context, user primitive.ObjectID, recipient, propertyID string) ([]*models.Message, error) {
	other, err := models.ParseID("recipient", recipient)
	if err != nil {
		return nil, err
	}
	var property primitive.ObjectID
	if strings.TrimSpace(propertyID) != "" {
		if property, err = models.ParseID("property", propertyID); err != nil {
			return nil, err
		}
	}
	return cs.messages.Thread(ctx, user, other, property)
}

// Conversations derives the user's conversation list from the message log.
func (cs *ChatService) Conversations(ctx context.Context, user primitive.ObjectID) ([]*models.Conversation, error) {
	msgs, err := cs.messages.MessagesForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	rows := models.BuildConversations(user, msgs)
	if len(rows) == 0 {
		return rows, nil
	}

	propertyIDs := make([]primitive.ObjectID, 0, len(rows))
	userIDs := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		propertyIDs = append(propertyIDs, r.PropertyID)
		userIDs = append(userIDs, r.OtherParty)
	}

	props, err := cs.properties.GetPropertiesByIDs(ctx, uniqueIDs(propertyIDs))
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string, len(props))
	for _, p := range props {
		titles[p.ID] = p.Title
	}

	others, err := cs.users.GetUsersByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(others))
	for _, u := range others {
		names[u.ID] = u.FullName()
	}

	for _, r := range rows {
		r.PropertyTitle = titles[r.PropertyID]
		r.OtherPartyName = names[r.OtherParty]
	}
	return rows, nil
}

// MarkRead flags the given messages as read. Only messages addressed to user are touched.
func (cs *ChatService) MarkRead(ctx context.Context, user primitive.ObjectID, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, httperr.Invalid("messageIds must not be empty")
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := models.ParseID("messageIds", id)
		if err != nil {
			return 0, err
		}
		oids = append(oids, oid)
	}
	return cs.messages.MarkRead(ctx, user, uniqueIDs(oids))
}
