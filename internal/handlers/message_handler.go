package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/middleware"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func callerID(c *gin.Context) (primitive.ObjectID, error) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return primitive.NilObjectID, httperr.New(httperr.Unauthenticated, "authentication required")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, httperr.New(httperr.Unauthenticated, "invalid or expired token")
	}
	return id, nil
}

// GetMessages returns the thread between the caller and ?recipient=, oldest
// first, optionally narrowed to ?property=.
func GetMessages(chat *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := callerID(c)
		if err != nil {
			c.Error(err)
			return
		}

		thread, err := chat.History(c.Request.Context(), me, c.Query("recipient"), c.Query("property"))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(thread, len(thread)))
	}
}

func GetConversations(chat *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := callerID(c)
		if err != nil {
			c.Error(err)
			return
		}

		rows, err := chat.Conversations(c.Request.Context(), me)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(rows, len(rows)))
	}
}

type markReadRequest struct {
	MessageIDs []string `json:"messageIds"`
}

// MarkMessagesRead flags the given messages addressed to the caller as read.
func MarkMessagesRead(chat *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := callerID(c)
		if err != nil {
			c.Error(err)
			return
		}

		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(httperr.Invalid("messageIds must be a list of ids"))
			return
		}

		n, err := chat.MarkRead(c.Request.Context(), me, req.MessageIDs)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"updated": n}, "messages marked as read"))
	}
}
