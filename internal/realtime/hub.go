package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sendTimeout = 10 * time.Second

type MessageSender interface {
	SendMessage(ctx context.Context, from primitive.ObjectID, in services.SendInput) (*models.Message, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*helpers.Claims, error)
}

// Hub tracks the live chat connections of this instance, keyed by user.
type Hub struct {
	sender   MessageSender
	auth     Authenticator
	broker   Broker
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub builds a hub. An empty origins list keeps the same-origin check of the upgrader.
func NewHub(sender MessageSender, auth Authenticator, broker Broker, logger *slog.Logger, origins []string) *Hub {
	h := &Hub{
		sender:  sender,
		auth:    auth,
		broker:  broker,
		logger:  logger,
		clients: map[string]map[*Client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(origins) > 0 {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[strings.TrimRight(o, "/")] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
	return h
}

// Start subscribes the hub to the broker. Delivery stops when ctx is done.
func (h *Hub) Start(ctx context.Context) error {
	return h.broker.Subscribe(ctx, h.deliver)
}

// Shutdown closes every open connection.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.clients {
		for c := range set {
			c.conn.Close()
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := c.userID.Hex()
	if h.clients[key] == nil {
		h.clients[key] = map[*Client]struct{}{}
	}
	h.clients[key][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := c.userID.Hex()
	set, ok := h.clients[key]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, key)
	}
}

func (h *Hub) connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// deliver pushes a frame to every local connection of userID. Connections
// whose buffer is full are closed.
func (h *Hub) deliver(userID string, frame []byte) {
	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[userID] {
		if !c.enqueue(frame) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow chat connection", "user_id", userID)
		c.conn.Close()
	}
}

func (h *Hub) handleSend(c *Client, payload json.RawMessage) {
	var in services.SendInput
	if len(payload) == 0 || json.Unmarshal(payload, &in) != nil {
		c.reply(EventMessageError, ErrorPayload{Error: "malformed sendMessage payload"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg, err := h.sender.SendMessage(ctx, c.userID, in)
	if err != nil {
		if httperr.KindOf(err) == httperr.Internal {
			h.logger.Error("failed to store chat message", "user_id", c.userID.Hex(), "error", err)
		}
		c.reply(EventMessageError, ErrorPayload{Error: httperr.Public(err), TempID: in.TempID})
		return
	}

	frame, err := encodeFrame(EventNewMessage, msg)
	if err != nil {
		h.logger.Error("failed to encode message", "message_id", msg.ID.Hex(), "error", err)
	} else if err := h.broker.Publish(ctx, msg.To.Hex(), frame); err != nil {
		// the message is stored; the recipient picks it up from history
		h.logger.Warn("chat push failed", "message_id", msg.ID.Hex(), "error", err)
	}
	c.reply(EventMessageDelivered, DeliveredPayload{Message: msg, TempID: in.TempID})
}

// ServeWS authenticates the caller and upgrades the request to a chat socket.
// The token comes from the token query parameter or a bearer header.
func (h *Hub) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(string(httperr.Unauthenticated), "authentication required"))
		return
	}

	claims, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(httperr.Status(err), models.ErrorResponse(string(httperr.KindOf(err)), httperr.Public(err)))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(string(httperr.Unauthenticated), "invalid or expired token"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	client := newClient(h, conn, userID)
	h.register(client)
	go client.writePump()
	go client.readPump()
}
