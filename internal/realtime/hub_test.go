package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	aliceID = primitive.NewObjectID()
	bobID   = primitive.NewObjectID()
	carlID  = primitive.NewObjectID()
)

// tokenAuth treats the token as the user id.
type tokenAuth struct{}

func (tokenAuth) Authenticate(ctx context.Context, token string) (*helpers.Claims, error) {
	if _, err := primitive.ObjectIDFromHex(token); err != nil {
		return nil, httperr.New(httperr.Unauthenticated, "invalid or expired token")
	}
	return &helpers.Claims{UserID: token}, nil
}

type memSender struct {
	mu     sync.Mutex
	stored []*models.Message
}

func (s *memSender) SendMessage(ctx context.Context, from primitive.ObjectID, in services.SendInput) (*models.Message, error) {
	to, err := models.ParseID("to", in.To)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := &models.Message{ID: primitive.NewObjectID(), From: from, To: to, Content: in.Content, CreatedAt: time.Now().UTC()}
	s.stored = append(s.stored, msg)
	return msg, nil
}

func (s *memSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

type hubFixture struct {
	hub    *Hub
	sender *memSender
	server *httptest.Server
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sender := &memSender{}
	hub := NewHub(sender, tokenAuth{}, NewLocalBroker(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := hub.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	server := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
		cancel()
	})
	return &hubFixture{hub: hub, sender: sender, server: server}
}

func (f *hubFixture) dial(t *testing.T, user primitive.ObjectID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + user.Hex()
	want := f.hub.connections(user.Hex()) + 1
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for f.hub.connections(user.Hex()) < want {
		if time.Now().After(deadline) {
			t.Fatal("connection was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, in services.SendInput) {
	t.Helper()
	payload, _ := json.Marshal(in)
	if err := conn.WriteJSON(Frame{Type: EventSendMessage, Payload: payload}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestServeWSRejectsUnauthenticated(t *testing.T) {
	f := newHubFixture(t)
	base := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"

	for _, url := range []string{base, base + "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatalf("%s: expected the handshake to fail", url)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %+v", url, resp)
		}
	}
}

func TestServeWSAcceptsBearerHeader(t *testing.T) {
	f := newHubFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + aliceID.Hex()}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}

func TestMessageIsPushedAndConfirmed(t *testing.T) {
	f := newHubFixture(t)
	bobTab1 := f.dial(t, bobID)
	bobTab2 := f.dial(t, bobID)
	alice := f.dial(t, aliceID)

	sendFrame(t, alice, services.SendInput{To: bobID.Hex(), Content: "hello bob", TempID: "tmp-1"})

	got := readFrame(t, alice)
	if got.Type != EventMessageDelivered {
		t.Fatalf("expected %s, got %s", EventMessageDelivered, got.Type)
	}
	var delivered DeliveredPayload
	if err := json.Unmarshal(got.Payload, &delivered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if delivered.TempID != "tmp-1" || delivered.Message == nil || delivered.Message.ID.IsZero() {
		t.Errorf("unexpected delivery %+v", delivered)
	}

	for _, tab := range []*websocket.Conn{bobTab1, bobTab2} {
		pushed := readFrame(t, tab)
		if pushed.Type != EventNewMessage {
			t.Fatalf("expected %s, got %s", EventNewMessage, pushed.Type)
		}
		var msg models.Message
		if err := json.Unmarshal(pushed.Payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Content != "hello bob" || msg.From != aliceID || msg.ID != delivered.Message.ID {
			t.Errorf("unexpected pushed message %+v", msg)
		}
	}
}

func TestSendErrorKeepsConnectionOpen(t *testing.T) {
	f := newHubFixture(t)
	alice := f.dial(t, aliceID)

	sendFrame(t, alice, services.SendInput{Content: "to nobody", TempID: "tmp-2"})
	got := readFrame(t, alice)
	if got.Type != EventMessageError {
		t.Fatalf("expected %s, got %s", EventMessageError, got.Type)
	}
	var e ErrorPayload
	if err := json.Unmarshal(got.Payload, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.TempID != "tmp-2" || e.Error == "" {
		t.Errorf("unexpected error payload %+v", e)
	}

	if err := alice.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readFrame(t, alice); got.Type != EventMessageError {
		t.Fatalf("expected %s for a malformed frame, got %s", EventMessageError, got.Type)
	}

	// carl is offline: the message is stored and confirmed all the same
	sendFrame(t, alice, services.SendInput{To: carlID.Hex(), Content: "are you there?", TempID: "tmp-3"})
	if got := readFrame(t, alice); got.Type != EventMessageDelivered {
		t.Fatalf("expected %s, got %s", EventMessageDelivered, got.Type)
	}
	if f.sender.count() != 1 {
		t.Errorf("expected one stored message, got %d", f.sender.count())
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t, aliceID)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.hub.connections(aliceID.Hex()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLocalBrokerDropsWithoutSubscriber(t *testing.T) {
	b := NewLocalBroker()
	if err := b.Publish(context.Background(), "u1", []byte("x")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Subscribe(ctx, func(user string, frame []byte) { got <- user + ":" + string(frame) }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := b.Publish(context.Background(), "u1", []byte("y")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case v := <-got:
		if v != "u1:y" {
			t.Errorf("unexpected delivery %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("frame was not delivered")
	}
}
