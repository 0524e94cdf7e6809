package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/middleware"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/notify"
	"github.com/joshua-takyi/realtorhub/internal/services"
	"github.com/joshua-takyi/realtorhub/internal/storetest"
)

type nopQueue struct{}

func (nopQueue) Enqueue(notify.Email) bool { return true }

type testServer struct {
	store  *storetest.Store
	users  *services.UserService
	chat   *services.ChatService
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storetest.New()
	users := services.NewUserService(store, helpers.NewTokenManager("handler-test-secret", time.Hour), nopQueue{}, nil, "http://app.test/", logger)
	chat := services.NewChatService(store, store, store)
	cookie := CookieConfig{MaxAge: time.Hour}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(logger))
	v1 := r.Group("/api/v1")
	v1.POST("/signup", CreateUser(users))
	v1.POST("/login", Login(users, cookie))
	v1.POST("/logout", Logout(cookie))

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(users, logger))
	protected.GET("/profile", Profile(users))
	protected.GET("/messages", GetMessages(chat))
	protected.PUT("/messages/read", MarkMessagesRead(chat))
	protected.GET("/conversations", GetConversations(chat))

	return &testServer{store: store, users: users, chat: chat, router: r}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Total   int             `json:"total"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return env
}

func (s *testServer) signupAndLogin(t *testing.T, first string) (string, *models.User) {
	t.Helper()
	email := first + "@example.com"
	w := s.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"firstName":       first,
		"lastName":        "Tester",
		"gender":          "Other",
		"phoneNumber":     "416-555-0100",
		"email":           email,
		"password":        "Secret1@pass",
		"confirmPassword": "Secret1@pass",
		"role":            "CLIENT",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{"email": email, "password": "Secret1@pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var data struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatal(err)
	}
	return data.Token, data.User
}

func TestSignupLoginAndProfile(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{"firstName": "x"})
	if w.Code != http.StatusBadRequest || decode(t, w).Code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %d %s", w.Code, w.Body.String())
	}

	token, user := s.signupAndLogin(t, "nina")
	if token == "" || user.Email != "nina@example.com" {
		t.Fatalf("unexpected login result %q %+v", token, user)
	}

	w = s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "nina@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password should be 401, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", w.Code, w.Body.String())
	}
	var profile models.User
	if err := json.Unmarshal(decode(t, w).Data, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.ID != user.ID {
		t.Errorf("profile returned %s, want %s", profile.ID.Hex(), user.ID.Hex())
	}

	if w := s.do(t, http.MethodGet, "/api/v1/profile", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("profile without a token should be 401, got %d", w.Code)
	}
}

func TestLoginSetsCookieAndLogoutClearsIt(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "otto")

	w := s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "otto@example.com", "password": "Secret1@pass"})
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.TokenCookie || !cookies[0].HttpOnly || cookies[0].Value == "" {
		t.Fatalf("expected an http-only token cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("cookie auth failed: %d %s", rec.Code, rec.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/logout", "", nil)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, got %+v", cookies)
	}
}

func TestMessageEndpoints(t *testing.T) {
	s := newTestServer(t)
	token, me := s.signupAndLogin(t, "cleo")
	realtor := s.store.AddUser("rita", models.RoleRealtor)
	house := s.store.AddProperty("Lake House", realtor.ID, 450000)
	ctx := context.Background()

	first, err := s.chat.SendMessage(ctx, realtor.ID, services.SendInput{To: me.ID.Hex(), PropertyID: house.ID.Hex(), Content: "Still interested?"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.chat.SendMessage(ctx, me.ID, services.SendInput{To: realtor.ID.Hex(), PropertyID: house.ID.Hex(), Content: "Yes"}); err != nil {
		t.Fatal(err)
	}

	w := s.do(t, http.MethodGet, "/api/v1/messages?recipient="+realtor.ID.Hex()+"&property="+house.ID.Hex(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("messages: %d %s", w.Code, w.Body.String())
	}
	var thread []models.Message
	if err := json.Unmarshal(decode(t, w).Data, &thread); err != nil {
		t.Fatal(err)
	}
	if len(thread) != 2 || thread[0].Content != "Still interested?" {
		t.Fatalf("unexpected thread %+v", thread)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/messages?recipient=bogus", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad recipient should be 400, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/conversations", token, nil)
	var rows []models.Conversation
	if err := json.Unmarshal(decode(t, w).Data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].UnreadCount != 1 || rows[0].PropertyTitle != "Lake House" {
		t.Fatalf("unexpected conversations %+v", rows)
	}

	w = s.do(t, http.MethodPut, "/api/v1/messages/read", token, map[string][]string{"messageIds": {first.ID.Hex()}})
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: %d %s", w.Code, w.Body.String())
	}
	var updated struct{ Updated int64 }
	if err := json.Unmarshal(decode(t, w).Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Updated != 1 {
		t.Errorf("expected one message updated, got %d", updated.Updated)
	}

	w = s.do(t, http.MethodPut, "/api/v1/messages/read", token, map[string][]string{"messageIds": {}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty id list should be 400, got %d", w.Code)
	}
}
