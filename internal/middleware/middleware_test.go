package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
)

type staticAuth map[string]*helpers.Claims

func (a staticAuth) Authenticate(ctx context.Context, token string) (*helpers.Claims, error) {
	if c, ok := a[token]; ok {
		return c, nil
	}
	return nil, httperr.New(httperr.Unauthenticated, "invalid or expired token")
}

var testAuth = staticAuth{"good": {UserID: "u1", Role: "CLIENT"}}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	fromCtx, _ := helpers.ClaimsFrom(c.Request.Context())
	fromGin, _ := CurrentUser(c)
	if fromCtx == nil || fromGin == nil {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, fromCtx.UserID)
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(testAuth, discard()), whoami)

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "u1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) }, http.StatusOK, "u1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Errorf("expected body %q, got %q", tc.body, w.Body.String())
			}
			if tc.status == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"code":"unauthenticated"`) {
				t.Errorf("expected an unauthenticated envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	r := gin.New()
	r.GET("/me", OptionalAuth(testAuth), whoami)

	for token, want := range map[string]string{"": "anonymous", "nope": "anonymous", "good": "u1"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Errorf("token %q: got %d %q, want %q", token, w.Code, w.Body.String(), want)
		}
	}
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard()))
	r.GET("/missing", func(c *gin.Context) { c.Error(httperr.Missing("property")) })
	r.GET("/boom", func(c *gin.Context) { c.Error(errors.New("connection reset by peer")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "property not found") {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "connection reset") {
		t.Errorf("internal errors must not leak, got %d %s", w.Code, w.Body.String())
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("expected the incoming id to be kept, got %q", w.Body.String())
	}
}

func TestRedactQuery(t *testing.T) {
	got := redactQuery("token=secret&page=2")
	if strings.Contains(got, "secret") || !strings.Contains(got, "page=2") {
		t.Errorf("unexpected redaction %q", got)
	}
}
