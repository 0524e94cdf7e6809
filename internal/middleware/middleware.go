package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
)

// TokenCookie is the http-only cookie set on login.
const TokenCookie = "token"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*helpers.Claims, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request. Token query parameters are redacted.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + redactQuery(raw)
		}
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		logger.Log(c.Request.Context(), level, "HTTP Request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func redactQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	if values.Has("token") {
		values.Set("token", "REDACTED")
	}
	return values.Encode()
}

// ErrorHandler renders the last error attached with c.Error. Classified errors
// keep their message and status; anything else is logged and reported as a 500.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		kind := httperr.KindOf(err)
		if kind == httperr.Internal {
			logger.Error("Request error",
				"request_id", c.GetString("request_id"),
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(httperr.Status(err), models.ErrorResponse(string(kind), httperr.Public(err)))
	}
}

// BearerToken returns the credential from the Authorization header, falling
// back to the token cookie.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	if t, err := c.Cookie(TokenCookie); err == nil {
		return t
	}
	return ""
}

func attach(c *gin.Context, claims *helpers.Claims) {
	c.Set("user", claims)
	c.Request = c.Request.WithContext(helpers.WithClaims(c.Request.Context(), claims))
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(auth Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(string(httperr.Unauthenticated), "authentication required"))
			return
		}
		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("token rejected", "request_id", c.GetString("request_id"), "error", err)
			c.AbortWithStatusJSON(httperr.Status(err), models.ErrorResponse(string(httperr.KindOf(err)), httperr.Public(err)))
			return
		}
		attach(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. Resolvers decide what needs an identity.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if claims, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				attach(c, claims)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the claims set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*helpers.Claims, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.Claims)
	return claims, ok && claims != nil
}
