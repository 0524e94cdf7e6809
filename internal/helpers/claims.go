package helpers

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/realtorhub/internal/models"
)

type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsRealtor() bool {
	return c.Role == string(models.RoleRealtor)
}

func (c *Claims) HasRole(role models.Role) bool {
	return c.Role == string(role)
}

func (c *Claims) IsOwner(userID string) bool {
	return c.UserID == userID
}

type claimsKey struct{}

// WithClaims attaches the authenticated identity to a request context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the identity attached by WithClaims, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
