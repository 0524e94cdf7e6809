// Package graph exposes the marketplace over GraphQL. A single root resolver
// serves both the query and the mutation type.
package graph

import (
	"context"
	_ "embed"
	"strings"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

//go:embed schema.graphql
var Schema string

const maxQueryDepth = 12

type Resolver struct {
	users        *services.UserService
	properties   *services.PropertyService
	bookings     *services.BookingService
	availability *services.AvailabilityService
}

func NewResolver(users *services.UserService, properties *services.PropertyService, bookings *services.BookingService, availability *services.AvailabilityService) *Resolver {
	return &Resolver{
		users:        users,
		properties:   properties,
		bookings:     bookings,
		availability: availability,
	}
}

// NewSchema parses the embedded schema against r. It panics when a schema
// field has no matching resolver method.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(Schema, r, graphql.MaxDepth(maxQueryDepth))
}

func (r *Resolver) userByID(ctx context.Context, id string) (*userResolver, error) {
	if id == "" {
		return nil, nil
	}
	u, err := r.users.GetUser(ctx, id)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) propertyByID(ctx context.Context, id string) (*propertyResolver, error) {
	p, err := r.properties.GetProperty(ctx, id)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &propertyResolver{root: r, p: p}, nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func idOf(v *graphql.ID) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
