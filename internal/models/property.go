package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyHouse     PropertyType = "HOUSE"
	PropertyApartment PropertyType = "APARTMENT"
	PropertyCondo     PropertyType = "CONDO"
	PropertyTownhouse PropertyType = "TOWNHOUSE"
)

type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title" validate:"required"`
	Description  string             `bson:"description" json:"description" validate:"required"`
	Price        float64            `bson:"price" json:"price" validate:"gte=0"`
	Location     string             `bson:"location" json:"location" validate:"required"`
	Bedrooms     int                `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms    int                `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	PropertyType PropertyType       `bson:"property_type" json:"property_type" validate:"required,oneof=HOUSE APARTMENT CONDO TOWNHOUSE"`
	SquareFeet   int                `bson:"square_feet" json:"square_feet" validate:"gte=0"`
	Furnished    bool               `bson:"furnished" json:"furnished"`
	HasParking   bool               `bson:"has_parking" json:"has_parking"`
	Features     []string           `bson:"features" json:"features"`
	Images       []string           `bson:"images" json:"images"`
	Realtor      primitive.ObjectID `bson:"realtor" json:"realtor"`
	Archived     bool               `bson:"archived" json:"archived"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// PropertyUpdate is a partial update; nil fields are left as stored.
type PropertyUpdate struct {
	Title        *string
	Description  *string
	Price        *float64
	Location     *string
	Bedrooms     *int
	Bathrooms    *int
	PropertyType *PropertyType
	SquareFeet   *int
	Furnished    *bool
	HasParking   *bool
	Features     *[]string
	Images       *[]string
}

// Apply copies the set fields onto p.
func (u PropertyUpdate) Apply(p *Property) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Bedrooms != nil {
		p.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		p.Bathrooms = *u.Bathrooms
	}
	if u.PropertyType != nil {
		p.PropertyType = *u.PropertyType
	}
	if u.SquareFeet != nil {
		p.SquareFeet = *u.SquareFeet
	}
	if u.Furnished != nil {
		p.Furnished = *u.Furnished
	}
	if u.HasParking != nil {
		p.HasParking = *u.HasParking
	}
	if u.Features != nil {
		p.Features = *u.Features
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
}

type PropertySort string

const (
	SortNewest       PropertySort = "newest"
	SortOldest       PropertySort = "oldest"
	SortHighestPrice PropertySort = "highestPrice"
	SortLowestPrice  PropertySort = "lowestPrice"
)

type PropertyFilter struct {
	Realtor      *primitive.ObjectID
	PropertyType *PropertyType
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Bathrooms    *int
	Location     *string
	DateListed   *time.Time
	Sort         PropertySort
}

// Query renders the filter as a Mongo query. Archived listings are always excluded.
func (f PropertyFilter) Query() bson.M {
	query := bson.M{"archived": false}
	if f.Realtor != nil {
		query["realtor"] = *f.Realtor
	}
	if f.PropertyType != nil {
		query["property_type"] = *f.PropertyType
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.Bedrooms != nil {
		query["bedrooms"] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		query["bathrooms"] = *f.Bathrooms
	}
	if f.Location != nil && *f.Location != "" {
		query["location"] = *f.Location
	}
	if f.DateListed != nil {
		query["created_at"] = bson.M{"$gte": *f.DateListed}
	}
	return query
}

func (f PropertyFilter) SortOrder() bson.D {
	switch f.Sort {
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	case SortHighestPrice:
		return bson.D{{Key: "price", Value: -1}}
	case SortLowestPrice:
		return bson.D{{Key: "price", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
