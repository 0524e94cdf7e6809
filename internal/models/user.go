package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleRealtor Role = "REALTOR"
)

const DefaultProfilePicture = "/uploads/default-profile.jpg"

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName            string             `bson:"first_name" json:"first_name" validate:"required,min=2"`
	LastName             string             `bson:"last_name" json:"last_name" validate:"required,min=2"`
	Gender               string             `bson:"gender" json:"gender" validate:"required,oneof=Male Female Other"`
	PhoneNumber          string             `bson:"phone_number" json:"phone_number" validate:"required"`
	Email                string             `bson:"email" json:"email" validate:"required,email"`
	Password             string             `bson:"password" json:"-"`
	ProfilePicture       string             `bson:"profile_picture" json:"profile_picture"`
	Role                 Role               `bson:"role" json:"role" validate:"required,oneof=CLIENT REALTOR"`
	ResetPasswordToken   *string            `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsRealtor() bool {
	return u.Role == RoleRealtor
}

// UserUpdate carries the profile fields a user may change; nil means untouched.
type UserUpdate struct {
	FirstName      *string `bson:"first_name,omitempty"`
	LastName       *string `bson:"last_name,omitempty"`
	PhoneNumber    *string `bson:"phone_number,omitempty"`
	ProfilePicture *string `bson:"profile_picture,omitempty"`
}

func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil && u.ProfilePicture == nil
}
