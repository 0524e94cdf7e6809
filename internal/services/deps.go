package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/meeting"
	"github.com/joshua-takyi/realtorhub/internal/notify"
)

// EmailQueue accepts emails for asynchronous delivery.
type EmailQueue interface {
	Enqueue(email notify.Email) bool
}

type MeetingScheduler interface {
	CreateMeeting(ctx context.Context, req meeting.Request) (string, error)
}

type ImageUploader interface {
	UploadImages(ctx context.Context, images []string, folder string) ([]string, error)
}

// validationError turns validator output into an invalid-input error callers can read.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return httperr.Invalid("%s", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return httperr.Invalid("%s", strings.Join(msgs, "; "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
