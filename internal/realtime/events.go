package realtime

import (
	"encoding/json"

	"github.com/joshua-takyi/realtorhub/internal/models"
)

// Frame types exchanged over the chat socket.
const (
	EventSendMessage      = "sendMessage"
	EventNewMessage       = "newMessage"
	EventMessageDelivered = "messageDelivered"
	EventMessageError     = "messageError"
)

type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type DeliveredPayload struct {
	Message *models.Message `json:"message"`
	TempID  string          `json:"tempId,omitempty"`
}

type ErrorPayload struct {
	Error  string `json:"error"`
	TempID string `json:"tempId,omitempty"`
}

func encodeFrame(kind string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: kind, Payload: body})
}
