// Package event defines the events delivered to connected clients.
// One event value is shared by reference across every recipient of a
// notification; none of the types mutate after construction.
package event

import (
	"encoding/json"

	"chat-notify/domain"
)

// AppEvent is the tagged union streamed to clients. Kind returns the
// wire tag and Body the entity serialized as the frame payload.
type AppEvent interface {
	Kind() string
	Body() (json.RawMessage, error)
}

type NewChat struct {
	Chat domain.Chat
}

func (e NewChat) Kind() string { return "NewChat" }

func (e NewChat) Body() (json.RawMessage, error) { return json.Marshal(e.Chat) }

type UpdateChat struct {
	Chat domain.Chat
}

func (e UpdateChat) Kind() string { return "UpdateChat" }

func (e UpdateChat) Body() (json.RawMessage, error) { return json.Marshal(e.Chat) }

type RemoveFromChat struct {
	Chat domain.Chat
}

func (e RemoveFromChat) Kind() string { return "RemoveFromChat" }

func (e RemoveFromChat) Body() (json.RawMessage, error) { return json.Marshal(e.Chat) }

type NewMessage struct {
	Message domain.Message
}

func (e NewMessage) Kind() string { return "NewMessage" }

func (e NewMessage) Body() (json.RawMessage, error) { return json.Marshal(e.Message) }
