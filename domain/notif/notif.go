// Package notif turns raw store notifications into typed events plus
// the set of users that must hear about them. Translation is pure: it
// never touches the registry, so the worker decides what to do with a
// bad record without losing the feed.
package notif

import (
	"encoding/json"
	"fmt"

	"chat-notify/domain"
	"chat-notify/domain/event"
	"chat-notify/errors"

	"github.com/samber/lo"
)

const (
	ChannelChatChange   = "chat_change"
	ChannelMessageAdded = "message_added"
)

// ChangeRecord is one raw notification as emitted by the store.
// It is consumed exactly once and then discarded.
type ChangeRecord struct {
	Channel string
	Payload string
}

// Notification pairs one immutable event with the users it affects.
// The same Event value is published to every affected user.
type Notification struct {
	UserIDs map[domain.UserID]struct{}
	Event   event.AppEvent
}

// chatUpdated mirrors the trigger payload:
// pg_notify('chat_change', json_build_object('op', TG_OP, 'old', OLD, 'new', NEW)::text)
type chatUpdated struct {
	Op  string       `json:"op"`
	Old *domain.Chat `json:"old"`
	New *domain.Chat `json:"new"`
}

// messageCreated mirrors the trigger payload on message insert.
type messageCreated struct {
	Message domain.Message  `json:"message"`
	Members []domain.UserID `json:"members"`
}

// Translate decodes a record into a Notification. It fails with
// ErrUnknownChannel or ErrMalformedPayload; both are recoverable and
// scoped to this single record.
func Translate(rec ChangeRecord) (Notification, error) {
	switch rec.Channel {
	case ChannelChatChange:
		return translateChatChange(rec.Payload)
	case ChannelMessageAdded:
		return translateMessageAdded(rec.Payload)
	default:
		return Notification{}, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, rec.Channel)
	}
}

func translateChatChange(payload string) (Notification, error) {
	var upd chatUpdated
	if err := json.Unmarshal([]byte(payload), &upd); err != nil {
		return Notification{}, fmt.Errorf("%w: chat_change: %v", errors.ErrMalformedPayload, err)
	}

	var evt event.AppEvent
	switch upd.Op {
	case "INSERT":
		if upd.New == nil {
			return Notification{}, fmt.Errorf("%w: chat_change INSERT without new snapshot", errors.ErrMalformedPayload)
		}
		evt = event.NewChat{Chat: *upd.New}
	case "UPDATE":
		if upd.New == nil {
			return Notification{}, fmt.Errorf("%w: chat_change UPDATE without new snapshot", errors.ErrMalformedPayload)
		}
		evt = event.UpdateChat{Chat: *upd.New}
	case "DELETE":
		if upd.Old == nil {
			return Notification{}, fmt.Errorf("%w: chat_change DELETE without old snapshot", errors.ErrMalformedPayload)
		}
		evt = event.RemoveFromChat{Chat: *upd.Old}
	default:
		return Notification{}, fmt.Errorf("%w: chat_change op %q", errors.ErrMalformedPayload, upd.Op)
	}

	return Notification{
		UserIDs: affectedChatUsers(upd.Old, upd.New),
		Event:   evt,
	}, nil
}

func translateMessageAdded(payload string) (Notification, error) {
	var created messageCreated
	if err := json.Unmarshal([]byte(payload), &created); err != nil {
		return Notification{}, fmt.Errorf("%w: message_added: %v", errors.ErrMalformedPayload, err)
	}

	return Notification{
		UserIDs: lo.SliceToMap(created.Members, func(id domain.UserID) (domain.UserID, struct{}) {
			return id, struct{}{}
		}),
		Event: event.NewMessage{Message: created.Message},
	}, nil
}

// affectedChatUsers derives who must be notified from the before/after
// snapshots. With identical member sets the chat itself must have
// changed in a visible way (name or soft-delete marker), otherwise no
// one is notified. With differing member sets the union is notified:
// removed members read their removal from old, added ones from new.
func affectedChatUsers(oldChat, newChat *domain.Chat) map[domain.UserID]struct{} {
	switch {
	case oldChat != nil && newChat != nil:
		oldSet := oldChat.MemberSet()
		newSet := newChat.MemberSet()
		if sameMembers(oldSet, newSet) {
			if !oldChat.SameName(*newChat) || !oldChat.SameDeletion(*newChat) {
				return newSet
			}
			return map[domain.UserID]struct{}{}
		}
		return union(oldSet, newSet)
	case oldChat != nil:
		return oldChat.MemberSet()
	case newChat != nil:
		return newChat.MemberSet()
	default:
		return map[domain.UserID]struct{}{}
	}
}

func sameMembers(a, b map[domain.UserID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

func union(a, b map[domain.UserID]struct{}) map[domain.UserID]struct{} {
	out := make(map[domain.UserID]struct{}, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}
