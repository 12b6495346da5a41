package notif

import (
	"encoding/json"
	"testing"
	"time"

	"chat-notify/domain"
	"chat-notify/domain/event"
	"chat-notify/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func chatPayload(op string, oldChat, newChat *domain.Chat) ChangeRecord {
	payload, err := json.Marshal(chatUpdated{Op: op, Old: oldChat, New: newChat})
	if err != nil {
		panic(err)
	}
	return ChangeRecord{Channel: ChannelChatChange, Payload: string(payload)}
}

func chat(name *string, members ...domain.UserID) *domain.Chat {
	return &domain.Chat{
		ID:        1,
		WsID:      1,
		Name:      name,
		Type:      domain.ChatTypeGroup,
		Members:   members,
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func users(ids ...domain.UserID) map[domain.UserID]struct{} {
	return lo.SliceToMap(ids, func(id domain.UserID) (domain.UserID, struct{}) {
		return id, struct{}{}
	})
}

func TestTranslate_ChatInsert_NotifiesNewMembers(t *testing.T) {
	req := require.New(t)

	// Given a chat creation carrying only the new snapshot
	rec := chatPayload("INSERT", nil, chat(nil, 1, 2, 3))

	// When the record is translated
	n, err := Translate(rec)

	// Then every member of the new chat is affected
	req.NoError(err)
	req.IsType(event.NewChat{}, n.Event)
	req.Equal(users(1, 2, 3), n.UserIDs)
}

func TestTranslate_ChatDelete_NotifiesOldMembers(t *testing.T) {
	req := require.New(t)

	// Given a chat deletion carrying only the old snapshot
	rec := chatPayload("DELETE", chat(nil, 7, 8), nil)

	// When the record is translated
	n, err := Translate(rec)

	// Then every member of the removed chat is affected
	req.NoError(err)
	req.IsType(event.RemoveFromChat{}, n.Event)
	req.Equal(users(7, 8), n.UserIDs)

	// And the event carries the old snapshot
	req.Equal([]domain.UserID{7, 8}, n.Event.(event.RemoveFromChat).Chat.Members)
}

func TestTranslate_ChatUpdate_NoVisibleChange_NotifiesNobody(t *testing.T) {
	req := require.New(t)

	// Given an update with identical members, name and delete marker
	name := "general"
	rec := chatPayload("UPDATE", chat(&name, 1, 2, 3), chat(&name, 1, 2, 3))

	// When the record is translated
	n, err := Translate(rec)

	// Then nobody is affected
	req.NoError(err)
	req.IsType(event.UpdateChat{}, n.Event)
	req.Empty(n.UserIDs)
}

func TestTranslate_ChatUpdate_Renamed_NotifiesAllMembers(t *testing.T) {
	req := require.New(t)

	// Given an update renaming the chat without touching the members
	oldName, newName := "general", "General Chat"
	rec := chatPayload("UPDATE", chat(&oldName, 1, 2, 3), chat(&newName, 1, 2, 3))

	// When the record is translated
	n, err := Translate(rec)

	// Then every member hears about the rename
	req.NoError(err)
	req.Equal(users(1, 2, 3), n.UserIDs)
}

func TestTranslate_ChatUpdate_SoftDeleted_NotifiesAllMembers(t *testing.T) {
	req := require.New(t)

	// Given an update that only sets the soft-delete marker
	oldChat := chat(nil, 1, 2)
	newChat := chat(nil, 1, 2)
	deletedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	newChat.DeletedAt = &deletedAt
	rec := chatPayload("UPDATE", oldChat, newChat)

	// When the record is translated
	n, err := Translate(rec)

	// Then every member is affected
	req.NoError(err)
	req.Equal(users(1, 2), n.UserIDs)
}

func TestTranslate_ChatUpdate_MembersChanged_NotifiesUnion(t *testing.T) {
	req := require.New(t)

	// Given an update replacing member 3 with member 4
	rec := chatPayload("UPDATE", chat(nil, 1, 2, 3), chat(nil, 1, 2, 4))

	// When the record is translated
	n, err := Translate(rec)

	// Then removed and added members are both affected
	req.NoError(err)
	req.Equal(users(1, 2, 3, 4), n.UserIDs)

	// And the event payload is the new snapshot
	req.Equal([]domain.UserID{1, 2, 4}, n.Event.(event.UpdateChat).Chat.Members)
}

func TestTranslate_ChatUpdate_UnionIgnoresSetSizes(t *testing.T) {
	req := require.New(t)

	// Given an update shrinking the chat to a single member
	rec := chatPayload("UPDATE", chat(nil, 1, 2, 3, 4, 5), chat(nil, 5))

	// When the record is translated
	n, err := Translate(rec)

	// Then the full union is affected
	req.NoError(err)
	req.Equal(users(1, 2, 3, 4, 5), n.UserIDs)
}

func TestTranslate_MessageAdded_NotifiesMembersVerbatim(t *testing.T) {
	req := require.New(t)

	// Given a message notification with an explicit member list
	rec := ChangeRecord{
		Channel: ChannelMessageAdded,
		Payload: `{"message":{"id":42,"chat_id":5,"sender_id":1,"content":"hello","created_at":"2026-01-10T09:00:00Z"},"members":[1,2,3]}`,
	}

	// When the record is translated
	n, err := Translate(rec)

	// Then the affected set is exactly the member list, no diffing
	req.NoError(err)
	req.Equal(users(1, 2, 3), n.UserIDs)

	msg := n.Event.(event.NewMessage).Message
	req.Equal(int64(42), msg.ID)
	req.Equal(int64(5), msg.ChatID)
	req.Equal(domain.UserID(1), msg.SenderID)
	req.Equal("hello", msg.Content)
}

func TestTranslate_MessageAdded_DuplicateMembersCollapse(t *testing.T) {
	req := require.New(t)

	// Given a member list containing the same user twice
	rec := ChangeRecord{
		Channel: ChannelMessageAdded,
		Payload: `{"message":{"id":1,"chat_id":1,"sender_id":2,"content":"x","created_at":"2026-01-10T09:00:00Z"},"members":[2,2,3]}`,
	}

	// When the record is translated
	n, err := Translate(rec)

	// Then the user appears once in the affected set
	req.NoError(err)
	req.Equal(users(2, 3), n.UserIDs)
}

func TestTranslate_UnknownChannel(t *testing.T) {
	req := require.New(t)

	_, err := Translate(ChangeRecord{Channel: "user_change", Payload: "{}"})

	req.ErrorIs(err, errors.ErrUnknownChannel)
}

func TestTranslate_MalformedPayloads(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name string
		rec  ChangeRecord
	}{
		{"invalid json", ChangeRecord{Channel: ChannelChatChange, Payload: "{not json"}},
		{"unknown op", chatPayload("TRUNCATE", chat(nil, 1), chat(nil, 1))},
		{"insert without new", chatPayload("INSERT", chat(nil, 1), nil)},
		{"update without new", chatPayload("UPDATE", chat(nil, 1), nil)},
		{"delete without old", chatPayload("DELETE", nil, chat(nil, 1))},
		{"invalid message json", ChangeRecord{Channel: ChannelMessageAdded, Payload: "[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.rec)
			req.ErrorIs(err, errors.ErrMalformedPayload)
		})
	}
}
