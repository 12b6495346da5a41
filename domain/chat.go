// Package domain contains core concepts of the chat system.
// Entities mirror the snapshots the persistence layer emits on its
// notification channels and are never written back to the store.
package domain

import (
	"time"

	"github.com/samber/lo"
)

// UserID identifies a user across the whole system.
type UserID int64

// ChatType matches the enum values stored by the persistence layer.
type ChatType string

const (
	ChatTypeSingle         ChatType = "single"
	ChatTypeGroup          ChatType = "group"
	ChatTypePublicChannel  ChatType = "public_channel"
	ChatTypePrivateChannel ChatType = "private_channel"
)

// Chat is a full chat snapshot as serialized by the store (row_to_json).
type Chat struct {
	ID        int64      `json:"id"`
	WsID      int64      `json:"ws_id"`
	Name      *string    `json:"name,omitempty"`
	Type      ChatType   `json:"type"`
	Members   []UserID   `json:"members"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// MemberSet returns the members as a set, collapsing duplicates.
func (c Chat) MemberSet() map[UserID]struct{} {
	return lo.SliceToMap(c.Members, func(id UserID) (UserID, struct{}) {
		return id, struct{}{}
	})
}

// SameName reports whether both snapshots carry the same name,
// treating an absent name and an empty one as different values.
func (c Chat) SameName(other Chat) bool {
	if c.Name == nil || other.Name == nil {
		return c.Name == other.Name
	}
	return *c.Name == *other.Name
}

// SameDeletion reports whether the soft-delete marker is unchanged.
func (c Chat) SameDeletion(other Chat) bool {
	if c.DeletedAt == nil || other.DeletedAt == nil {
		return c.DeletedAt == other.DeletedAt
	}
	return c.DeletedAt.Equal(*other.DeletedAt)
}
