package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Optional distinguishes an absent JSON field from an explicit null so
// partial updates can clear a nullable column. Set is true whenever the
// field appeared in the payload; Value is nil when it was null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ProfileUpdate applies only the fields that were supplied. Username cannot
// be cleared; the bio-style fields can.
type ProfileUpdate struct {
	Username  *string
	FullName  Optional[string]
	Bio       Optional[string]
	AvatarURL Optional[string]
}

type TodoUpdate struct {
	Title       *string
	Description Optional[string]
	Completed   *bool
}

// PostUpdate applies only the supplied fields. PublishedAt is set by the
// engine on the transition into "published" and never cleared here.
// CategoryIDs, when non-nil, replaces the post's full category set inside
// the same transaction as the row update.
type PostUpdate struct {
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       Optional[string]
	CoverImageURL Optional[string]
	Status        *string
	PublishedAt   *time.Time
	CategoryIDs   *[]uuid.UUID
}

type CategoryUpdate struct {
	Name        *string
	Slug        *string
	Description Optional[string]
}

// PostFilter narrows ListPosts. A nil Status means all statuses; the engine
// supplies the "published" default for public listings.
type PostFilter struct {
	Status     *string
	Search     string
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Limit      int
	Offset     int
}
