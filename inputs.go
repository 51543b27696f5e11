package groundwork

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// Pagination bounds for the post listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

// parseID validates the uuid shape of a payload id before any storage
// access. field names the offending input field in the error.
func parseID(raw, field string) (uuid.UUID, *Error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest("%s must be a valid UUID", field)
	}
	return id, nil
}

func validSlug(slug string) bool {
	return len(slug) <= 100 && slugPattern.MatchString(slug)
}

func validStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// --- todo inputs ---

type TodoCreateInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (in TodoCreateInput) Validate() error {
	if in.Title == "" || len(in.Title) > 200 {
		return BadRequest("title must be between 1 and 200 characters")
	}
	if in.Description != nil && len(*in.Description) > 2000 {
		return BadRequest("description must be at most 2000 characters")
	}
	return nil
}

type TodoUpdateInput struct {
	ID          string                   `json:"id"`
	Title       *string                  `json:"title"`
	Description storage.Optional[string] `json:"description"`
	Completed   *bool                    `json:"completed"`
}

func (in TodoUpdateInput) Validate() error {
	if in.Title != nil && (*in.Title == "" || len(*in.Title) > 200) {
		return BadRequest("title must be between 1 and 200 characters")
	}
	if in.Description.Value != nil && len(*in.Description.Value) > 2000 {
		return BadRequest("description must be at most 2000 characters")
	}
	return nil
}

// --- post inputs ---

type PostListInput struct {
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
	Status       *string `json:"status"`
	Search       *string `json:"search"`
	CategorySlug *string `json:"categorySlug"`
}

func (in PostListInput) Validate() error {
	if in.Limit < 0 || in.Limit > MaxPageSize {
		return BadRequest("limit must be between 1 and %d", MaxPageSize)
	}
	if in.Offset < 0 {
		return BadRequest("offset must not be negative")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return BadRequest("status must be one of draft, published, archived")
	}
	return nil
}

type PostCreateInput struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	CoverImageURL *string  `json:"coverImageUrl"`
	Status        *string  `json:"status"`
	CategoryIDs   []string `json:"categoryIds"`
}

func (in PostCreateInput) Validate() error {
	if in.Title == "" || len(in.Title) > 200 {
		return BadRequest("title must be between 1 and 200 characters")
	}
	if !validSlug(in.Slug) {
		return BadRequest("slug must contain only lowercase letters, digits, and hyphens")
	}
	if in.Content == "" {
		return BadRequest("content must not be empty")
	}
	if in.Excerpt != nil && len(*in.Excerpt) > 500 {
		return BadRequest("excerpt must be at most 500 characters")
	}
	if in.CoverImageURL != nil && len(*in.CoverImageURL) > 2048 {
		return BadRequest("coverImageUrl must be at most 2048 characters")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return BadRequest("status must be one of draft, published, archived")
	}
	return nil
}

type PostUpdateInput struct {
	ID            string                   `json:"id"`
	Title         *string                  `json:"title"`
	Slug          *string                  `json:"slug"`
	Content       *string                  `json:"content"`
	Excerpt       storage.Optional[string] `json:"excerpt"`
	CoverImageURL storage.Optional[string] `json:"coverImageUrl"`
	Status        *string                  `json:"status"`
	CategoryIDs   *[]string                `json:"categoryIds"`
}

func (in PostUpdateInput) Validate() error {
	if in.Title != nil && (*in.Title == "" || len(*in.Title) > 200) {
		return BadRequest("title must be between 1 and 200 characters")
	}
	if in.Slug != nil && !validSlug(*in.Slug) {
		return BadRequest("slug must contain only lowercase letters, digits, and hyphens")
	}
	if in.Content != nil && *in.Content == "" {
		return BadRequest("content must not be empty")
	}
	if in.Excerpt.Value != nil && len(*in.Excerpt.Value) > 500 {
		return BadRequest("excerpt must be at most 500 characters")
	}
	if in.CoverImageURL.Value != nil && len(*in.CoverImageURL.Value) > 2048 {
		return BadRequest("coverImageUrl must be at most 2048 characters")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return BadRequest("status must be one of draft, published, archived")
	}
	return nil
}

type MyPostsInput struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Status *string `json:"status"`
}

func (in MyPostsInput) Validate() error {
	if in.Limit < 0 || in.Limit > MaxPageSize {
		return BadRequest("limit must be between 1 and %d", MaxPageSize)
	}
	if in.Offset < 0 {
		return BadRequest("offset must not be negative")
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return BadRequest("status must be one of draft, published, archived")
	}
	return nil
}

// --- comment inputs ---

type CommentCreateInput struct {
	PostID   string  `json:"postId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

func (in CommentCreateInput) Validate() error {
	if in.Content == "" || len(in.Content) > 2000 {
		return BadRequest("content must be between 1 and 2000 characters")
	}
	return nil
}

type CommentUpdateInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (in CommentUpdateInput) Validate() error {
	if in.Content == "" || len(in.Content) > 2000 {
		return BadRequest("content must be between 1 and 2000 characters")
	}
	return nil
}

// --- category inputs ---

type CategoryCreateInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

func (in CategoryCreateInput) Validate() error {
	if in.Name == "" || len(in.Name) > 100 {
		return BadRequest("name must be between 1 and 100 characters")
	}
	if !validSlug(in.Slug) {
		return BadRequest("slug must contain only lowercase letters, digits, and hyphens")
	}
	if in.Description != nil && len(*in.Description) > 500 {
		return BadRequest("description must be at most 500 characters")
	}
	return nil
}

type CategoryUpdateInput struct {
	ID          string                   `json:"id"`
	Name        *string                  `json:"name"`
	Slug        *string                  `json:"slug"`
	Description storage.Optional[string] `json:"description"`
}

func (in CategoryUpdateInput) Validate() error {
	if in.Name != nil && (*in.Name == "" || len(*in.Name) > 100) {
		return BadRequest("name must be between 1 and 100 characters")
	}
	if in.Slug != nil && !validSlug(*in.Slug) {
		return BadRequest("slug must contain only lowercase letters, digits, and hyphens")
	}
	if in.Description.Value != nil && len(*in.Description.Value) > 500 {
		return BadRequest("description must be at most 500 characters")
	}
	return nil
}

// --- profile inputs ---

type ProfileUpdateInput struct {
	Username  *string                  `json:"username"`
	FullName  storage.Optional[string] `json:"fullName"`
	Bio       storage.Optional[string] `json:"bio"`
	AvatarURL storage.Optional[string] `json:"avatarUrl"`
}

func (in ProfileUpdateInput) Validate() error {
	if in.Username != nil && !usernamePattern.MatchString(*in.Username) {
		return BadRequest("username must be 3-50 characters of letters, digits, or underscores")
	}
	if in.FullName.Value != nil && len(*in.FullName.Value) > 100 {
		return BadRequest("fullName must be at most 100 characters")
	}
	if in.Bio.Value != nil && len(*in.Bio.Value) > 500 {
		return BadRequest("bio must be at most 500 characters")
	}
	if in.AvatarURL.Value != nil && len(*in.AvatarURL.Value) > 2048 {
		return BadRequest("avatarUrl must be at most 2048 characters")
	}
	return nil
}
