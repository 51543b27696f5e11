package groundwork

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the caller resolved by the external auth boundary. The RPC
// layer hands it to protected procedures; it is never derived in-process.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
}

// PostStatus values for the post lifecycle. The only tracked transition is
// entry into "published", which stamps publishedAt exactly once.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Profile is the caller's own row, role included.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  *string   `json:"fullName"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatarUrl"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicProfile is the reduced field set returned by public lookup.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  *string   `json:"fullName"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Todo struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoWithMeta is a todo annotated with the listing's derived fields.
type TodoWithMeta struct {
	Todo
	IsOverdue bool `json:"isOverdue"`
	DaysOld   int  `json:"daysOld"`
}

type TodoStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completionRate"`
}

// Author is the profile summary embedded in posts and comments.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  *string   `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl"`
}

type Post struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"authorId"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       *string    `json:"excerpt"`
	CoverImageURL *string    `json:"coverImageUrl"`
	Status        string     `json:"status"`
	ViewCount     int        `json:"viewCount"`
	PublishedAt   *time.Time `json:"publishedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PostWithMeta is a post with its embedded author summary, attached
// categories, and comment count.
type PostWithMeta struct {
	Post
	Author       *Author    `json:"author"`
	Categories   []Category `json:"categories"`
	CommentCount int        `json:"commentCount"`
}

// PostList is one page of posts plus the pagination envelope.
type PostList struct {
	Posts   []PostWithMeta `json:"posts"`
	Total   int            `json:"total"`
	HasMore bool           `json:"hasMore"`
}

// Comment is a single comment node. Replies are populated only by the
// tree-assembling list operation.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"postId"`
	AuthorID  uuid.UUID  `json:"authorId"`
	ParentID  *uuid.UUID `json:"parentId"`
	Content   string     `json:"content"`
	Author    *Author    `json:"author,omitempty"`
	Replies   []*Comment `json:"replies,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryWithCount is a category annotated with its published-post count.
type CategoryWithCount struct {
	Category
	PostCount int `json:"postCount"`
}
