// Package groundwork implements the typed procedure layer behind the RPC
// surface: todos, posts, comments, categories, and profiles over an
// injected Store. Every operation takes the caller's Identity explicitly
// and returns a typed *Error on failure.
package groundwork

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/calebwray/groundwork/internal/storage"
)

// Engine executes procedures against the injected store. It holds no
// per-request state, so a single instance serves concurrent callers.
type Engine struct {
	store  Store
	policy *bluemonday.Policy
}

func New(store Store) *Engine {
	return &Engine{
		store:  store,
		policy: bluemonday.UGCPolicy(),
	}
}

// sanitize strips markup that the user-generated-content policy rejects.
// Applied to every free-text field on write.
func (e *Engine) sanitize(s string) string {
	return e.policy.Sanitize(s)
}

func (e *Engine) sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := e.policy.Sanitize(*s)
	return &clean
}

func (e *Engine) sanitizeOpt(o storage.Optional[string]) storage.Optional[string] {
	if o.Value != nil {
		clean := e.policy.Sanitize(*o.Value)
		o.Value = &clean
	}
	return o
}

// Ping reports whether the store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return internalErr(err)
	}
	return nil
}

// --- row conversions ---

func apiProfile(p *storage.Profile) *Profile {
	return &Profile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func apiPublicProfile(p *storage.Profile) *PublicProfile {
	return &PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}

func apiAuthor(p *storage.Profile) *Author {
	if p == nil {
		return nil
	}
	return &Author{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
	}
}

func apiTodo(t *storage.Todo) Todo {
	return Todo{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func apiPost(p *storage.Post) Post {
	return Post{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Status:        p.Status,
		ViewCount:     p.ViewCount,
		PublishedAt:   p.PublishedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func apiComment(c *storage.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func apiCategory(c *storage.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func apiCategoryWithCount(c *storage.CategoryWithCount) CategoryWithCount {
	return CategoryWithCount{
		Category:  apiCategory(&c.Category),
		PostCount: c.PostCount,
	}
}

// --- profile operations ---

// CurrentProfile returns the caller's own profile, role included.
func (e *Engine) CurrentProfile(ctx context.Context, caller Identity) (*Profile, error) {
	profile, err := e.store.GetProfile(ctx, caller.ID)
	if err != nil {
		return nil, internalErr(err)
	}
	if profile == nil {
		return nil, NotFound("Profile not found")
	}
	return apiProfile(profile), nil
}

// UpdateProfile applies a partial update to the caller's profile. A changed
// username must not collide with another profile's.
func (e *Engine) UpdateProfile(ctx context.Context, caller Identity, in ProfileUpdateInput) (*Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.GetProfile(ctx, caller.ID)
	if err != nil {
		return nil, internalErr(err)
	}
	if current == nil {
		return nil, NotFound("Profile not found")
	}
	if in.Username != nil && *in.Username != current.Username {
		taken, err := e.store.UsernameTaken(ctx, *in.Username, caller.ID)
		if err != nil {
			return nil, internalErr(err)
		}
		if taken {
			return nil, BadRequest("Username is already taken")
		}
	}
	upd := storage.ProfileUpdate{
		Username:  in.Username,
		FullName:  e.sanitizeOpt(in.FullName),
		Bio:       e.sanitizeOpt(in.Bio),
		AvatarURL: in.AvatarURL,
	}
	profile, err := e.store.UpdateProfile(ctx, caller.ID, upd)
	if err != nil {
		return nil, internalErr(err)
	}
	// deleted between the existence check and the write
	if profile == nil {
		return nil, NotFound("Profile not found")
	}
	return apiProfile(profile), nil
}

// ProfileByUsername returns the reduced public view of a profile.
func (e *Engine) ProfileByUsername(ctx context.Context, username string) (*PublicProfile, error) {
	if username == "" {
		return nil, BadRequest("username must not be empty")
	}
	profile, err := e.store.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, internalErr(err)
	}
	if profile == nil {
		return nil, NotFound("Profile not found")
	}
	return apiPublicProfile(profile), nil
}

// authorFor looks up the author summary for an owning id, tolerating a
// missing profile row.
func (e *Engine) authorFor(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*Author) (*Author, error) {
	if a, ok := cache[id]; ok {
		return a, nil
	}
	profile, err := e.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	a := apiAuthor(profile)
	cache[id] = a
	return a, nil
}

func daysSince(t, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}
