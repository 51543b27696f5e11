package groundwork

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// decoratePosts attaches the author summary, category list, and comment
// count to each row. Author lookups are cached across the page.
func (e *Engine) decoratePosts(ctx context.Context, rows []storage.Post) ([]PostWithMeta, error) {
	authors := make(map[uuid.UUID]*Author)
	out := make([]PostWithMeta, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		author, err := e.authorFor(ctx, row.AuthorID, authors)
		if err != nil {
			return nil, err
		}
		cats, err := e.store.PostCategories(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		categories := make([]Category, 0, len(cats))
		for j := range cats {
			categories = append(categories, apiCategory(&cats[j]))
		}
		count, err := e.store.CountCommentsByPost(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, PostWithMeta{
			Post:         apiPost(row),
			Author:       author,
			Categories:   categories,
			CommentCount: count,
		})
	}
	return out, nil
}

func (e *Engine) listPosts(ctx context.Context, f storage.PostFilter) (*PostList, error) {
	rows, total, err := e.store.ListPosts(ctx, f)
	if err != nil {
		return nil, internalErr(err)
	}
	posts, err := e.decoratePosts(ctx, rows)
	if err != nil {
		return nil, internalErr(err)
	}
	return &PostList{
		Posts:   posts,
		Total:   total,
		HasMore: f.Offset+len(rows) < total,
	}, nil
}

// ListPosts is the public post listing. Without an explicit status it shows
// published posts only; an unknown category slug is an error rather than an
// empty page.
func (e *Engine) ListPosts(ctx context.Context, in PostListInput) (*PostList, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f := storage.PostFilter{
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if f.Status == nil {
		published := StatusPublished
		f.Status = &published
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageSize
	}
	if in.Search != nil {
		f.Search = *in.Search
	}
	if in.CategorySlug != nil {
		cat, err := e.store.GetCategoryBySlug(ctx, *in.CategorySlug)
		if err != nil {
			return nil, internalErr(err)
		}
		if cat == nil {
			return nil, NotFound("Category not found")
		}
		f.CategoryID = &cat.ID
	}
	return e.listPosts(ctx, f)
}

// MyPosts lists the caller's own posts across all statuses unless one is
// requested.
func (e *Engine) MyPosts(ctx context.Context, caller Identity, in MyPostsInput) (*PostList, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f := storage.PostFilter{
		Status:   in.Status,
		AuthorID: &caller.ID,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageSize
	}
	return e.listPosts(ctx, f)
}

// GetPost returns a post by id to its author. Someone else's post is a
// FORBIDDEN, not a NOT_FOUND: id-based access is an authoring surface.
func (e *Engine) GetPost(ctx context.Context, caller Identity, rawID string) (*PostWithMeta, error) {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return nil, perr
	}
	row, err := e.store.GetPost(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if row == nil {
		return nil, NotFound("Post not found")
	}
	if row.AuthorID != caller.ID {
		return nil, Forbidden("You do not have access to this post")
	}
	decorated, err := e.decoratePosts(ctx, []storage.Post{*row})
	if err != nil {
		return nil, internalErr(err)
	}
	return &decorated[0], nil
}

// GetPostBySlug is the public read. Non-published posts are visible only to
// their author and otherwise report NOT_FOUND so drafts leak nothing.
// Reading a published post counts a view.
func (e *Engine) GetPostBySlug(ctx context.Context, caller *Identity, slug string) (*PostWithMeta, error) {
	if slug == "" {
		return nil, BadRequest("slug must not be empty")
	}
	row, err := e.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, internalErr(err)
	}
	if row == nil {
		return nil, NotFound("Post not found")
	}
	if row.Status != StatusPublished {
		if caller == nil || caller.ID != row.AuthorID {
			return nil, NotFound("Post not found")
		}
	} else {
		if err := e.store.IncrementPostViews(ctx, row.ID); err != nil {
			return nil, internalErr(err)
		}
		row.ViewCount++
	}
	decorated, err := e.decoratePosts(ctx, []storage.Post{*row})
	if err != nil {
		return nil, internalErr(err)
	}
	return &decorated[0], nil
}

// resolveCategoryIDs parses and verifies that every referenced category
// exists before any write happens.
func (e *Engine) resolveCategoryIDs(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, perr := parseID(r, "categoryIds")
		if perr != nil {
			return nil, perr
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}
	found, err := e.store.GetCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, internalErr(err)
	}
	if len(found) != len(ids) {
		return nil, BadRequest("One or more categories do not exist")
	}
	return ids, nil
}

// CreatePost creates a post authored by the caller. The slug must be
// unique, every category must exist, and a post born published gets its
// publishedAt stamped immediately.
func (e *Engine) CreatePost(ctx context.Context, caller Identity, in PostCreateInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	taken, err := e.store.SlugTaken(ctx, in.Slug, uuid.Nil)
	if err != nil {
		return nil, internalErr(err)
	}
	if taken {
		return nil, BadRequest("A post with this slug already exists")
	}
	categoryIDs, cerr := e.resolveCategoryIDs(ctx, in.CategoryIDs)
	if cerr != nil {
		return nil, cerr
	}
	status := StatusDraft
	if in.Status != nil {
		status = *in.Status
	}
	row := &storage.Post{
		AuthorID:      caller.ID,
		Title:         e.sanitize(in.Title),
		Slug:          in.Slug,
		Content:       e.sanitize(in.Content),
		Excerpt:       e.sanitizePtr(in.Excerpt),
		CoverImageURL: in.CoverImageURL,
		Status:        status,
	}
	if status == StatusPublished {
		now := time.Now()
		row.PublishedAt = &now
	}
	if err := e.store.CreatePost(ctx, row, categoryIDs); err != nil {
		return nil, internalErr(err)
	}
	post := apiPost(row)
	return &post, nil
}

// UpdatePost applies a partial update to a post the caller authored. The
// first transition into "published" stamps publishedAt; later transitions
// leave the original stamp intact.
func (e *Engine) UpdatePost(ctx context.Context, caller Identity, in PostUpdateInput) (*Post, error) {
	id, perr := parseID(in.ID, "id")
	if perr != nil {
		return nil, perr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.GetPost(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if current == nil {
		return nil, NotFound("Post not found")
	}
	if current.AuthorID != caller.ID {
		return nil, Forbidden("You do not have access to this post")
	}
	if in.Slug != nil && *in.Slug != current.Slug {
		taken, err := e.store.SlugTaken(ctx, *in.Slug, id)
		if err != nil {
			return nil, internalErr(err)
		}
		if taken {
			return nil, BadRequest("A post with this slug already exists")
		}
	}
	upd := storage.PostUpdate{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       e.sanitizeOpt(in.Excerpt),
		CoverImageURL: in.CoverImageURL,
		Status:        in.Status,
	}
	if upd.Title != nil {
		clean := e.sanitize(*upd.Title)
		upd.Title = &clean
	}
	if upd.Content != nil {
		clean := e.sanitize(*upd.Content)
		upd.Content = &clean
	}
	if in.Status != nil && *in.Status == StatusPublished && current.PublishedAt == nil {
		now := time.Now()
		upd.PublishedAt = &now
	}
	if in.CategoryIDs != nil {
		categoryIDs, cerr := e.resolveCategoryIDs(ctx, *in.CategoryIDs)
		if cerr != nil {
			return nil, cerr
		}
		upd.CategoryIDs = &categoryIDs
	}
	updated, err := e.store.UpdatePost(ctx, id, upd)
	if err != nil {
		return nil, internalErr(err)
	}
	// deleted between the ownership check and the write
	if updated == nil {
		return nil, NotFound("Post not found")
	}
	post := apiPost(updated)
	return &post, nil
}

// DeletePost removes a post the caller authored. Comments and category
// links go with it via the relational cascades.
func (e *Engine) DeletePost(ctx context.Context, caller Identity, rawID string) error {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return perr
	}
	current, err := e.store.GetPost(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if current == nil {
		return NotFound("Post not found")
	}
	if current.AuthorID != caller.ID {
		return Forbidden("You do not have access to this post")
	}
	if err := e.store.DeletePost(ctx, id); err != nil {
		return internalErr(err)
	}
	return nil
}
