package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const postColumns = "id, author_id, title, slug, content, excerpt, cover_image_url, status, view_count, published_at, created_at, updated_at"

// ListPosts returns one page of posts matching the filter, newest first,
// along with the total match count for pagination.
func (p *Postgres) ListPosts(ctx context.Context, f PostFilter) ([]Post, int, error) {
	conds := sq.And{}
	if f.Status != nil {
		conds = append(conds, sq.Eq{"status": *f.Status})
	}
	if f.AuthorID != nil {
		conds = append(conds, sq.Eq{"author_id": *f.AuthorID})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, sq.Or{sq.ILike{"title": pattern}, sq.ILike{"content": pattern}})
	}
	if f.CategoryID != nil {
		conds = append(conds, sq.Expr(
			"id IN (SELECT post_id FROM post_categories WHERE category_id = ?)", *f.CategoryID))
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		From("posts").
		Where(conds).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build post count query: %w", err)
	}
	var total int
	if err := p.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query, args, err := sq.Select(postColumns).
		From("posts").
		Where(conds).
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build post list query: %w", err)
	}
	var posts []Post
	if err := p.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// GetPost returns a post by id, or nil if absent.
func (p *Postgres) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := p.db.GetContext(ctx, &post,
		"SELECT "+postColumns+" FROM posts WHERE id = $1", id)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post.ID == uuid.Nil {
		return nil, nil
	}
	return &post, nil
}

// GetPostBySlug returns a post by its unique slug, or nil if absent.
func (p *Postgres) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	var post Post
	err := p.db.GetContext(ctx, &post,
		"SELECT "+postColumns+" FROM posts WHERE slug = $1", slug)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	if post.ID == uuid.Nil {
		return nil, nil
	}
	return &post, nil
}

// SlugTaken reports whether a different post already holds slug.
func (p *Postgres) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM posts WHERE slug = $1 AND id <> $2", slug, exclude)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return n > 0, nil
}

// CreatePost inserts the post and attaches its categories in one
// transaction, so a failed attach never leaves an orphaned post.
func (p *Postgres) CreatePost(ctx context.Context, post *Post, categoryIDs []uuid.UUID) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, post,
		`INSERT INTO posts (author_id, title, slug, content, excerpt, cover_image_url, status, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::post_status, $8)
		 RETURNING `+postColumns,
		post.AuthorID, post.Title, post.Slug, post.Content,
		post.Excerpt, post.CoverImageURL, post.Status, post.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)",
			post.ID, catID); err != nil {
			return fmt.Errorf("failed to attach category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

// UpdatePost applies the supplied fields and, when CategoryIDs is set,
// replaces the full category set (delete-then-insert) in the same
// transaction. Returns nil if the post does not exist.
func (p *Postgres) UpdatePost(ctx context.Context, id uuid.UUID, upd PostUpdate) (*Post, error) {
	b := sq.Update("posts").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + postColumns)
	if upd.Title != nil {
		b = b.Set("title", *upd.Title)
	}
	if upd.Slug != nil {
		b = b.Set("slug", *upd.Slug)
	}
	if upd.Content != nil {
		b = b.Set("content", *upd.Content)
	}
	if upd.Excerpt.Set {
		b = b.Set("excerpt", upd.Excerpt.Value)
	}
	if upd.CoverImageURL.Set {
		b = b.Set("cover_image_url", upd.CoverImageURL.Value)
	}
	if upd.Status != nil {
		b = b.Set("status", sq.Expr("?::post_status", *upd.Status))
	}
	if upd.PublishedAt != nil {
		b = b.Set("published_at", *upd.PublishedAt)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post update: %w", err)
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var post Post
	if err := noRows(tx.GetContext(ctx, &post, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if post.ID == uuid.Nil {
		return nil, nil
	}

	if upd.CategoryIDs != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM post_categories WHERE post_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear categories: %w", err)
		}
		for _, catID := range *upd.CategoryIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)",
				id, catID); err != nil {
				return nil, fmt.Errorf("failed to attach category: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit post update: %w", err)
	}
	return &post, nil
}

// DeletePost hard-deletes a post; comments and category links cascade.
func (p *Postgres) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// IncrementPostViews bumps the view counter.
func (p *Postgres) IncrementPostViews(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx,
		"UPDATE posts SET view_count = view_count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// PostCategories returns the categories attached to a post.
func (p *Postgres) PostCategories(ctx context.Context, postID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := p.db.SelectContext(ctx, &categories,
		`SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		 FROM categories c
		 JOIN post_categories pc ON pc.category_id = c.id
		 WHERE pc.post_id = $1
		 ORDER BY c.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post categories: %w", err)
	}
	return categories, nil
}
