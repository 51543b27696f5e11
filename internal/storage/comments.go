package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const commentColumns = "id, post_id, author_id, parent_id, content, created_at, updated_at"

// ListCommentsByPost returns every comment on a post, replies included,
// in descending creation order. Tree assembly happens in the engine.
func (p *Postgres) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	err := p.db.SelectContext(ctx, &comments,
		"SELECT "+commentColumns+" FROM comments WHERE post_id = $1 ORDER BY created_at DESC", postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// GetComment returns a comment by id, or nil if absent.
func (p *Postgres) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var comment Comment
	err := p.db.GetContext(ctx, &comment,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment.ID == uuid.Nil {
		return nil, nil
	}
	return &comment, nil
}

// CreateComment inserts a comment and backfills the storage-managed columns.
func (p *Postgres) CreateComment(ctx context.Context, comment *Comment) error {
	err := p.db.GetContext(ctx, comment,
		`INSERT INTO comments (post_id, author_id, parent_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+commentColumns,
		comment.PostID, comment.AuthorID, comment.ParentID, comment.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// UpdateComment replaces a comment's content and returns the updated row,
// or nil if the comment does not exist.
func (p *Postgres) UpdateComment(ctx context.Context, id uuid.UUID, content string) (*Comment, error) {
	var comment Comment
	err := p.db.GetContext(ctx, &comment,
		`UPDATE comments SET content = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+commentColumns,
		id, content,
	)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	if comment.ID == uuid.Nil {
		return nil, nil
	}
	return &comment, nil
}

// DeleteComment hard-deletes a comment; replies cascade.
func (p *Postgres) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// CountCommentsByPost returns the comment count for a post, replies included.
func (p *Postgres) CountCommentsByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM comments WHERE post_id = $1", postID)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return n, nil
}
