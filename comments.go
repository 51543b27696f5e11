package groundwork

import (
	"context"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// CommentsByPost returns the post's comments as a reply tree. The flat
// newest-first ordering from storage carries straight into the tree, so
// both top-level comments and each reply list run newest first.
func (e *Engine) CommentsByPost(ctx context.Context, rawPostID string) ([]*Comment, error) {
	postID, perr := parseID(rawPostID, "postId")
	if perr != nil {
		return nil, perr
	}
	post, err := e.store.GetPost(ctx, postID)
	if err != nil {
		return nil, internalErr(err)
	}
	if post == nil {
		return nil, NotFound("Post not found")
	}
	rows, err := e.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, internalErr(err)
	}
	authors := make(map[uuid.UUID]*Author)
	nodes := make(map[uuid.UUID]*Comment, len(rows))
	ordered := make([]*Comment, 0, len(rows))
	for i := range rows {
		node := apiComment(&rows[i])
		author, err := e.authorFor(ctx, rows[i].AuthorID, authors)
		if err != nil {
			return nil, internalErr(err)
		}
		node.Author = author
		nodes[node.ID] = node
		ordered = append(ordered, node)
	}
	roots := make([]*Comment, 0, len(ordered))
	for _, node := range ordered {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots, nil
}

// CreateComment adds a comment by the caller to a published post. A reply
// must point at an existing comment on the same post.
func (e *Engine) CreateComment(ctx context.Context, caller Identity, in CommentCreateInput) (*Comment, error) {
	postID, perr := parseID(in.PostID, "postId")
	if perr != nil {
		return nil, perr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post, err := e.store.GetPost(ctx, postID)
	if err != nil {
		return nil, internalErr(err)
	}
	if post == nil {
		return nil, NotFound("Post not found")
	}
	if post.Status != StatusPublished {
		return nil, BadRequest("Cannot comment on an unpublished post")
	}
	var parentID *uuid.UUID
	if in.ParentID != nil {
		pid, perr := parseID(*in.ParentID, "parentId")
		if perr != nil {
			return nil, perr
		}
		parent, err := e.store.GetComment(ctx, pid)
		if err != nil {
			return nil, internalErr(err)
		}
		if parent == nil {
			return nil, NotFound("Parent comment not found")
		}
		if parent.PostID != postID {
			return nil, BadRequest("Parent comment belongs to a different post")
		}
		parentID = &pid
	}
	row := &storage.Comment{
		PostID:   postID,
		AuthorID: caller.ID,
		ParentID: parentID,
		Content:  e.sanitize(in.Content),
	}
	if err := e.store.CreateComment(ctx, row); err != nil {
		return nil, internalErr(err)
	}
	return apiComment(row), nil
}

// UpdateComment edits a comment's content. Only its author may edit it.
func (e *Engine) UpdateComment(ctx context.Context, caller Identity, in CommentUpdateInput) (*Comment, error) {
	id, perr := parseID(in.ID, "id")
	if perr != nil {
		return nil, perr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.GetComment(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if current == nil {
		return nil, NotFound("Comment not found")
	}
	if current.AuthorID != caller.ID {
		return nil, Forbidden("You do not have access to this comment")
	}
	updated, err := e.store.UpdateComment(ctx, id, e.sanitize(in.Content))
	if err != nil {
		return nil, internalErr(err)
	}
	// deleted between the ownership check and the write
	if updated == nil {
		return nil, NotFound("Comment not found")
	}
	return apiComment(updated), nil
}

// DeleteComment removes a comment. Only its author may delete it; replies
// go with it via the relational cascade.
func (e *Engine) DeleteComment(ctx context.Context, caller Identity, rawID string) error {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return perr
	}
	current, err := e.store.GetComment(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if current == nil {
		return NotFound("Comment not found")
	}
	if current.AuthorID != caller.ID {
		return Forbidden("You do not have access to this comment")
	}
	if err := e.store.DeleteComment(ctx, id); err != nil {
		return internalErr(err)
	}
	return nil
}

// CommentCount returns the total number of comments on a post.
func (e *Engine) CommentCount(ctx context.Context, rawPostID string) (int, error) {
	postID, perr := parseID(rawPostID, "postId")
	if perr != nil {
		return 0, perr
	}
	n, err := e.store.CountCommentsByPost(ctx, postID)
	if err != nil {
		return 0, internalErr(err)
	}
	return n, nil
}
