package groundwork

import (
	"context"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// ListCategories returns all categories with their published-post counts,
// most-used first.
func (e *Engine) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	rows, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	out := make([]CategoryWithCount, 0, len(rows))
	for i := range rows {
		out = append(out, apiCategoryWithCount(&rows[i]))
	}
	return out, nil
}

// CategoryBySlug returns one category with its published-post count.
func (e *Engine) CategoryBySlug(ctx context.Context, slug string) (*CategoryWithCount, error) {
	if slug == "" {
		return nil, BadRequest("slug must not be empty")
	}
	row, err := e.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, internalErr(err)
	}
	if row == nil {
		return nil, NotFound("Category not found")
	}
	cat := apiCategoryWithCount(row)
	return &cat, nil
}

// CreateCategory creates a category. Both the name and the slug must be
// unique.
func (e *Engine) CreateCategory(ctx context.Context, caller Identity, in CategoryCreateInput) (*Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	nameTaken, err := e.store.CategoryNameTaken(ctx, in.Name, uuid.Nil)
	if err != nil {
		return nil, internalErr(err)
	}
	if nameTaken {
		return nil, BadRequest("A category with this name already exists")
	}
	slugTaken, err := e.store.CategorySlugTaken(ctx, in.Slug, uuid.Nil)
	if err != nil {
		return nil, internalErr(err)
	}
	if slugTaken {
		return nil, BadRequest("A category with this slug already exists")
	}
	row := &storage.Category{
		Name:        e.sanitize(in.Name),
		Slug:        in.Slug,
		Description: e.sanitizePtr(in.Description),
	}
	if err := e.store.CreateCategory(ctx, row); err != nil {
		return nil, internalErr(err)
	}
	cat := apiCategory(row)
	return &cat, nil
}

// UpdateCategory applies a partial update, re-checking uniqueness only for
// fields that actually change.
func (e *Engine) UpdateCategory(ctx context.Context, caller Identity, in CategoryUpdateInput) (*Category, error) {
	id, perr := parseID(in.ID, "id")
	if perr != nil {
		return nil, perr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.GetCategory(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if current == nil {
		return nil, NotFound("Category not found")
	}
	if in.Name != nil && *in.Name != current.Name {
		taken, err := e.store.CategoryNameTaken(ctx, *in.Name, id)
		if err != nil {
			return nil, internalErr(err)
		}
		if taken {
			return nil, BadRequest("A category with this name already exists")
		}
	}
	if in.Slug != nil && *in.Slug != current.Slug {
		taken, err := e.store.CategorySlugTaken(ctx, *in.Slug, id)
		if err != nil {
			return nil, internalErr(err)
		}
		if taken {
			return nil, BadRequest("A category with this slug already exists")
		}
	}
	upd := storage.CategoryUpdate{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: e.sanitizeOpt(in.Description),
	}
	if upd.Name != nil {
		clean := e.sanitize(*upd.Name)
		upd.Name = &clean
	}
	updated, err := e.store.UpdateCategory(ctx, id, upd)
	if err != nil {
		return nil, internalErr(err)
	}
	// deleted between the uniqueness checks and the write
	if updated == nil {
		return nil, NotFound("Category not found")
	}
	cat := apiCategory(updated)
	return &cat, nil
}

// DeleteCategory removes a category that no posts reference. The guard
// counts links across every post status, not just published ones.
func (e *Engine) DeleteCategory(ctx context.Context, caller Identity, rawID string) error {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return perr
	}
	current, err := e.store.GetCategory(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if current == nil {
		return NotFound("Category not found")
	}
	linked, err := e.store.CountCategoryPosts(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if linked > 0 {
		return BadRequest("Cannot delete category with existing posts")
	}
	if err := e.store.DeleteCategory(ctx, id); err != nil {
		return internalErr(err)
	}
	return nil
}
