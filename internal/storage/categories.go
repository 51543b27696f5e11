package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const categoryColumns = "id, name, slug, description, created_at, updated_at"

const categoryCountColumns = `c.id, c.name, c.slug, c.description, c.created_at, c.updated_at,
	COUNT(p.id) FILTER (WHERE p.status = 'published') AS post_count`

// ListCategories returns every category annotated with its published-post
// count, sorted descending by that count.
func (p *Postgres) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	var categories []CategoryWithCount
	err := p.db.SelectContext(ctx, &categories,
		`SELECT `+categoryCountColumns+`
		 FROM categories c
		 LEFT JOIN post_categories pc ON pc.category_id = c.id
		 LEFT JOIN posts p ON p.id = pc.post_id
		 GROUP BY c.id
		 ORDER BY post_count DESC, c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category by id, or nil if absent.
func (p *Postgres) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	var category Category
	err := p.db.GetContext(ctx, &category,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category.ID == uuid.Nil {
		return nil, nil
	}
	return &category, nil
}

// GetCategoryBySlug returns a category with its published-post count, or nil.
func (p *Postgres) GetCategoryBySlug(ctx context.Context, slug string) (*CategoryWithCount, error) {
	var category CategoryWithCount
	err := p.db.GetContext(ctx, &category,
		`SELECT `+categoryCountColumns+`
		 FROM categories c
		 LEFT JOIN post_categories pc ON pc.category_id = c.id
		 LEFT JOIN posts p ON p.id = pc.post_id
		 WHERE c.slug = $1
		 GROUP BY c.id`, slug)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	if category.ID == uuid.Nil {
		return nil, nil
	}
	return &category, nil
}

// GetCategoriesByIDs returns the categories matching ids; missing ids are
// simply absent from the result, which is how callers detect them.
func (p *Postgres) GetCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT "+categoryColumns+" FROM categories WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}
	var categories []Category
	if err := p.db.SelectContext(ctx, &categories, p.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// CategorySlugTaken reports whether a different category already holds slug.
func (p *Postgres) CategorySlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM categories WHERE slug = $1 AND id <> $2", slug, exclude)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return n > 0, nil
}

// CategoryNameTaken reports whether a different category already holds name.
func (p *Postgres) CategoryNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM categories WHERE name = $1 AND id <> $2", name, exclude)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return n > 0, nil
}

// CreateCategory inserts a category and backfills the storage-managed columns.
func (p *Postgres) CreateCategory(ctx context.Context, category *Category) error {
	err := p.db.GetContext(ctx, category,
		`INSERT INTO categories (name, slug, description)
		 VALUES ($1, $2, $3)
		 RETURNING `+categoryColumns,
		category.Name, category.Slug, category.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory applies the supplied fields and returns the updated row,
// or nil if the category does not exist.
func (p *Postgres) UpdateCategory(ctx context.Context, id uuid.UUID, upd CategoryUpdate) (*Category, error) {
	b := sq.Update("categories").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + categoryColumns)
	if upd.Name != nil {
		b = b.Set("name", *upd.Name)
	}
	if upd.Slug != nil {
		b = b.Set("slug", *upd.Slug)
	}
	if upd.Description.Set {
		b = b.Set("description", upd.Description.Value)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build category update: %w", err)
	}

	var category Category
	if err := noRows(p.db.GetContext(ctx, &category, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if category.ID == uuid.Nil {
		return nil, nil
	}
	return &category, nil
}

// DeleteCategory hard-deletes a category. The engine refuses the delete
// while post links exist; the FK cascade is a backstop, not the contract.
func (p *Postgres) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// CountCategoryPosts returns the number of post links for a category.
func (p *Postgres) CountCategoryPosts(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM post_categories WHERE category_id = $1", categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count category posts: %w", err)
	}
	return n, nil
}
