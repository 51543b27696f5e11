package groundwork

import (
	"context"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// Store is the persistence contract the Engine depends on. It is injected at
// construction rather than held as a process-global, so tests and multi-
// tenant setups can substitute their own implementation.
//
// Lookup methods return (nil, nil) for an absent row; an error always means
// a storage failure. "Taken" checks exclude the row identified by the
// exclude argument (uuid.Nil excludes nothing).
type Store interface {
	ProfileStore
	TodoStore
	PostStore
	CommentStore
	CategoryStore

	Ping(ctx context.Context) error
}

var _ Store = (*storage.Postgres)(nil)

type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *storage.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*storage.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*storage.Profile, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd storage.ProfileUpdate) (*storage.Profile, error)
}

type TodoStore interface {
	ListTodos(ctx context.Context, userID uuid.UUID) ([]storage.Todo, error)
	GetTodo(ctx context.Context, id uuid.UUID) (*storage.Todo, error)
	CreateTodo(ctx context.Context, todo *storage.Todo) error
	UpdateTodo(ctx context.Context, id uuid.UUID, upd storage.TodoUpdate) (*storage.Todo, error)
	DeleteTodo(ctx context.Context, id uuid.UUID) error
	CountTodosByUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error)
	CountTodos(ctx context.Context) (int64, error)
}

type PostStore interface {
	ListPosts(ctx context.Context, f storage.PostFilter) ([]storage.Post, int, error)
	GetPost(ctx context.Context, id uuid.UUID) (*storage.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*storage.Post, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	CreatePost(ctx context.Context, post *storage.Post, categoryIDs []uuid.UUID) error
	UpdatePost(ctx context.Context, id uuid.UUID, upd storage.PostUpdate) (*storage.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	IncrementPostViews(ctx context.Context, id uuid.UUID) error
	PostCategories(ctx context.Context, postID uuid.UUID) ([]storage.Category, error)
}

type CommentStore interface {
	ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]storage.Comment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*storage.Comment, error)
	CreateComment(ctx context.Context, comment *storage.Comment) error
	UpdateComment(ctx context.Context, id uuid.UUID, content string) (*storage.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	CountCommentsByPost(ctx context.Context, postID uuid.UUID) (int, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]storage.CategoryWithCount, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*storage.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*storage.CategoryWithCount, error)
	GetCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]storage.Category, error)
	CategorySlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	CategoryNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, category *storage.Category) error
	UpdateCategory(ctx context.Context, id uuid.UUID, upd storage.CategoryUpdate) (*storage.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountCategoryPosts(ctx context.Context, categoryID uuid.UUID) (int, error)
}
