package groundwork

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

func assertCode(t *testing.T, err error, code Code) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected typed error, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, e.Code, e.Message)
	}
	return e
}

func TestStorageFailureSurfacesAsInternal(t *testing.T) {
	engine, store := testEngine()
	caller := mustProfile(store, "alice")
	store.failWith = errors.New("connection refused")

	_, err := engine.ListTodos(context.Background(), caller)
	e := assertCode(t, err, CodeInternal)
	if e.Message != "connection refused" {
		t.Errorf("expected underlying message preserved, got %q", e.Message)
	}
}

func TestPing(t *testing.T) {
	engine, store := testEngine()
	if err := engine.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	store.failWith = errors.New("down")
	assertCode(t, engine.Ping(context.Background()), CodeInternal)
}

// vanishingStore simulates a row deleted by a concurrent request between
// the engine's precondition lookup and the update itself: lookups still see
// the row, but every update reports it gone, as the database-backed store
// does when RETURNING matches nothing.
type vanishingStore struct {
	*fakeStore
}

func (v *vanishingStore) UpdateTodo(ctx context.Context, id uuid.UUID, upd storage.TodoUpdate) (*storage.Todo, error) {
	return nil, nil
}

func (v *vanishingStore) UpdatePost(ctx context.Context, id uuid.UUID, upd storage.PostUpdate) (*storage.Post, error) {
	return nil, nil
}

func (v *vanishingStore) UpdateComment(ctx context.Context, id uuid.UUID, content string) (*storage.Comment, error) {
	return nil, nil
}

func (v *vanishingStore) UpdateCategory(ctx context.Context, id uuid.UUID, upd storage.CategoryUpdate) (*storage.Category, error) {
	return nil, nil
}

func (v *vanishingStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd storage.ProfileUpdate) (*storage.Profile, error) {
	return nil, nil
}

func TestUpdateOfConcurrentlyDeletedRow(t *testing.T) {
	base := newFakeStore()
	caller := mustProfile(base, "alice")
	engine := New(&vanishingStore{fakeStore: base})
	ctx := context.Background()

	todo := &storage.Todo{UserID: caller.ID, Title: "doomed"}
	if err := base.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("todo fixture: %v", err)
	}
	post := &storage.Post{AuthorID: caller.ID, Title: "doomed", Slug: "doomed", Content: "x", Status: StatusPublished}
	if err := base.CreatePost(ctx, post, nil); err != nil {
		t.Fatalf("post fixture: %v", err)
	}
	comment := &storage.Comment{PostID: post.ID, AuthorID: caller.ID, Content: "doomed"}
	if err := base.CreateComment(ctx, comment); err != nil {
		t.Fatalf("comment fixture: %v", err)
	}
	category := &storage.Category{Name: "Doomed", Slug: "doomed"}
	if err := base.CreateCategory(ctx, category); err != nil {
		t.Fatalf("category fixture: %v", err)
	}

	title := "renamed"
	_, err := engine.UpdateTodo(ctx, caller, TodoUpdateInput{ID: todo.ID.String(), Title: &title})
	assertCode(t, err, CodeNotFound)

	_, err = engine.UpdatePost(ctx, caller, PostUpdateInput{ID: post.ID.String(), Title: &title})
	assertCode(t, err, CodeNotFound)

	_, err = engine.UpdateComment(ctx, caller, CommentUpdateInput{ID: comment.ID.String(), Content: "edited"})
	assertCode(t, err, CodeNotFound)

	name := "Renamed"
	_, err = engine.UpdateCategory(ctx, caller, CategoryUpdateInput{ID: category.ID.String(), Name: &name})
	assertCode(t, err, CodeNotFound)

	_, err = engine.UpdateProfile(ctx, caller, ProfileUpdateInput{FullName: setOpt("Alice")})
	assertCode(t, err, CodeNotFound)
}

func TestCurrentProfile(t *testing.T) {
	engine, store := testEngine()
	caller := mustProfile(store, "alice")

	profile, err := engine.CurrentProfile(context.Background(), caller)
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("expected username alice, got %q", profile.Username)
	}
	if profile.Role != RoleUser {
		t.Errorf("expected default role user, got %q", profile.Role)
	}

	_, err = engine.CurrentProfile(context.Background(), Identity{ID: caller.ID, Email: "x"})
	if err != nil {
		t.Fatalf("repeat lookup: %v", err)
	}

	_, err = engine.CurrentProfile(context.Background(), mustIdentity())
	assertCode(t, err, CodeNotFound)
}

func TestUpdateProfile(t *testing.T) {
	engine, store := testEngine()
	caller := mustProfile(store, "alice")
	mustProfile(store, "bob")
	ctx := context.Background()

	name := "Alice Liddell"
	profile, err := engine.UpdateProfile(ctx, caller, ProfileUpdateInput{
		FullName: setOpt(name),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.FullName == nil || *profile.FullName != name {
		t.Errorf("expected fullName set, got %v", profile.FullName)
	}

	// clearing with an explicit null
	profile, err = engine.UpdateProfile(ctx, caller, ProfileUpdateInput{
		FullName: storage.Optional[string]{Set: true},
	})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if profile.FullName != nil {
		t.Errorf("expected fullName cleared, got %q", *profile.FullName)
	}

	taken := "bob"
	_, err = engine.UpdateProfile(ctx, caller, ProfileUpdateInput{Username: &taken})
	assertCode(t, err, CodeBadRequest)

	// keeping your own username is not a collision
	same := "alice"
	if _, err := engine.UpdateProfile(ctx, caller, ProfileUpdateInput{Username: &same}); err != nil {
		t.Fatalf("same username: %v", err)
	}

	bad := "x"
	_, err = engine.UpdateProfile(ctx, caller, ProfileUpdateInput{Username: &bad})
	assertCode(t, err, CodeBadRequest)
}

func TestProfileByUsername(t *testing.T) {
	engine, store := testEngine()
	mustProfile(store, "alice")
	ctx := context.Background()

	profile, err := engine.ProfileByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("expected alice, got %q", profile.Username)
	}

	_, err = engine.ProfileByUsername(ctx, "nobody")
	assertCode(t, err, CodeNotFound)

	_, err = engine.ProfileByUsername(ctx, "")
	assertCode(t, err, CodeBadRequest)
}
