package groundwork

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calebwray/groundwork/internal/storage"
)

// fakeStore is an in-memory Store for engine tests. Created rows get
// strictly increasing timestamps so newest-first orderings are
// deterministic, and failWith forces every call to fail for error-path
// tests.
type fakeStore struct {
	mu         sync.Mutex
	profiles   map[uuid.UUID]*storage.Profile
	todos      map[uuid.UUID]*storage.Todo
	posts      map[uuid.UUID]*storage.Post
	comments   map[uuid.UUID]*storage.Comment
	categories map[uuid.UUID]*storage.Category
	postCats   map[uuid.UUID][]uuid.UUID

	clock    time.Time
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:   make(map[uuid.UUID]*storage.Profile),
		todos:      make(map[uuid.UUID]*storage.Todo),
		posts:      make(map[uuid.UUID]*storage.Post),
		comments:   make(map[uuid.UUID]*storage.Comment),
		categories: make(map[uuid.UUID]*storage.Category),
		postCats:   make(map[uuid.UUID][]uuid.UUID),
		clock:      time.Now().Add(-time.Minute),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.failWith
}

// --- profiles ---

func (f *fakeStore) CreateProfile(ctx context.Context, profile *storage.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.Role == "" {
		profile.Role = "user"
	}
	now := f.tick()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, id uuid.UUID) (*storage.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetProfileByUsername(ctx context.Context, username string) (*storage.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, p := range f.profiles {
		if p.Username == username && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd storage.ProfileUpdate) (*storage.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p := f.profiles[id]
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.FullName.Set {
		p.FullName = upd.FullName.Value
	}
	if upd.Bio.Set {
		p.Bio = upd.Bio.Value
	}
	if upd.AvatarURL.Set {
		p.AvatarURL = upd.AvatarURL.Value
	}
	p.UpdatedAt = f.tick()
	cp := *p
	return &cp, nil
}

// --- todos ---

func (f *fakeStore) ListTodos(ctx context.Context, userID uuid.UUID) ([]storage.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Todo
	for _, t := range f.todos {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetTodo(ctx context.Context, id uuid.UUID) (*storage.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	t, ok := f.todos[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) CreateTodo(ctx context.Context, todo *storage.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	todo.ID = uuid.New()
	now := f.tick()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	cp := *todo
	f.todos[todo.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateTodo(ctx context.Context, id uuid.UUID, upd storage.TodoUpdate) (*storage.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	t := f.todos[id]
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description.Set {
		t.Description = upd.Description.Value
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	t.UpdatedAt = f.tick()
	cp := *t
	return &cp, nil
}

func (f *fakeStore) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeStore) CountTodosByUser(ctx context.Context, userID uuid.UUID) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, 0, f.failWith
	}
	var total, completed int
	for _, t := range f.todos {
		if t.UserID == userID {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed, nil
}

func (f *fakeStore) CountTodos(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	return int64(len(f.todos)), nil
}

// --- posts ---

func (f *fakeStore) ListPosts(ctx context.Context, flt storage.PostFilter) ([]storage.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, 0, f.failWith
	}
	var matched []storage.Post
	for _, p := range f.posts {
		if flt.Status != nil && p.Status != *flt.Status {
			continue
		}
		if flt.AuthorID != nil && p.AuthorID != *flt.AuthorID {
			continue
		}
		if flt.Search != "" {
			q := strings.ToLower(flt.Search)
			if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Content), q) {
				continue
			}
		}
		if flt.CategoryID != nil {
			found := false
			for _, cid := range f.postCats[p.ID] {
				if cid == *flt.CategoryID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if flt.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[flt.Offset:]
	if flt.Limit > 0 && len(matched) > flt.Limit {
		matched = matched[:flt.Limit]
	}
	return matched, total, nil
}

func (f *fakeStore) GetPost(ctx context.Context, id uuid.UUID) (*storage.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetPostBySlug(ctx context.Context, slug string) (*storage.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, p := range f.posts {
		if p.Slug == slug && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreatePost(ctx context.Context, post *storage.Post, categoryIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	post.ID = uuid.New()
	now := f.tick()
	post.CreatedAt = now
	post.UpdatedAt = now
	cp := *post
	f.posts[post.ID] = &cp
	if len(categoryIDs) > 0 {
		f.postCats[post.ID] = append([]uuid.UUID(nil), categoryIDs...)
	}
	return nil
}

func (f *fakeStore) UpdatePost(ctx context.Context, id uuid.UUID, upd storage.PostUpdate) (*storage.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p := f.posts[id]
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Slug != nil {
		p.Slug = *upd.Slug
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Excerpt.Set {
		p.Excerpt = upd.Excerpt.Value
	}
	if upd.CoverImageURL.Set {
		p.CoverImageURL = upd.CoverImageURL.Value
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.PublishedAt != nil {
		p.PublishedAt = upd.PublishedAt
	}
	if upd.CategoryIDs != nil {
		f.postCats[id] = append([]uuid.UUID(nil), (*upd.CategoryIDs)...)
	}
	p.UpdatedAt = f.tick()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.posts, id)
	delete(f.postCats, id)
	for cid, c := range f.comments {
		if c.PostID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (f *fakeStore) IncrementPostViews(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.posts[id].ViewCount++
	return nil
}

func (f *fakeStore) PostCategories(ctx context.Context, postID uuid.UUID) ([]storage.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Category
	for _, cid := range f.postCats[postID] {
		if c, ok := f.categories[cid]; ok {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- comments ---

func (f *fakeStore) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]storage.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetComment(ctx context.Context, id uuid.UUID) (*storage.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) CreateComment(ctx context.Context, comment *storage.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	comment.ID = uuid.New()
	now := f.tick()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	cp := *comment
	f.comments[comment.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateComment(ctx context.Context, id uuid.UUID, content string) (*storage.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c := f.comments[id]
	c.Content = content
	c.UpdatedAt = f.tick()
	cp := *c
	return &cp, nil
}

func (f *fakeStore) DeleteComment(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for cid, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(f.comments, cid)
		}
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeStore) CountCommentsByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	var n int
	for _, c := range f.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

// --- categories ---

func (f *fakeStore) ListCategories(ctx context.Context) ([]storage.CategoryWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.CategoryWithCount
	for _, c := range f.categories {
		out = append(out, storage.CategoryWithCount{
			Category:  *c,
			PostCount: f.publishedCount(c.ID),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostCount != out[j].PostCount {
			return out[i].PostCount > out[j].PostCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeStore) publishedCount(categoryID uuid.UUID) int {
	var n int
	for postID, cids := range f.postCats {
		for _, cid := range cids {
			if cid == categoryID {
				if p, ok := f.posts[postID]; ok && p.Status == "published" {
					n++
				}
				break
			}
		}
	}
	return n
}

func (f *fakeStore) GetCategory(ctx context.Context, id uuid.UUID) (*storage.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetCategoryBySlug(ctx context.Context, slug string) (*storage.CategoryWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, c := range f.categories {
		if c.Slug == slug {
			return &storage.CategoryWithCount{
				Category:  *c,
				PostCount: f.publishedCount(c.ID),
			}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]storage.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Category
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) CategorySlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, c := range f.categories {
		if c.Slug == slug && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CategoryNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	for _, c := range f.categories {
		if c.Name == name && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, category *storage.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	category.ID = uuid.New()
	now := f.tick()
	category.CreatedAt = now
	category.UpdatedAt = now
	cp := *category
	f.categories[category.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, id uuid.UUID, upd storage.CategoryUpdate) (*storage.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c := f.categories[id]
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Slug != nil {
		c.Slug = *upd.Slug
	}
	if upd.Description.Set {
		c.Description = upd.Description.Value
	}
	c.UpdatedAt = f.tick()
	cp := *c
	return &cp, nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.categories, id)
	for postID, cids := range f.postCats {
		var kept []uuid.UUID
		for _, cid := range cids {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		f.postCats[postID] = kept
	}
	return nil
}

func (f *fakeStore) CountCategoryPosts(ctx context.Context, categoryID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	var n int
	for _, cids := range f.postCats {
		for _, cid := range cids {
			if cid == categoryID {
				n++
				break
			}
		}
	}
	return n, nil
}

var _ Store = (*fakeStore)(nil)

// --- shared test fixtures ---

func testEngine() (*Engine, *fakeStore) {
	store := newFakeStore()
	return New(store), store
}

// mustIdentity is a caller with no backing profile row.
func mustIdentity() Identity {
	return Identity{ID: uuid.New()}
}

func setOpt(v string) storage.Optional[string] {
	return storage.Optional[string]{Set: true, Value: &v}
}

func strPtr(s string) *string { return &s }

func mustProfile(store *fakeStore, username string) Identity {
	p := &storage.Profile{Username: username}
	if err := store.CreateProfile(context.Background(), p); err != nil {
		panic(err)
	}
	return Identity{ID: p.ID, Email: username + "@example.com"}
}
