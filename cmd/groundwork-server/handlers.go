package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	groundwork "github.com/calebwray/groundwork"
)

// handlers holds the dependencies shared by every procedure.
type handlers struct {
	engine *groundwork.Engine
}

type procedureFunc func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error)

// procedure pairs a handler with its access class. Protected procedures
// are guaranteed a non-nil caller by the router.
type procedure struct {
	protected bool
	call      procedureFunc
}

func decode[T any](params json.RawMessage) (T, error) {
	var in T
	if err := json.Unmarshal(params, &in); err != nil {
		return in, groundwork.BadRequest("Invalid JSON payload: %v", err)
	}
	return in, nil
}

type idParams struct {
	ID string `json:"id"`
}

type slugParams struct {
	Slug string `json:"slug"`
}

type postIDParams struct {
	PostID string `json:"postId"`
}

// deleted is the acknowledgement body for hard deletes.
type deleted struct {
	Success bool `json:"success"`
}

func (h *handlers) procedures() map[string]procedure {
	return map[string]procedure{
		// todos
		"todo.list": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, _ json.RawMessage) (any, error) {
			return h.engine.ListTodos(ctx, *caller)
		}},
		"todo.getById": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			return h.engine.GetTodo(ctx, *caller, in.ID)
		}},
		"todo.create": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.TodoCreateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CreateTodo(ctx, *caller, in)
		}},
		"todo.update": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.TodoUpdateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.UpdateTodo(ctx, *caller, in)
		}},
		"todo.delete": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			if err := h.engine.DeleteTodo(ctx, *caller, in.ID); err != nil {
				return nil, err
			}
			return deleted{Success: true}, nil
		}},
		"todo.getStats": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, _ json.RawMessage) (any, error) {
			return h.engine.TodoStats(ctx, *caller)
		}},
		"todo.getTotalCount": {call: func(ctx context.Context, _ *groundwork.Identity, _ json.RawMessage) (any, error) {
			n, err := h.engine.TodoTotalCount(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int64{"count": n}, nil
		}},

		// posts
		"post.list": {call: func(ctx context.Context, _ *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.PostListInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.ListPosts(ctx, in)
		}},
		"post.getById": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			return h.engine.GetPost(ctx, *caller, in.ID)
		}},
		"post.getBySlug": {call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[slugParams](params)
			if err != nil {
				return nil, err
			}
			return h.engine.GetPostBySlug(ctx, caller, in.Slug)
		}},
		"post.create": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.PostCreateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CreatePost(ctx, *caller, in)
		}},
		"post.update": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.PostUpdateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.UpdatePost(ctx, *caller, in)
		}},
		"post.delete": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			if err := h.engine.DeletePost(ctx, *caller, in.ID); err != nil {
				return nil, err
			}
			return deleted{Success: true}, nil
		}},
		"post.myPosts": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.MyPostsInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.MyPosts(ctx, *caller, in)
		}},

		// comments
		"comment.getByPostId": {call: func(ctx context.Context, _ *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[postIDParams](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CommentsByPost(ctx, in.PostID)
		}},
		"comment.create": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.CommentCreateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CreateComment(ctx, *caller, in)
		}},
		"comment.update": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.CommentUpdateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.UpdateComment(ctx, *caller, in)
		}},
		"comment.delete": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			if err := h.engine.DeleteComment(ctx, *caller, in.ID); err != nil {
				return nil, err
			}
			return deleted{Success: true}, nil
		}},
		"comment.getCountByPostId": {call: func(ctx context.Context, _ *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[postIDParams](params)
			if err != nil {
				return nil, err
			}
			n, err := h.engine.CommentCount(ctx, in.PostID)
			if err != nil {
				return nil, err
			}
			return map[string]int{"count": n}, nil
		}},

		// categories
		"category.list": {call: func(ctx context.Context, _ *groundwork.Identity, _ json.RawMessage) (any, error) {
			return h.engine.ListCategories(ctx)
		}},
		"category.getBySlug": {call: func(ctx context.Context, _ *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[slugParams](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CategoryBySlug(ctx, in.Slug)
		}},
		"category.create": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.CategoryCreateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.CreateCategory(ctx, *caller, in)
		}},
		"category.update": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.CategoryUpdateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.UpdateCategory(ctx, *caller, in)
		}},
		"category.delete": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[idParams](params)
			if err != nil {
				return nil, err
			}
			if err := h.engine.DeleteCategory(ctx, *caller, in.ID); err != nil {
				return nil, err
			}
			return deleted{Success: true}, nil
		}},

		// profiles
		"profile.getCurrent": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, _ json.RawMessage) (any, error) {
			return h.engine.CurrentProfile(ctx, *caller)
		}},
		"profile.update": {protected: true, call: func(ctx context.Context, caller *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[groundwork.ProfileUpdateInput](params)
			if err != nil {
				return nil, err
			}
			return h.engine.UpdateProfile(ctx, *caller, in)
		}},
		"profile.getByUsername": {call: func(ctx context.Context, _ *groundwork.Identity, params json.RawMessage) (any, error) {
			in, err := decode[struct {
				Username string `json:"username"`
			}](params)
			if err != nil {
				return nil, err
			}
			return h.engine.ProfileByUsername(ctx, in.Username)
		}},
	}
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("groundwork-server: write response: %v", err)
	}
}

// writeError renders any error in the uniform envelope, coercing untyped
// failures to INTERNAL_SERVER_ERROR.
func writeError(w http.ResponseWriter, err error) {
	e := groundwork.AsError(err)
	writeJSON(w, groundwork.HTTPStatus(e.Code), map[string]*groundwork.Error{"error": e})
}
