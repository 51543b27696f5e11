package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	groundwork "github.com/calebwray/groundwork"
	"github.com/calebwray/groundwork/internal/storage"
)

// seedCmd loads a small demo dataset: two profiles, categories, a published
// post with a comment thread, a draft, and a handful of todos. Profiles go
// through the store directly (the server never creates them); everything
// else goes through the engine so the seeded rows obey the same rules as
// live traffic.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			return seed(ctx, store)
		},
	}
}

func seed(ctx context.Context, store *storage.Postgres) error {
	engine := groundwork.New(store)

	ada, err := seedProfile(ctx, store, "ada", "Ada Lovelace")
	if err != nil {
		return err
	}
	grace, err := seedProfile(ctx, store, "grace", "Grace Hopper")
	if err != nil {
		return err
	}

	golang, err := engine.CreateCategory(ctx, ada, groundwork.CategoryCreateInput{
		Name:        "Go",
		Slug:        "go",
		Description: ptr("Posts about the Go programming language"),
	})
	if err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}
	if _, err := engine.CreateCategory(ctx, ada, groundwork.CategoryCreateInput{
		Name: "Databases",
		Slug: "databases",
	}); err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}

	published := "published"
	post, err := engine.CreatePost(ctx, ada, groundwork.PostCreateInput{
		Title:       "Hello, world",
		Slug:        "hello-world",
		Content:     "The first post on this very new blog.",
		Excerpt:     ptr("The obligatory first post."),
		Status:      &published,
		CategoryIDs: []string{golang.ID.String()},
	})
	if err != nil {
		return fmt.Errorf("failed to seed post: %w", err)
	}
	if _, err := engine.CreatePost(ctx, grace, groundwork.PostCreateInput{
		Title:   "Notes on compilers",
		Slug:    "notes-on-compilers",
		Content: "Still a work in progress.",
	}); err != nil {
		return fmt.Errorf("failed to seed post: %w", err)
	}

	comment, err := engine.CreateComment(ctx, grace, groundwork.CommentCreateInput{
		PostID:  post.ID.String(),
		Content: "Welcome aboard!",
	})
	if err != nil {
		return fmt.Errorf("failed to seed comment: %w", err)
	}
	if _, err := engine.CreateComment(ctx, ada, groundwork.CommentCreateInput{
		PostID:   post.ID.String(),
		Content:  "Thanks!",
		ParentID: ptr(comment.ID.String()),
	}); err != nil {
		return fmt.Errorf("failed to seed comment: %w", err)
	}

	todos := []string{"Write a second post", "Pick a better blog name", "Set up backups"}
	for _, title := range todos {
		if _, err := engine.CreateTodo(ctx, ada, groundwork.TodoCreateInput{Title: title}); err != nil {
			return fmt.Errorf("failed to seed todo: %w", err)
		}
	}

	fmt.Printf("Seeded profiles ada (%s) and grace (%s)\n", ada.ID, grace.ID)
	fmt.Println("Mint a session with: groundwork token <profile-id>")
	return nil
}

func seedProfile(ctx context.Context, store *storage.Postgres, username, fullName string) (groundwork.Identity, error) {
	existing, err := store.GetProfileByUsername(ctx, username)
	if err != nil {
		return groundwork.Identity{}, err
	}
	if existing != nil {
		return groundwork.Identity{ID: existing.ID}, nil
	}

	profile := &storage.Profile{Username: username, FullName: &fullName}
	if err := store.CreateProfile(ctx, profile); err != nil {
		return groundwork.Identity{}, fmt.Errorf("failed to seed profile %s: %w", username, err)
	}
	return groundwork.Identity{ID: profile.ID}, nil
}

func ptr(s string) *string { return &s }
