package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const todoColumns = "id, user_id, title, description, completed, created_at, updated_at"

// ListTodos returns all todos owned by userID, newest first.
func (p *Postgres) ListTodos(ctx context.Context, userID uuid.UUID) ([]Todo, error) {
	var todos []Todo
	err := p.db.SelectContext(ctx, &todos,
		"SELECT "+todoColumns+" FROM todos WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetTodo returns a todo by id, or nil if absent.
func (p *Postgres) GetTodo(ctx context.Context, id uuid.UUID) (*Todo, error) {
	var todo Todo
	err := p.db.GetContext(ctx, &todo,
		"SELECT "+todoColumns+" FROM todos WHERE id = $1", id)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	if todo.ID == uuid.Nil {
		return nil, nil
	}
	return &todo, nil
}

// CreateTodo inserts a todo and backfills the storage-managed columns.
func (p *Postgres) CreateTodo(ctx context.Context, todo *Todo) error {
	err := p.db.GetContext(ctx, todo,
		`INSERT INTO todos (user_id, title, description)
		 VALUES ($1, $2, $3)
		 RETURNING `+todoColumns,
		todo.UserID, todo.Title, todo.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// UpdateTodo applies the supplied fields and returns the updated row, or nil
// if the todo does not exist.
func (p *Postgres) UpdateTodo(ctx context.Context, id uuid.UUID, upd TodoUpdate) (*Todo, error) {
	b := sq.Update("todos").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + todoColumns)
	if upd.Title != nil {
		b = b.Set("title", *upd.Title)
	}
	if upd.Description.Set {
		b = b.Set("description", upd.Description.Value)
	}
	if upd.Completed != nil {
		b = b.Set("completed", *upd.Completed)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build todo update: %w", err)
	}

	var todo Todo
	if err := noRows(p.db.GetContext(ctx, &todo, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if todo.ID == uuid.Nil {
		return nil, nil
	}
	return &todo, nil
}

// DeleteTodo hard-deletes a todo.
func (p *Postgres) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// CountTodosByUser returns the caller's total and completed todo counts.
func (p *Postgres) CountTodosByUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error) {
	row := struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}{}
	err = p.db.GetContext(ctx, &row,
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed
		 FROM todos WHERE user_id = $1`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return row.Total, row.Completed, nil
}

// CountTodos returns the global todo count across all users.
func (p *Postgres) CountTodos(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM todos"); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}
