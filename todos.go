package groundwork

import (
	"context"
	"math"
	"time"

	"github.com/calebwray/groundwork/internal/storage"
)

// overdueAfter is how long an incomplete todo may sit before the listing
// flags it.
const overdueAfter = 7 * 24 * time.Hour

// ListTodos returns the caller's todos, newest first, each annotated with
// the derived isOverdue and daysOld fields.
func (e *Engine) ListTodos(ctx context.Context, caller Identity) ([]TodoWithMeta, error) {
	rows, err := e.store.ListTodos(ctx, caller.ID)
	if err != nil {
		return nil, internalErr(err)
	}
	now := time.Now()
	out := make([]TodoWithMeta, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		age := now.Sub(row.CreatedAt)
		out = append(out, TodoWithMeta{
			Todo:      apiTodo(row),
			IsOverdue: !row.Completed && age > overdueAfter,
			DaysOld:   daysSince(row.CreatedAt, now),
		})
	}
	return out, nil
}

// GetTodo returns a single todo. A todo belonging to someone else is
// indistinguishable from a missing one.
func (e *Engine) GetTodo(ctx context.Context, caller Identity, rawID string) (*Todo, error) {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return nil, perr
	}
	row, err := e.store.GetTodo(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if row == nil || row.UserID != caller.ID {
		return nil, NotFound("Todo not found")
	}
	todo := apiTodo(row)
	return &todo, nil
}

// CreateTodo creates a todo owned by the caller. Ownership and the initial
// completed state come from the server, never the payload.
func (e *Engine) CreateTodo(ctx context.Context, caller Identity, in TodoCreateInput) (*Todo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	row := &storage.Todo{
		UserID:      caller.ID,
		Title:       e.sanitize(in.Title),
		Description: e.sanitizePtr(in.Description),
		Completed:   false,
	}
	if err := e.store.CreateTodo(ctx, row); err != nil {
		return nil, internalErr(err)
	}
	todo := apiTodo(row)
	return &todo, nil
}

// UpdateTodo applies a partial update to a todo the caller owns.
func (e *Engine) UpdateTodo(ctx context.Context, caller Identity, in TodoUpdateInput) (*Todo, error) {
	id, perr := parseID(in.ID, "id")
	if perr != nil {
		return nil, perr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	row, err := e.store.GetTodo(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if row == nil || row.UserID != caller.ID {
		return nil, NotFound("Todo not found")
	}
	upd := storage.TodoUpdate{
		Title:       in.Title,
		Description: e.sanitizeOpt(in.Description),
		Completed:   in.Completed,
	}
	if upd.Title != nil {
		clean := e.sanitize(*upd.Title)
		upd.Title = &clean
	}
	updated, err := e.store.UpdateTodo(ctx, id, upd)
	if err != nil {
		return nil, internalErr(err)
	}
	// deleted between the ownership check and the write
	if updated == nil {
		return nil, NotFound("Todo not found")
	}
	todo := apiTodo(updated)
	return &todo, nil
}

// DeleteTodo removes a todo the caller owns.
func (e *Engine) DeleteTodo(ctx context.Context, caller Identity, rawID string) error {
	id, perr := parseID(rawID, "id")
	if perr != nil {
		return perr
	}
	row, err := e.store.GetTodo(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if row == nil || row.UserID != caller.ID {
		return NotFound("Todo not found")
	}
	if err := e.store.DeleteTodo(ctx, id); err != nil {
		return internalErr(err)
	}
	return nil
}

// TodoStats aggregates the caller's todos. The completion rate is a
// percentage rounded to two decimals, and zero when there are no todos.
func (e *Engine) TodoStats(ctx context.Context, caller Identity) (*TodoStats, error) {
	total, completed, err := e.store.CountTodosByUser(ctx, caller.ID)
	if err != nil {
		return nil, internalErr(err)
	}
	stats := &TodoStats{
		Total:     total,
		Completed: completed,
		Pending:   total - completed,
	}
	if total > 0 {
		stats.CompletionRate = math.Round(float64(completed)/float64(total)*10000) / 100
	}
	return stats, nil
}

// TodoTotalCount returns the system-wide todo count.
func (e *Engine) TodoTotalCount(ctx context.Context) (int64, error) {
	n, err := e.store.CountTodos(ctx)
	if err != nil {
		return 0, internalErr(err)
	}
	return n, nil
}
