package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Postgres is the database-backed store. All queries use $n placeholders and
// rely on the relational engine for cascades, uniqueness, and timestamp
// defaults; updated_at is stamped explicitly on every UPDATE.
type Postgres struct {
	db *sqlx.DB
}

type Profile struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	FullName  *string   `db:"full_name"`
	Bio       *string   `db:"bio"`
	AvatarURL *string   `db:"avatar_url"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Todo struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Completed   bool      `db:"completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Post struct {
	ID            uuid.UUID  `db:"id"`
	AuthorID      uuid.UUID  `db:"author_id"`
	Title         string     `db:"title"`
	Slug          string     `db:"slug"`
	Content       string     `db:"content"`
	Excerpt       *string    `db:"excerpt"`
	CoverImageURL *string    `db:"cover_image_url"`
	Status        string     `db:"status"`
	ViewCount     int        `db:"view_count"`
	PublishedAt   *time.Time `db:"published_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

type Comment struct {
	ID        uuid.UUID  `db:"id"`
	PostID    uuid.UUID  `db:"post_id"`
	AuthorID  uuid.UUID  `db:"author_id"`
	ParentID  *uuid.UUID `db:"parent_id"`
	Content   string     `db:"content"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CategoryWithCount is a category row annotated with its published-post count.
type CategoryWithCount struct {
	Category
	PostCount int `db:"post_count"`
}

// Open connects to the database. It does not apply the schema; call Migrate.
func Open(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping verifies the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Migrate applies the schema. Every statement is idempotent, so running it
// against an existing database is safe. Statements run one at a time because
// the pgx extended protocol rejects multi-command strings.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// noRows normalizes sql.ErrNoRows so callers can treat an absent row as
// (nil, nil) and distinguish it from a storage failure.
func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
