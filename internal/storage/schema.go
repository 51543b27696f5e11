package storage

// schema is the full relational contract: six tables, two enums, and the
// unique/foreign-key/index constraints the application depends on. Cascades
// are relational, not application-level: deleting a profile removes its
// todos, posts, and comments; deleting a post removes its comments and
// category links; deleting a parent comment removes its replies.
var schema = []string{
	`DO $$ BEGIN
	    CREATE TYPE user_role AS ENUM ('user', 'moderator', 'admin');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,

	`DO $$ BEGIN
	    CREATE TYPE post_status AS ENUM ('draft', 'published', 'archived');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,

	`CREATE TABLE IF NOT EXISTS profiles (
	    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	    username text NOT NULL UNIQUE,
	    full_name text,
	    bio text,
	    avatar_url text,
	    role user_role NOT NULL DEFAULT 'user',
	    created_at timestamptz NOT NULL DEFAULT now(),
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS todos (
	    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	    user_id uuid NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	    title text NOT NULL,
	    description text,
	    completed boolean NOT NULL DEFAULT false,
	    created_at timestamptz NOT NULL DEFAULT now(),
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_todos_user ON todos (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS posts (
	    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	    author_id uuid NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	    title text NOT NULL,
	    slug text NOT NULL UNIQUE,
	    content text NOT NULL,
	    excerpt text,
	    cover_image_url text,
	    status post_status NOT NULL DEFAULT 'draft',
	    view_count integer NOT NULL DEFAULT 0,
	    published_at timestamptz,
	    created_at timestamptz NOT NULL DEFAULT now(),
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts (status, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS comments (
	    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	    post_id uuid NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	    author_id uuid NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	    parent_id uuid REFERENCES comments(id) ON DELETE CASCADE,
	    content text NOT NULL,
	    created_at timestamptz NOT NULL DEFAULT now(),
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id)`,

	`CREATE TABLE IF NOT EXISTS categories (
	    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	    name text NOT NULL UNIQUE,
	    slug text NOT NULL UNIQUE,
	    description text,
	    created_at timestamptz NOT NULL DEFAULT now(),
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS post_categories (
	    post_id uuid NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	    category_id uuid NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	    PRIMARY KEY (post_id, category_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_post_categories_category ON post_categories (category_id)`,
}
