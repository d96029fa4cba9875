package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bitacora-blog/apiserver/types"
	"github.com/google/uuid"
)

// Authors are joined without a deleted_at filter: a soft-deleted author
// still names their posts, while a missing row leaves Author nil.
const blogSelect = `
		SELECT b.id, b.title, b.subtitle, b.text, b.created_by, b.created_at, b.updated_at, b.deleted_at,
			u.id, u.name, u.lastname, u.email, u.role
		FROM blogs b
		LEFT JOIN users u ON u.id = b.created_by`

// BlogRepository handles persistence for blogs.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func scanBlog(row rowScanner) (types.Blog, error) {
	var blog types.Blog
	var deletedAt sql.NullTime
	var authorID, name, lastname, email, role sql.NullString
	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Subtitle,
		&blog.Text,
		&blog.CreatedBy,
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&deletedAt,
		&authorID,
		&name,
		&lastname,
		&email,
		&role,
	)
	if err != nil {
		return types.Blog{}, err
	}
	blog.DeletedAt = timePtr(deletedAt)
	if authorID.Valid {
		blog.Author = &types.Author{
			ID:       authorID.String,
			Name:     name.String,
			Lastname: lastname.String,
			Email:    email.String,
			Role:     types.Role(role.String),
		}
	}
	return blog, nil
}

// List returns active blogs, oldest first, with their authors expanded.
func (r *BlogRepository) List(ctx context.Context) ([]types.Blog, error) {
	const query = blogSelect + `
		WHERE b.deleted_at IS NULL
		ORDER BY b.created_at, b.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]types.Blog, 0)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blogs, nil
}

// Get returns the active blog with id and its author.
func (r *BlogRepository) Get(ctx context.Context, id string) (types.Blog, error) {
	if !validID(id) {
		return types.Blog{}, ErrNotFound
	}

	const query = blogSelect + `
		WHERE b.id = $1 AND b.deleted_at IS NULL`
	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	now := time.Now().UTC()
	blog.ID = uuid.NewString()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	blog.DeletedAt = nil

	const query = `
		INSERT INTO blogs (id, title, subtitle, text, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		blog.ID,
		blog.Title,
		blog.Subtitle,
		blog.Text,
		blog.CreatedBy,
		blog.CreatedAt,
		blog.UpdatedAt,
	); err != nil {
		return types.Blog{}, err
	}
	return blog, nil
}

// Update replaces the editable fields of the active blog with blog.ID.
func (r *BlogRepository) Update(ctx context.Context, blog types.Blog) (types.Blog, error) {
	if !validID(blog.ID) {
		return types.Blog{}, ErrNotFound
	}
	blog.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE blogs
		SET title = $1,
			subtitle = $2,
			text = $3,
			updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(
		ctx,
		query,
		blog.Title,
		blog.Subtitle,
		blog.Text,
		blog.UpdatedAt,
		blog.ID,
	)
	if err != nil {
		return types.Blog{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Blog{}, err
	}
	if affected == 0 {
		return types.Blog{}, ErrNotFound
	}
	return blog, nil
}

// SoftDelete marks the active blog with id as deleted.
func (r *BlogRepository) SoftDelete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	now := time.Now().UTC()
	const query = `
		UPDATE blogs
		SET deleted_at = $1,
			updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
