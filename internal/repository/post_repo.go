package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/internal/model"
)

type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a new post.
func (r *PostRepository) CreatePost(ctx context.Context, p *model.Post) error {
	query := `
        INSERT INTO posts (id, title, description, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	return r.db.QueryRow(ctx, query, p.ID, p.Title, p.Description, p.UserID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// FindByID returns a single post with the owner's email joined in.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
        SELECT p.id, p.title, p.description, p.user_id, u.email, p.created_at, p.updated_at
        FROM posts p
        JOIN users u ON u.id = p.user_id
        WHERE p.id = $1
    `
	var p model.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.UserID, &p.UserEmail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a window of posts ordered newest first, owner email
// joined in.
func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]model.Post, error) {
	query := `
        SELECT p.id, p.title, p.description, p.user_id, u.email, p.created_at, p.updated_at
        FROM posts p
        JOIN users u ON u.id = p.user_id
        ORDER BY p.created_at DESC
        OFFSET $1 LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.UserID, &p.UserEmail, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost overwrites title and description.
func (r *PostRepository) UpdatePost(ctx context.Context, id, title, description string) error {
	query := `UPDATE posts SET title = $2, description = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, title, description)
	return err
}

// DeletePost removes the row.
func (r *PostRepository) DeletePost(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
