package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"postboard/internal/events"
	"postboard/internal/model"
	"postboard/internal/validate"
)

const postsPerPage = 10

// PostStore is the persistence surface the post service needs.
type PostStore interface {
	CreatePost(ctx context.Context, p *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, offset, limit int) ([]model.Post, error)
	UpdatePost(ctx context.Context, id, title, description string) error
	DeletePost(ctx context.Context, id string) error
}

type PostService struct {
	posts     PostStore
	publisher *events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewPostService(posts PostStore, publisher *events.Publisher, logger *zap.Logger) *PostService {
	return &PostService{
		posts:     posts,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns one 10-item window of posts, newest first. The page
// parameter is 1-indexed; anything at or below 1 means the first
// window.
func (s *PostService) List(ctx context.Context, page int) ([]model.Post, error) {
	pageNum := 0
	if page > 1 {
		pageNum = page - 1
	}
	return s.posts.List(ctx, pageNum*postsPerPage, postsPerPage)
}

// Get returns a single post with the owner's email joined in. An
// unknown id is not an error: the result is simply nil.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create validates and inserts a post owned by ownerID.
func (s *PostService) Create(ctx context.Context, title, description, ownerID string) (*model.Post, error) {
	if err := validate.CreatePost(title, description, ownerID); err != nil {
		return nil, err
	}

	p := &model.Post{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		UserID:      ownerID,
	}
	if err := s.posts.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.PostCreated, events.PostPayload{
		PostID: p.ID, UserID: p.UserID, Title: p.Title, At: s.now(),
	})
	return p, nil
}

// Update overwrites title and description. Only the owner may update.
func (s *PostService) Update(ctx context.Context, id, title, description, callerID string) (*model.Post, error) {
	if err := validate.CreatePost(title, description, callerID); err != nil {
		return nil, err
	}

	existing, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, ErrUnauthorized
	}

	if err := s.posts.UpdatePost(ctx, id, title, description); err != nil {
		return nil, err
	}

	existing.Title = title
	existing.Description = description
	return existing, nil
}

// Delete removes a post. Only the owner may delete.
func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	existing, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if existing.UserID != callerID {
		return ErrUnauthorized
	}

	return s.posts.DeletePost(ctx, id)
}
