package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitacora-blog/apiserver/types"
)

// BlogRepository defines persistence operations for blogs.
type BlogRepository interface {
	List(ctx context.Context) ([]types.Blog, error)
	Get(ctx context.Context, id string) (types.Blog, error)
	Create(ctx context.Context, blog types.Blog) (types.Blog, error)
	Update(ctx context.Context, blog types.Blog) (types.Blog, error)
	SoftDelete(ctx context.Context, id string) error
}

// BlogService encapsulates blog use-cases.
type BlogService struct {
	repo   BlogRepository
	events *EventEmitter
}

// NewBlogService constructs the service. events may be nil.
func NewBlogService(repo BlogRepository, events *EventEmitter) *BlogService {
	return &BlogService{repo: repo, events: events}
}

// Create stores a new blog authored by authorID.
func (s *BlogService) Create(ctx context.Context, authorID string, input types.BlogInput) (types.Blog, error) {
	blog, err := s.repo.Create(ctx, types.Blog{
		Title:     strings.TrimSpace(input.Title),
		Subtitle:  strings.TrimSpace(input.Subtitle),
		Text:      input.Text,
		CreatedBy: authorID,
	})
	if err != nil {
		return types.Blog{}, fmt.Errorf("create blog: %w", err)
	}

	s.events.Emit(ctx, BlogEvent{Type: EventBlogCreated, BlogID: blog.ID, ActorID: authorID, Title: blog.Title})
	return blog, nil
}

func (s *BlogService) List(ctx context.Context) ([]types.Blog, error) {
	return s.repo.List(ctx)
}

func (s *BlogService) Get(ctx context.Context, id string) (types.Blog, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces the editable fields of blog id.
func (s *BlogService) Update(ctx context.Context, actorID, id string, input types.BlogInput) (types.Blog, error) {
	blog, err := s.repo.Update(ctx, types.Blog{
		ID:       id,
		Title:    strings.TrimSpace(input.Title),
		Subtitle: strings.TrimSpace(input.Subtitle),
		Text:     input.Text,
	})
	if err != nil {
		return types.Blog{}, err
	}

	s.events.Emit(ctx, BlogEvent{Type: EventBlogUpdated, BlogID: id, ActorID: actorID, Title: blog.Title})
	return blog, nil
}

// Delete soft-deletes blog id.
func (s *BlogService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, BlogEvent{Type: EventBlogDeleted, BlogID: id, ActorID: actorID})
	return nil
}
