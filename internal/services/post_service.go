package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"github.com/kavro/tidepool/pkg/faults"
	"github.com/kavro/tidepool/pkg/id"
	"github.com/kavro/tidepool/pkg/pagination"
	"go.uber.org/zap"
)

// MaxContentLength is the post content limit in characters after trimming.
const MaxContentLength = 1000

// PostService owns post creation, lookup, listing, and soft deletion.
type PostService struct {
	posts   repositories.PostRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repositories.PostRepository, timeout time.Duration, logger *zap.Logger) *PostService {
	return &PostService{posts: posts, timeout: timeout, logger: logger}
}

// Create stores a new post. Content is trimmed and must be 1-1000 characters
// afterwards.
func (s *PostService) Create(ctx context.Context, authorID uint, rawContent string) (*models.Post, error) {
	content := strings.TrimSpace(rawContent)
	if content == "" {
		return nil, faults.New(faults.EmptyContent, "post content is empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, faults.Newf(faults.ContentTooLong, "post content exceeds %d characters", MaxContentLength)
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	postID, err := id.New()
	if err != nil {
		return nil, storeFault(err)
	}
	now := time.Now()
	post := &models.Post{
		ID:        postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storeFault(err)
	}

	s.logger.Debug("post created", zap.String("post_id", post.ID), zap.Uint("author_id", authorID))
	return post, nil
}

// Delete soft-deletes a post. Only an admin principal may delete; ownership
// does not grant delete rights. A second delete of the same post reports
// PostNotFound because the post is no longer visible.
func (s *PostService) Delete(ctx context.Context, postID string, principal *models.Principal) (*models.Post, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, faults.New(faults.PermissionDenied, "only admins may delete posts")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	post, err := s.posts.SoftDelete(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, faults.Newf(faults.PostNotFound, "post %s not found", postID)
		}
		return nil, storeFault(err)
	}

	s.logger.Debug("post deleted", zap.String("post_id", postID), zap.Uint("deleted_by", principal.ID))
	return post, nil
}

// List returns one page of active posts sorted by createdAt, most recent
// first unless the filter asks for ascending order.
func (s *PostService) List(ctx context.Context, filter models.PostFilter) ([]models.Post, pagination.Meta, error) {
	p := pagination.Params{Page: filter.Page, Limit: filter.Limit}
	if err := p.Validate(); err != nil {
		return nil, pagination.Meta{}, err
	}
	p = p.Clamped()
	sortOrder := filter.Sort
	if sortOrder == "" {
		sortOrder = models.SortDesc
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	total, err := s.posts.Count(ctx, filter.AuthorID)
	if err != nil {
		return nil, pagination.Meta{}, storeFault(err)
	}
	posts, err := s.posts.List(ctx, filter.AuthorID, p.Skip(), p.Limit, sortOrder)
	if err != nil {
		return nil, pagination.Meta{}, storeFault(err)
	}

	return posts, pagination.NewMeta(p, total), nil
}

// GetByID returns an active post by id.
func (s *PostService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, faults.Newf(faults.PostNotFound, "post %s not found", postID)
		}
		return nil, storeFault(err)
	}
	return post, nil
}
