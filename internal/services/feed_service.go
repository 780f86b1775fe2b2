package services

import (
	"context"
	"time"

	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"go.uber.org/zap"
)

// FeedLimit is the fixed number of entries a feed returns.
const FeedLimit = 10

// FeedService computes a viewer's most-recent-posts-from-followings view by
// composing the follow ledger and the post store. The sort and limit run at
// the storage layer; the full post collection is never materialized.
type FeedService struct {
	posts    repositories.PostRepository
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
	timeout  time.Duration
	logger   *zap.Logger
}

// NewFeedService creates a FeedService.
func NewFeedService(posts repositories.PostRepository, follows repositories.FollowRepository, accounts repositories.AccountRepository, timeout time.Duration, logger *zap.Logger) *FeedService {
	return &FeedService{posts: posts, follows: follows, accounts: accounts, timeout: timeout, logger: logger}
}

// Feed returns up to FeedLimit posts authored by accounts the viewer
// actively follows, newest first, post id as the tie-break when timestamps
// collide. An empty follow set yields an empty feed, not an error.
func (s *FeedService) Feed(ctx context.Context, viewerID uint) ([]models.FeedEntry, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	followedIDs, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, storeFault(err)
	}
	if len(followedIDs) == 0 {
		return []models.FeedEntry{}, nil
	}

	posts, err := s.posts.FindRecentByAuthors(ctx, followedIDs, FeedLimit)
	if err != nil {
		return nil, storeFault(err)
	}

	// One batched author lookup for the whole page.
	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}
	authors, err := s.accounts.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storeFault(err)
	}
	nameByID := make(map[uint]string, len(authors))
	for _, a := range authors {
		nameByID[a.ID] = a.DisplayName
	}

	entries := make([]models.FeedEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, models.FeedEntry{
			PostID:     p.ID,
			Content:    p.Content,
			CreatedAt:  p.CreatedAt,
			AuthorID:   p.AuthorID,
			AuthorName: nameByID[p.AuthorID],
		})
	}

	s.logger.Debug("feed computed",
		zap.Uint("viewer_id", viewerID),
		zap.Int("followed", len(followedIDs)),
		zap.Int("entries", len(entries)))
	return entries, nil
}
