package services

import (
	"context"
	"errors"
	"time"

	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"github.com/kavro/tidepool/pkg/faults"
	"github.com/kavro/tidepool/pkg/id"
	"github.com/kavro/tidepool/pkg/pagination"
	"go.uber.org/zap"
)

// SocialService is the follow/unfollow relationship ledger. Edges are soft
// deleted; a prior unfollow leaves a permanent historical record and
// re-following creates a new edge row.
type SocialService struct {
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSocialService creates a SocialService.
func NewSocialService(follows repositories.FollowRepository, accounts repositories.AccountRepository, timeout time.Duration, logger *zap.Logger) *SocialService {
	return &SocialService{follows: follows, accounts: accounts, timeout: timeout, logger: logger}
}

// Follow records that followerID follows targetID. Checks run cheapest
// first: self-check, then target existence, then duplicate active edge.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID uint) (*models.FollowEdge, error) {
	if followerID == targetID {
		return nil, faults.New(faults.SelfFollow, "cannot follow yourself")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, faults.Newf(faults.UserNotFound, "user %d not found", targetID)
		}
		return nil, storeFault(err)
	}
	if !target.Active {
		return nil, faults.Newf(faults.UserNotFound, "user %d not found", targetID)
	}

	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return nil, storeFault(err)
	}
	if following {
		return nil, faults.New(faults.AlreadyFollowing, "already following this user")
	}

	edgeID, err := id.New()
	if err != nil {
		return nil, storeFault(err)
	}
	now := time.Now()
	edge := &models.FollowEdge{
		ID:          edgeID,
		FollowerID:  followerID,
		FollowingID: targetID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.follows.Create(ctx, edge); err != nil {
		// Lost a race against a concurrent follow of the same pair.
		if errors.Is(err, repositories.ErrDuplicateEdge) {
			return nil, faults.New(faults.AlreadyFollowing, "already following this user")
		}
		return nil, storeFault(err)
	}

	s.logger.Debug("follow edge created",
		zap.String("edge_id", edge.ID),
		zap.Uint("follower_id", followerID),
		zap.Uint("following_id", targetID))
	return edge, nil
}

// Unfollow soft-deletes the unique active edge for the pair. Repeating the
// call yields NotFollowing, so the outcome is idempotent.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID uint) (*models.FollowEdge, error) {
	if followerID == targetID {
		return nil, faults.New(faults.SelfUnfollow, "cannot unfollow yourself")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	if _, err := s.accounts.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, faults.Newf(faults.UserNotFound, "user %d not found", targetID)
		}
		return nil, storeFault(err)
	}

	edge, err := s.follows.SoftDeleteActive(ctx, followerID, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, faults.New(faults.NotFollowing, "not following this user")
		}
		return nil, storeFault(err)
	}

	s.logger.Debug("follow edge removed",
		zap.String("edge_id", edge.ID),
		zap.Uint("follower_id", followerID),
		zap.Uint("following_id", targetID))
	return edge, nil
}

// Followers returns one page of accounts following userID, newest edge
// first. Edges whose counterpart account cannot be resolved are silently
// excluded rather than failing the page.
func (s *SocialService) Followers(ctx context.Context, userID uint, p pagination.Params) ([]models.FollowEntry, pagination.Meta, error) {
	return s.edgePage(ctx, userID, p, true)
}

// Following returns one page of accounts that userID follows.
func (s *SocialService) Following(ctx context.Context, userID uint, p pagination.Params) ([]models.FollowEntry, pagination.Meta, error) {
	return s.edgePage(ctx, userID, p, false)
}

func (s *SocialService) edgePage(ctx context.Context, userID uint, p pagination.Params, followers bool) ([]models.FollowEntry, pagination.Meta, error) {
	if err := p.Validate(); err != nil {
		return nil, pagination.Meta{}, err
	}
	p = p.Clamped()

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var (
		total int64
		edges []models.FollowEdge
		err   error
	)
	if followers {
		total, err = s.follows.CountFollowers(ctx, userID)
	} else {
		total, err = s.follows.CountFollowing(ctx, userID)
	}
	if err != nil {
		return nil, pagination.Meta{}, storeFault(err)
	}

	if followers {
		edges, err = s.follows.ListFollowers(ctx, userID, p.Skip(), p.Limit)
	} else {
		edges, err = s.follows.ListFollowing(ctx, userID, p.Skip(), p.Limit)
	}
	if err != nil {
		return nil, pagination.Meta{}, storeFault(err)
	}

	counterpartIDs := make([]uint, 0, len(edges))
	for _, e := range edges {
		counterpartIDs = append(counterpartIDs, counterpart(e, followers))
	}
	accounts, err := s.accounts.FindByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, pagination.Meta{}, storeFault(err)
	}
	byID := make(map[uint]models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	entries := make([]models.FollowEntry, 0, len(edges))
	for _, e := range edges {
		account, ok := byID[counterpart(e, followers)]
		if !ok {
			// Referential drift: edge outlived its counterpart account.
			continue
		}
		entries = append(entries, models.FollowEntry{EdgeID: e.ID, Account: account.ToSummary()})
	}

	return entries, pagination.NewMeta(p, total), nil
}

func counterpart(e models.FollowEdge, followers bool) uint {
	if followers {
		return e.FollowerID
	}
	return e.FollowingID
}

// IsFollowing reports whether an active edge exists from a to b.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	following, err := s.follows.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, storeFault(err)
	}
	return following, nil
}

// Stats returns the active-edge counts for userID without materializing the
// full lists.
func (s *SocialService) Stats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, storeFault(err)
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, storeFault(err)
	}
	return &models.FollowStats{FollowersCount: followers, FollowingCount: following}, nil
}
