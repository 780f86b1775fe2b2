package models

import "time"

// FollowEdge is a directed follow relationship. Unfollowing soft-deletes the
// edge; re-following creates a new row, so the full history is preserved. At
// most one active edge may exist per (follower, following) pair, enforced by
// a partial unique index.
type FollowEdge struct {
	ID          string    `json:"id" gorm:"primaryKey;size:26"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_active_follow,where:is_deleted = false"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_active_follow"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsDeleted   bool      `json:"is_deleted" gorm:"index"`
}

// FollowEntry is one row of a followers/following page: the edge joined with
// the counterpart account.
type FollowEntry struct {
	EdgeID  string         `json:"edge_id"`
	Account AccountSummary `json:"account"`
}

// FollowStats are the active-edge counts for one account.
type FollowStats struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}
