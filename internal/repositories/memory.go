package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kavro/tidepool/internal/models"
)

var nowFunc = time.Now

// In-memory repository implementations. A single mutex per repository
// serializes mutations; reads copy rows out under the lock so callers never
// observe a partial update. Used by the service tests and local runs without
// a database.

// MemoryAccountRepository implements AccountRepository in memory.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[uint]models.Account
}

// NewMemoryAccountRepository creates an empty in-memory account store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{nextID: 1, accounts: make(map[uint]models.Account)}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == 0 {
		account.ID = r.nextID
		r.nextID++
	} else if account.ID >= r.nextID {
		r.nextID = account.ID + 1
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *MemoryAccountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r *MemoryAccountRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var accounts []models.Account
	for _, id := range ids {
		if account, ok := r.accounts[id]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (r *MemoryAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			a := account
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryFollowRepository implements FollowRepository in memory. Edges are an
// append-only slice; soft deletes flip the flag in place.
type MemoryFollowRepository struct {
	mu    sync.Mutex
	edges []models.FollowEdge
}

// NewMemoryFollowRepository creates an empty in-memory edge store.
func NewMemoryFollowRepository() *MemoryFollowRepository {
	return &MemoryFollowRepository{}
}

func (r *MemoryFollowRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.FollowerID == edge.FollowerID && e.FollowingID == edge.FollowingID && !e.IsDeleted {
			return ErrDuplicateEdge
		}
	}
	r.edges = append(r.edges, *edge)
	return nil
}

func (r *MemoryFollowRepository) SoftDeleteActive(ctx context.Context, followerID, followingID uint) (*models.FollowEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.edges {
		e := &r.edges[i]
		if e.FollowerID == followerID && e.FollowingID == followingID && !e.IsDeleted {
			e.IsDeleted = true
			e.UpdatedAt = nowFunc()
			deleted := *e
			return &deleted, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID && !e.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryFollowRepository) ListFollowers(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error) {
	return r.listEdges(ctx, func(e models.FollowEdge) bool { return e.FollowingID == userID }, skip, limit)
}

func (r *MemoryFollowRepository) ListFollowing(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error) {
	return r.listEdges(ctx, func(e models.FollowEdge) bool { return e.FollowerID == userID }, skip, limit)
}

func (r *MemoryFollowRepository) listEdges(ctx context.Context, match func(models.FollowEdge) bool, skip, limit int) ([]models.FollowEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.FollowEdge
	for _, e := range r.edges {
		if !e.IsDeleted && match(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.countEdges(ctx, func(e models.FollowEdge) bool { return e.FollowingID == userID })
}

func (r *MemoryFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.countEdges(ctx, func(e models.FollowEdge) bool { return e.FollowerID == userID })
}

func (r *MemoryFollowRepository) countEdges(ctx context.Context, match func(models.FollowEdge) bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.edges {
		if !e.IsDeleted && match(e) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, e := range r.edges {
		if !e.IsDeleted && e.FollowerID == userID {
			ids = append(ids, e.FollowingID)
		}
	}
	return ids, nil
}

// AllEdges returns a copy of every edge row, deleted ones included. Test
// helper for asserting that soft-deleted edges persist.
func (r *MemoryFollowRepository) AllEdges() []models.FollowEdge {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.FollowEdge, len(r.edges))
	copy(out, r.edges)
	return out
}

// MemoryPostRepository implements PostRepository in memory.
type MemoryPostRepository struct {
	mu    sync.Mutex
	posts map[string]models.Post
}

// NewMemoryPostRepository creates an empty in-memory post store.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[string]models.Post)}
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *MemoryPostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.IsDeleted {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (r *MemoryPostRepository) List(ctx context.Context, authorID *uint, skip, limit int, sortOrder models.SortOrder) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Post
	for _, p := range r.posts {
		if p.IsDeleted {
			continue
		}
		if authorID != nil && p.AuthorID != *authorID {
			continue
		}
		matched = append(matched, p)
	}
	asc := sortOrder == models.SortAsc
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			if asc {
				return matched[i].CreatedAt.Before(matched[j].CreatedAt)
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		if asc {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ID > matched[j].ID
	})
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryPostRepository) Count(ctx context.Context, authorID *uint) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.posts {
		if p.IsDeleted {
			continue
		}
		if authorID != nil && p.AuthorID != *authorID {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MemoryPostRepository) SoftDelete(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.IsDeleted {
		return nil, ErrNotFound
	}
	post.IsDeleted = true
	post.UpdatedAt = nowFunc()
	r.posts[id] = post
	return &post, nil
}

func (r *MemoryPostRepository) FindRecentByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	authors := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	var matched []models.Post
	for _, p := range r.posts {
		if !p.IsDeleted && authors[p.AuthorID] {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// AllPosts returns a copy of every post row, deleted ones included. Test
// helper for asserting that soft-deleted posts persist.
func (r *MemoryPostRepository) AllPosts() []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out
}
