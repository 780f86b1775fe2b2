package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"github.com/kavro/tidepool/pkg/faults"
	"github.com/kavro/tidepool/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newPostFixture() (*PostService, *repositories.MemoryPostRepository) {
	repo := repositories.NewMemoryPostRepository()
	return NewPostService(repo, time.Second, logger.Nop()), repo
}

func adminPrincipal() *models.Principal {
	return &models.Principal{ID: 1, Role: models.RoleAdmin, DisplayName: "Alice"}
}

func userPrincipal() *models.Principal {
	return &models.Principal{ID: 2, Role: models.RoleUser, DisplayName: "Bob"}
}

func TestCreatePostTrimsContent(t *testing.T) {
	svc, _ := newPostFixture()

	post, err := svc.Create(context.Background(), 2, "  hello world  \n")
	require.NoError(t, err)
	require.Equal(t, "hello world", post.Content)
	require.Equal(t, uint(2), post.AuthorID)
	require.NotEmpty(t, post.ID)
	require.False(t, post.IsDeleted)
}

func TestCreatePostEmptyContent(t *testing.T) {
	svc, _ := newPostFixture()

	_, err := svc.Create(context.Background(), 2, "   \t\n ")
	require.True(t, faults.IsKind(err, faults.EmptyContent))
}

func TestCreatePostContentTooLong(t *testing.T) {
	svc, _ := newPostFixture()

	_, err := svc.Create(context.Background(), 2, strings.Repeat("a", 1001))
	require.True(t, faults.IsKind(err, faults.ContentTooLong))
}

func TestCreatePostContentAtLimit(t *testing.T) {
	svc, _ := newPostFixture()

	post, err := svc.Create(context.Background(), 2, strings.Repeat("a", 1000))
	require.NoError(t, err)
	require.Len(t, post.Content, 1000)
}

func TestCreatePostLengthCountsRunes(t *testing.T) {
	svc, _ := newPostFixture()

	// 1000 multibyte characters are within the limit even though the byte
	// count is far larger.
	post, err := svc.Create(context.Background(), 2, strings.Repeat("ä", 1000))
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
}

func TestDeletePostAdminOnly(t *testing.T) {
	svc, repo := newPostFixture()
	ctx := context.Background()

	post, err := svc.Create(ctx, 2, "ephemeral")
	require.NoError(t, err)

	// The author cannot delete their own post; only an admin can.
	_, err = svc.Delete(ctx, post.ID, userPrincipal())
	require.True(t, faults.IsKind(err, faults.PermissionDenied))

	deleted, err := svc.Delete(ctx, post.ID, adminPrincipal())
	require.NoError(t, err)
	require.Equal(t, post.ID, deleted.ID)
	require.True(t, deleted.IsDeleted)

	// Second delete reports PostNotFound; the row itself persists.
	_, err = svc.Delete(ctx, post.ID, adminPrincipal())
	require.True(t, faults.IsKind(err, faults.PostNotFound))

	all := repo.AllPosts()
	require.Len(t, all, 1)
	require.True(t, all[0].IsDeleted)
}

func TestDeletePostNilPrincipal(t *testing.T) {
	svc, _ := newPostFixture()

	_, err := svc.Delete(context.Background(), "whatever", nil)
	require.True(t, faults.IsKind(err, faults.PermissionDenied))
}

func TestDeletePostNotFound(t *testing.T) {
	svc, _ := newPostFixture()

	_, err := svc.Delete(context.Background(), "missing", adminPrincipal())
	require.True(t, faults.IsKind(err, faults.PostNotFound))
}

func TestGetByID(t *testing.T) {
	svc, _ := newPostFixture()
	ctx := context.Background()

	post, err := svc.Create(ctx, 2, "findable")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, post.ID, got.ID)

	_, err = svc.GetByID(ctx, "missing")
	require.True(t, faults.IsKind(err, faults.PostNotFound))
}

func TestGetByIDHidesDeleted(t *testing.T) {
	svc, _ := newPostFixture()
	ctx := context.Background()

	post, err := svc.Create(ctx, 2, "soon gone")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, post.ID, adminPrincipal())
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, post.ID)
	require.True(t, faults.IsKind(err, faults.PostNotFound))
}

func seedPost(t *testing.T, repo *repositories.MemoryPostRepository, id string, authorID uint, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Post{
		ID:        id,
		AuthorID:  authorID,
		Content:   "post " + id,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func TestListInvalidPagination(t *testing.T) {
	svc, _ := newPostFixture()
	ctx := context.Background()

	_, _, err := svc.List(ctx, models.PostFilter{Page: 0, Limit: 10})
	require.True(t, faults.IsKind(err, faults.InvalidPagination))

	_, _, err = svc.List(ctx, models.PostFilter{Page: 1, Limit: 0})
	require.True(t, faults.IsKind(err, faults.InvalidPagination))

	_, _, err = svc.List(ctx, models.PostFilter{Page: -2, Limit: 10})
	require.True(t, faults.IsKind(err, faults.InvalidPagination))
}

func TestListDefaultSortIsNewestFirst(t *testing.T) {
	svc, repo := newPostFixture()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "p1", 2, base)
	seedPost(t, repo, "p2", 2, base.Add(time.Minute))
	seedPost(t, repo, "p3", 2, base.Add(2*time.Minute))

	posts, meta, err := svc.List(context.Background(), models.PostFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), meta.Total)
	require.Equal(t, []string{"p3", "p2", "p1"}, postIDs(posts))
}

func TestListAscending(t *testing.T) {
	svc, repo := newPostFixture()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "p1", 2, base)
	seedPost(t, repo, "p2", 2, base.Add(time.Minute))

	posts, _, err := svc.List(context.Background(), models.PostFilter{Page: 1, Limit: 10, Sort: models.SortAsc})
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2"}, postIDs(posts))
}

func TestListFilterByAuthor(t *testing.T) {
	svc, repo := newPostFixture()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "p1", 2, base)
	seedPost(t, repo, "p2", 3, base.Add(time.Minute))
	seedPost(t, repo, "p3", 2, base.Add(2*time.Minute))

	author := uint(2)
	posts, meta, err := svc.List(context.Background(), models.PostFilter{AuthorID: &author, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), meta.Total)
	for _, p := range posts {
		require.Equal(t, author, p.AuthorID)
	}
}

func TestListPaging(t *testing.T) {
	svc, repo := newPostFixture()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPost(t, repo, []string{"p1", "p2", "p3", "p4", "p5"}[i], 2, base.Add(time.Duration(i)*time.Minute))
	}

	posts, meta, err := svc.List(context.Background(), models.PostFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"p3", "p2"}, postIDs(posts))
	require.Equal(t, 3, meta.TotalPages)
	require.True(t, meta.HasNext)
	require.True(t, meta.HasPrev)
}

func TestListHidesDeleted(t *testing.T) {
	svc, repo := newPostFixture()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, repo, "p1", 2, base)
	seedPost(t, repo, "p2", 2, base.Add(time.Minute))

	_, err := svc.Delete(ctx, "p2", adminPrincipal())
	require.NoError(t, err)

	posts, meta, err := svc.List(ctx, models.PostFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), meta.Total)
	require.Equal(t, []string{"p1"}, postIDs(posts))
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
