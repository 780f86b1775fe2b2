package handlers

import (
	"net/http"
	"strconv"

	"github.com/kavro/tidepool/internal/middleware"
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/services"
	"github.com/kavro/tidepool/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post routes on the authenticated group.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// RegisterPublicPostRoutes registers the read-only post routes.
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost creates a new post authored by the current principal.
func (h *PostHandler) CreatePost(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}

	post, err := h.posts.Create(c.Request().Context(), principal.ID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by id.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// ListPosts retrieves one page of posts, optionally filtered by author.
func (h *PostHandler) ListPosts(c echo.Context) error {
	params := paramsFromQuery(c)
	filter := models.PostFilter{
		Page:  params.Page,
		Limit: params.Limit,
		Sort:  models.SortOrder(c.QueryParam("sort")),
	}
	if raw := c.QueryParam("author_id"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid author id")
		}
		id := uint(authorID)
		filter.AuthorID = &id
	}

	posts, meta, err := h.posts.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts, "meta": meta})
}

// DeletePost soft-deletes a post; the core enforces the admin-only rule.
func (h *PostHandler) DeletePost(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)

	post, err := h.posts.Delete(c.Request().Context(), c.Param("id"), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// paramsFromQuery reads page/limit query parameters, applying the canonical
// defaults when a parameter is absent. Explicit out-of-range values pass
// through so the core can reject them.
func paramsFromQuery(c echo.Context) pagination.Params {
	page := pagination.DefaultPage
	if raw := c.QueryParam("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	limit := pagination.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	return pagination.Params{Page: page, Limit: limit}
}
