package handlers

import (
	"net/http"

	"github.com/kavro/tidepool/internal/middleware"
	"github.com/kavro/tidepool/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed HTTP requests.
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the most recent posts from accounts the viewer follows.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)

	entries, err := h.feed.Feed(c.Request().Context(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"feed": entries})
}
