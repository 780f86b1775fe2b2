package handlers

import (
	"net/http"
	"strconv"

	"github.com/kavro/tidepool/internal/middleware"
	"github.com/kavro/tidepool/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-graph HTTP requests.
type FollowHandler struct {
	social *services.SocialService
}

// NewFollowHandler creates a new FollowHandler.
func NewFollowHandler(social *services.SocialService) *FollowHandler {
	return &FollowHandler{social: social}
}

// RegisterFollowRoutes registers follow-related routes.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/stats", h.GetStats)
}

// FollowUser follows the target user.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)
	targetID, err := userIDParam(c)
	if err != nil {
		return err
	}

	edge, err := h.social.Follow(c.Request().Context(), principal.ID, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, edge)
}

// UnfollowUser removes the active follow edge to the target user.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)
	targetID, err := userIDParam(c)
	if err != nil {
		return err
	}

	edge, err := h.social.Unfollow(c.Request().Context(), principal.ID, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, edge)
}

// GetFollowers returns one page of the user's followers.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	entries, meta, err := h.social.Followers(c.Request().Context(), userID, paramsFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": entries, "meta": meta})
}

// GetFollowing returns one page of the accounts the user follows.
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	entries, meta, err := h.social.Following(c.Request().Context(), userID, paramsFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"following": entries, "meta": meta})
}

// GetStats returns the user's follower/following counts.
func (h *FollowHandler) GetStats(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	stats, err := h.social.Stats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func userIDParam(c echo.Context) (uint, error) {
	raw, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(raw), nil
}
