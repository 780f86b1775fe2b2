package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"github.com/kavro/tidepool/internal/services"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// AuthHandler handles signup and signin, the two entry points that mint
// tokens. Password checking lives here, outside the authorization core.
type AuthHandler struct {
	accounts repositories.AccountRepository
	tokens   *services.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts repositories.AccountRepository, tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// RegisterAuthRoutes registers authentication-related routes.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.Signin)
}

// Signup registers a local account and returns a token for it.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.accounts.FindByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "an account with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &models.Account{
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		Active:       true,
		JoinedAt:     time.Now(),
	}
	if err := h.accounts.Create(ctx, account); err != nil {
		return err
	}

	token, err := h.tokens.Issue(account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}

// Signin authenticates email and password and returns a fresh token.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return err
	}
	if !account.Active {
		return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.tokens.Issue(account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
