package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"

	accessCookieMaxAge  = 60 * 60
	refreshCookieMaxAge = 7 * 24 * 60 * 60
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	GoogleLogin(ctx context.Context, code string, role domain.Role) (domain.TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string) (domain.TokenPair, error)
	Logout(ctx context.Context, rawRefresh string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error)
	Forgot(ctx context.Context, email string) error
	Reset(ctx context.Context, rawToken, newPassword string) (*domain.User, error)
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.With("component", "auth_handler")}
}

type registerRequest struct {
	Name            string      `json:"name"            binding:"required,max=100"`
	Email           string      `json:"email"           binding:"required,email"`
	Password        string      `json:"password"        binding:"required,min=8"`
	ConfirmPassword string      `json:"confirmPassword" binding:"required,eqfield=Password"`
	Phone           string      `json:"phone"           binding:"required,max=20"`
	Address         string      `json:"address"         binding:"required,max=255"`
	Role            domain.Role `json:"role"            binding:"omitempty,oneof=STORE_OWNER CUSTOMER"`
}

type userResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// POST /api/users
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			respondError(c, http.StatusConflict, errEmailTaken)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusCreated, userResponse{Name: user.Name, Email: user.Email})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/users/login
// Wrong password and unknown email return the identical error — the
// response must not reveal whether the account exists.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type googleLoginRequest struct {
	Code string      `json:"code" binding:"required"`
	Role domain.Role `json:"role" binding:"omitempty,oneof=STORE_OWNER CUSTOMER"`
}

// POST /api/users/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.auth.GoogleLogin(c.Request.Context(), req.Code, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			respondError(c, http.StatusUnauthorized, errUnauthorized)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "google login", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/users/refresh
// Reads the refresh token from its cookie and rotates the pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		respondError(c, http.StatusUnauthorized, errTokenInvalid)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenExpired) {
			respondError(c, http.StatusUnauthorized, errTokenInvalid)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "refresh", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// DELETE /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		respondError(c, http.StatusUnauthorized, errTokenInvalid)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), raw); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenExpired) {
			respondError(c, http.StatusUnauthorized, errTokenInvalid)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "logout", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	h.clearAuthCookies(c)
	respond(c, http.StatusOK, gin.H{"message": "Logged out"})
}

type profileResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone,omitempty"`
	Address    string  `json:"address,omitempty"`
	Role       string  `json:"role"`
	VerifiedAt *string `json:"verifiedAt,omitempty"`
}

// GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, errEmailNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get profile", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	resp := profileResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		Role:    string(user.Role),
	}
	if user.VerifiedAt != nil {
		v := user.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &v
	}
	respond(c, http.StatusOK, resp)
}

// GET /api/users/verify?token=<purpose token>
func (h *AuthHandler) Verify(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		respondError(c, http.StatusUnauthorized, errTokenInvalid)
		return
	}

	user, err := h.auth.VerifyEmail(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenExpired) {
			respondError(c, http.StatusUnauthorized, errTokenInvalid)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "verify email", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusOK, userResponse{Name: user.Name, Email: user.Email})
}

type forgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/users/forgot
func (h *AuthHandler) Forgot(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.Forgot(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, errEmailNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "forgot password", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Reset email queued"})
}

type resetRequest struct {
	Token           string `json:"token"           binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// POST /api/users/reset
func (h *AuthHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Reset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenExpired):
			respondError(c, http.StatusUnauthorized, errTokenInvalid)
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, errEmailNotFound)
		default:
			h.logger.ErrorContext(c.Request.Context(), "reset password", "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respond(c, http.StatusOK, userResponse{Name: user.Name, Email: user.Email})
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, pair domain.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, pair.AccessToken, accessCookieMaxAge, "/", "", true, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, refreshCookieMaxAge, "/", "", true, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", true, true)
}
