package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/ovotrack/auth-service/internal/config"
	"github.com/ovotrack/auth-service/internal/middleware"
	"github.com/ovotrack/auth-service/internal/model"
	"github.com/ovotrack/auth-service/internal/service"
	"github.com/ovotrack/auth-service/internal/utils"
)

// Password length bounds enforced at the edge; anything beyond length is
// policy and does not belong here.
const (
	minPasswordLen = 8
	maxPasswordLen = 128
	maxEmailLen    = 320
)

// dbTimeout bounds the work a single auth request may spend on storage and
// verification calls.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints. All policy lives in
// the service; handlers bind, validate shape, and translate error kinds to
// status codes. Internal faults always surface as a generic 500 — no store
// or provider detail crosses this boundary.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type googleReq struct {
	IDToken string `json:"id_token"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID     uint64 `json:"id"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Active: u.IsActive}
}

func toAuthResp(u model.User, pair service.TokenPair) authResp {
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.RefreshSecret, Expires: pair.RefreshExpires}, // raw secret back to client, exactly once
	}
}

// Register: create a password account. Tokens are not issued here; the
// client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Email) > maxEmailLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if n := utf8.RuneCountInString(req.Password); n < minPasswordLen || n > maxPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be 8-128 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserPart(u))
}

// Login: verify email+password and return a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Auth.PasswordLogin(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Google: exchange a verified Google ID token for a local session. All
// verification failures collapse to one 401 message; which check failed is
// kept internal.
func (h *AuthHandler) Google(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Auth.FederatedLogin(ctx, strings.TrimSpace(req.IDToken))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toAuthResp(u, pair))
	case errors.Is(err, service.ErrInactiveAccount):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive account"})
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrGoogleTokenInvalid),
		errors.Is(err, service.ErrGoogleClaimsMissing),
		errors.Is(err, service.ErrGoogleEmailUnverified):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "google sign-in failed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
}

// Refresh: rotate a refresh secret for a new token pair. A spent or unknown
// secret is indistinguishable on purpose; expired gets its own message so
// clients know re-authentication is required.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toAuthResp(u, pair))
	case errors.Is(err, service.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token expired"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
}

// Logout supports two modes: a refresh_token in the body ends that single
// session; a valid bearer access token with no body ends every session of
// that user. Neither present is a bad request.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if refreshToken != "" {
		err := h.Auth.Logout(ctx, refreshToken)
		switch {
		case err == nil:
			return c.NoContent(http.StatusNoContent)
		case errors.Is(err, service.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	}

	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		uid, err := utils.ParseAccessToken(h.Cfg.JWTSecret, h.Cfg.JWTAlg, raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		if err := h.Auth.LogoutAll(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me: return the account behind the verified access token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Auth.WhoAmI(ctx, uid)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toUserPart(u))
	case errors.Is(err, service.ErrInactiveAccount):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive account"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
}
