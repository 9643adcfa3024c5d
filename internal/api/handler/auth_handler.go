package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login signs a member in by 4-digit code.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "code must be exactly 4 digits")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Code, req.RememberMe)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			response.Error(c, http.StatusUnauthorized, 10101, "login code not recognized")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Refresh rotates the refresh token and issues a new pair.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "refresh_token is required")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Unauthorized(c, 10102, "refresh token invalid or revoked")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout revokes the session's tokens.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, exists := c.Get("claims")
	claims, ok := v.(*jwt.Claims)
	if !exists || !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return
	}

	var req dto.RefreshRequest
	_ = c.ShouldBindJSON(&req) // refresh token is optional on logout

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me returns the caller's directory entry.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	member, err := h.authSvc.Me(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMember) {
			response.NotFound(c, 10103, "member not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, member)
}

// ChangeCode changes the caller's own login code.
// PUT /api/v1/auth/code
func (h *AuthHandler) ChangeCode(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	var req dto.ChangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "codes must be exactly 4 digits")
		return
	}

	err := h.authSvc.ChangeCode(c.Request.Context(), memberID, req.OldCode, req.NewCode)
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrInvalidCode):
		response.BadRequest(c, 10104, "current code is wrong")
	case errors.Is(err, service.ErrCodeTaken):
		response.Conflict(c, 10105, "code already in use")
	default:
		response.InternalError(c)
	}
}
