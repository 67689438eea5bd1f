package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// SiweLogin verifies a signed SIWE message and exchanges it for a backend
// session.
func (h *AuthHandlers) SiweLogin(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Address   string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	proof := core.AuthProof{
		Message:   req.Message,
		Signature: req.Signature,
		Address:   req.Address,
	}

	session, user, err := h.authService.Login(c.Request.Context(), proof)
	if err != nil {
		status, msg := loginError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
		"user":    user,
	})
}

// loginError maps a pipeline failure to a status code and a message that
// names the specific reason without echoing internals.
func loginError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidAddress):
		return http.StatusBadRequest, "Invalid Ethereum address format"
	case errors.Is(err, core.ErrMalformedMessage):
		return http.StatusBadRequest, "Invalid SIWE message format"
	case errors.Is(err, core.ErrAddressMismatch):
		return http.StatusBadRequest, "Address mismatch"
	case errors.Is(err, core.ErrChallengeExpired):
		return http.StatusBadRequest, "Message expired"
	case errors.Is(err, core.ErrDomainMismatch):
		return http.StatusBadRequest, "Domain mismatch"
	case errors.Is(err, core.ErrNonceConsumed):
		return http.StatusBadRequest, "Nonce already used"
	case errors.Is(err, core.ErrBadSignature):
		return http.StatusUnauthorized, "Invalid signature"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Refresh handles token refresh.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		case errors.Is(err, core.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		case errors.Is(err, core.ErrTokenInvalidated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token has been invalidated"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// Logout handles session logout.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, core.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns information about the authenticated wallet.
func (h *AuthHandlers) Me(c *gin.Context) {
	identityID := c.GetString("identityID")
	address := c.GetString("walletAddress")
	if identityID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, core.User{ID: identityID, WalletAddress: address})
}

// Health reports service liveness.
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
