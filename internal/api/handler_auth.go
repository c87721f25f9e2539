package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"comanda-backend/internal/auth"
	"comanda-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token. Staff who are
// neither managers nor superusers can only log in while a shift is
// open; managers bypass the gate so the first shift can be opened.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "username and password are required"})
		return
	}

	user, err := h.store.FindUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	isManager := user.Superuser
	for _, g := range user.Groups {
		if g.Name == auth.GroupManager {
			isManager = true
		}
	}
	if !isManager {
		open, err := h.store.HasOpenShift(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if !open {
			c.JSON(http.StatusForbidden, gin.H{
				"kind":  "permission_denied",
				"error": "no open shift; a manager must open one first",
			})
			return
		}
	}

	token, err := auth.IssueToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// CurrentUser returns the authenticated principal.
func (h *Handler) CurrentUser(c *gin.Context) {
	principal, ok := mw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	c.JSON(http.StatusOK, principal)
}
