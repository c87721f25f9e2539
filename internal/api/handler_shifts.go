package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comanda-backend/internal/mw"
)

// ListShifts handles GET /api/shifts.
func (h *Handler) ListShifts(c *gin.Context) {
	shifts, err := h.store.ListShifts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// OpenShift handles POST /api/shifts/open. The opener is the
// authenticated manager.
func (h *Handler) OpenShift(c *gin.Context) {
	principal, ok := mw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}

	shift, err := h.store.OpenShift(c.Request.Context(), principal.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// CloseShift handles POST /api/shifts/:id/close.
func (h *Handler) CloseShift(c *gin.Context) {
	shiftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid shift id"})
		return
	}

	shift, err := h.store.CloseShift(c.Request.Context(), shiftID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}
