package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListTables handles GET /api/tables, returning every table with its
// active (non-paid) orders.
func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.store.ListTables(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

type createTableRequest struct {
	Number int `json:"number" binding:"required"`
}

// CreateTable handles POST /api/tables.
func (h *Handler) CreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "number is required"})
		return
	}

	table, err := h.store.CreateTable(c.Request.Context(), req.Number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// GetTableTotal handles GET /api/tables/:id/total. The bill can only be
// produced once everything ordered at the table has been delivered.
func (h *Handler) GetTableTotal(c *gin.Context) {
	tableID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid table id"})
		return
	}

	total, err := h.store.CalculateTableTotal(c.Request.Context(), tableID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}
