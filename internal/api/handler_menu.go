package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"comanda-backend/internal/model"
)

// ListCategories handles GET /api/categories. Responses are served
// through the menu cache; see the route setup.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListMenuItems handles GET /api/menu.
func (h *Handler) ListMenuItems(c *gin.Context) {
	items, err := h.store.ListMenuItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type createMenuItemRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  int64           `json:"categoryId" binding:"required"`
	Available   *bool           `json:"available"`
}

// CreateMenuItem handles POST /api/menu.
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req createMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": err.Error()})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	item := &model.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Available:   available,
	}
	if err := h.store.CreateMenuItem(c.Request.Context(), item); err != nil {
		writeError(c, err)
		return
	}

	h.flushMenuCache()
	c.JSON(http.StatusCreated, item)
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
}

// UpdateMenuItem handles PATCH /api/menu/:id. Price changes never touch
// existing order lines, which keep their creation-time snapshot.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid menu item id"})
		return
	}
	var req updateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "no fields to update"})
		return
	}

	item, err := h.store.UpdateMenuItem(c.Request.Context(), itemID, updates)
	if err != nil {
		writeError(c, err)
		return
	}

	h.flushMenuCache()
	c.JSON(http.StatusOK, item)
}

// flushMenuCache invalidates cached menu/category responses after a
// menu mutation.
func (h *Handler) flushMenuCache() {
	if h.menuCache != nil {
		h.menuCache.Flush()
	}
}
