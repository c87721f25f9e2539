package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comanda-backend/internal/model"
	"comanda-backend/internal/mw"
	"comanda-backend/internal/store"
)

type createOrderRequest struct {
	TableID int64                  `json:"tableId" binding:"required"`
	Lines   []store.OrderLineInput `json:"lines" binding:"required"`
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": err.Error()})
		return
	}

	order, err := h.store.CreateOrder(c.Request.Context(), req.TableID, req.Lines)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders. Kitchen staff receive only orders
// containing kitchen-station items.
func (h *Handler) ListOrders(c *gin.Context) {
	principal, _ := mw.PrincipalFrom(c)

	orders, err := h.store.ListActiveOrders(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /api/orders/:id, used to advance the
// order status and to mark an order paid.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid order id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "status is required"})
		return
	}

	order, err := h.store.UpdateOrderStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderLineStatus handles PATCH /api/order-lines/:id. The kitchen
// marks lines preparing/ready; waitstaff mark them delivered.
func (h *Handler) UpdateOrderLineStatus(c *gin.Context) {
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "invalid order line id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": "status is required"})
		return
	}

	line, err := h.store.UpdateOrderLineStatus(c.Request.Context(), lineID, model.OrderLineStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}
