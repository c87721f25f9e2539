package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"comanda-backend/internal/errs"
	"comanda-backend/internal/events"
	"comanda-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	hub       *events.Hub
	webpush   *webpush.Options
	jwtSecret string
	tokenTTL  time.Duration
	menuCache *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, hub *events.Hub, webpushOptions *webpush.Options, jwtSecret string, tokenTTL time.Duration, menuCache *cache.Cache) *Handler {
	return &Handler{
		store:     s,
		hub:       hub,
		webpush:   webpushOptions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		menuCache: menuCache,
	}
}

// writeError maps a store error onto the HTTP surface. Each category
// keeps a machine-distinguishable kind next to the human-readable
// message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "validation", "error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"kind": "not_found", "error": err.Error()})
	case errors.Is(err, errs.ErrPermissionDenied):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"kind": "permission_denied", "error": err.Error()})
	case errors.Is(err, errs.ErrPreconditionFailed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "precondition_failed", "error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
	}
}
