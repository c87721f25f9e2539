package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"comanda-backend/config"
	"comanda-backend/internal/auth"
	"comanda-backend/internal/events"
	"comanda-backend/internal/mw"
	"comanda-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, hub *events.Hub, webpushOptions *webpush.Options, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	menuCache := cache.New(cacheTTL, 2*cacheTTL)

	handler := NewHandler(s, hub, webpushOptions, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, menuCache)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	caching := mw.Cache(menuCache, cacheTTL)
	authenticated := mw.Authenticate(cfg.Auth.JWTSecret)

	waitstaff := mw.Require(auth.CapWaitstaff)
	kitchenOrWaitstaff := mw.Require(auth.CapKitchen, auth.CapWaitstaff)
	manager := mw.Require(auth.CapManager)

	api := r.Group("/api")
	api.Use(rateLimiter)

	// POST /api/token is the only route reachable without a session.
	api.POST("/token", handler.Login)

	authed := api.Group("")
	authed.Use(authenticated)
	{
		authed.GET("/users/me", handler.CurrentUser)

		// Menu reads are open to any authenticated principal and cached.
		authed.GET("/categories", caching, handler.ListCategories)
		authed.GET("/menu", caching, handler.ListMenuItems)
		authed.POST("/menu", waitstaff, handler.CreateMenuItem)
		authed.PATCH("/menu/:id", waitstaff, handler.UpdateMenuItem)

		authed.GET("/tables", kitchenOrWaitstaff, handler.ListTables)
		authed.POST("/tables", waitstaff, handler.CreateTable)
		authed.GET("/tables/:id/total", waitstaff, handler.GetTableTotal)

		authed.GET("/orders", kitchenOrWaitstaff, handler.ListOrders)
		authed.POST("/orders", waitstaff, handler.CreateOrder)
		authed.PATCH("/orders/:id", kitchenOrWaitstaff, handler.UpdateOrderStatus)
		authed.PATCH("/order-lines/:id", kitchenOrWaitstaff, handler.UpdateOrderLineStatus)

		authed.GET("/shifts", manager, handler.ListShifts)
		authed.POST("/shifts/open", manager, handler.OpenShift)
		authed.POST("/shifts/:id/close", manager, handler.CloseShift)

		authed.GET("/events/:channel", handler.StreamEvents)

		authed.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
		subs := authed.Group("/push-subscriptions", waitstaff)
		{
			subs.GET("", handler.GetSubscription)
			subs.PUT("", handler.PutSubscription)
			subs.DELETE("", handler.DeleteSubscription)
		}
	}

	return r
}
