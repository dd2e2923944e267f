package router // package router wires handlers and middleware onto the Echo instance

import (
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/lotty-marketplace/internal/config"
	"github.com/iliyamo/lotty-marketplace/internal/handler"
	"github.com/iliyamo/lotty-marketplace/internal/middleware"
	"github.com/iliyamo/lotty-marketplace/internal/model"
)

// Handlers is everything RegisterRoutes mounts.
type Handlers struct {
	Health       echo.HandlerFunc
	Auth         *handler.AuthHandler
	Listings     *handler.ListingHandler
	Feedback     *handler.FeedbackHandler
	Subscription *handler.SubscriptionHandler
	Chats        *handler.ChatHandler
	Offers       *handler.OfferHandler
	Admin        *handler.AdminHandler
}

// Deps carries the session lookups and the optional Redis client used by
// the shared middleware.
type Deps struct {
	Cfg      config.Config
	Sessions middleware.SessionValidator
	Users    middleware.UserLoader
	Redis    *redis.Client // nil disables cache and rate limiting
}

// RegisterRoutes mounts the health check, static uploads and the JSON API.
// Every /api request runs LoadSession first, so handlers on public routes
// still see the caller when a valid cookie is present.
func RegisterRoutes(e *echo.Echo, h Handlers, d Deps) {
	e.GET("/healthz", h.Health)
	e.Static("/uploads", d.Cfg.UploadDir)

	api := e.Group("/api")
	api.Use(middleware.LoadSession(d.Cfg.SessionSecret, d.Sessions, d.Users))
	api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	authed := middleware.RequireSession()
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/logout", h.Auth.Logout, authed)
	api.GET("/user", h.Auth.Me)

	api.GET("/listings", h.Listings.List, cached)
	api.GET("/listings/:id", h.Listings.Get)
	api.POST("/listings", h.Listings.Create, authed)
	api.PATCH("/listings/:id", h.Listings.Update, authed)
	// multipart overhead on top of the image itself
	api.POST("/listings/:id/images", h.Listings.UploadImage, authed,
		echomw.BodyLimit(bodyLimit(d.Cfg.UploadMaxBytes+64*1024)))

	api.GET("/listings/:id/comments", h.Feedback.Comments)
	api.POST("/listings/:id/comments", h.Feedback.AddComment, authed)
	api.POST("/listings/:id/ratings", h.Feedback.Rate, authed)

	api.GET("/subscription", h.Subscription.Current, authed)

	chats := api.Group("/chats", authed)
	chats.POST("", h.Chats.Create)
	chats.GET("", h.Chats.List)
	chats.GET("/:id/messages", h.Chats.Messages)
	chats.POST("/:id/messages", h.Chats.Send)
	chats.GET("/:id/ws", h.Chats.Stream)

	offers := api.Group("/offers", authed)
	offers.POST("", h.Offers.Create)
	offers.GET("", h.Offers.List)
	offers.POST("/:id/respond", h.Offers.Respond)

	admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/users", h.Admin.Users)
	admin.POST("/users/:id/plan", h.Admin.AssignPlan)
	admin.GET("/listings", h.Admin.Queue)
	admin.POST("/listings/:id/moderate", h.Admin.Moderate)
	admin.POST("/sweep", h.Admin.Sweep)
}

// bodyLimit renders n bytes in the "<n>K" form BodyLimit parses.
func bodyLimit(n int64) string {
	return strconv.FormatInt((n+1023)/1024, 10) + "K"
}
