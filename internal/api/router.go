package api

import (
	"golang.org/x/time/rate"

	"github.com/gin-gonic/gin"

	"rota-backend/config"
	"rota-backend/internal/mw"
	"rota-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, rc *mw.ResponseCache, notifier Notifier, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, rc, notifier, cfg.Push.PublicKey)

	rateLimiter := mw.RateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)
	caching := rc.Middleware()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/auth", handler.GetAuth)

		api.GET("/rota", caching, handler.GetRota)
		api.GET("/rotaPreview", caching, handler.GetRotaPreview)
		api.POST("/updateRota", handler.UpdateRota)
		api.POST("/addRotaMulti", handler.AddRotaMulti)
		api.POST("/removeRotaMulti", handler.RemoveRotaMulti)

		api.GET("/users", caching, handler.GetUsers)
		api.POST("/updateUser", handler.UpdateUser)
		api.POST("/removeUser", handler.RemoveUser)

		api.POST("/stats", handler.GetStats)
		api.GET("/stats/grid", caching, handler.GetStatsGrid)
		api.GET("/userDuties", handler.GetUserDuties)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
