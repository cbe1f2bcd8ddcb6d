package httptransport

import (
	"log/slog"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/transport/http/handler"
	"github.com/bgskoro21/ecommerce-be/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// tokenVerifier is what the auth middleware needs from the token service.
type tokenVerifier interface {
	VerifyAccess(raw string) (domain.TokenClaims, error)
}

func NewRouter(
	logger *slog.Logger,
	tokens tokenVerifier,
	authHandler *handler.AuthHandler,
	storeHandler *handler.StoreHandler,
	productHandler *handler.ProductHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(tokens)
	ownerOnly := middleware.RequireRole(domain.RoleStoreOwner)

	api := r.Group("/api")

	// Public auth routes
	users := api.Group("/users")
	users.POST("", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/google", authHandler.GoogleLogin)
	users.POST("/refresh", authHandler.Refresh)
	users.DELETE("/logout", authHandler.Logout)
	users.GET("/verify", authHandler.Verify)
	users.POST("/forgot", authHandler.Forgot)
	users.POST("/reset", authHandler.Reset)
	users.GET("/me", authMW, authHandler.Me)

	// Store-owner routes
	stores := api.Group("/stores", authMW, ownerOnly)
	stores.GET("/current", storeHandler.GetCurrent)
	stores.PATCH("/current", storeHandler.UpdateCurrent)

	products := api.Group("/products", authMW, ownerOnly)
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.GetByID)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)
	products.DELETE("/:id/variants/:variantId", productHandler.DeleteVariant)

	return r
}
