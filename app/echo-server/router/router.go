package router

import (
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler) {
	events := api.Group("/events")

	events.POST("", handler.IngestEvent)
	events.GET("", handler.RecentEvents)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	api.GET("/recommendations", handler.Recommend)
	api.GET("/trending", handler.Trending)
	api.GET("/products/:id/similar", handler.SimilarProducts)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, adminOnly)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, adminOnly echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)
	categories.POST("", handler.CreateCategory, adminOnly)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", adminOnly)

	admin.POST("/pipelines/trending", handler.RunTrending)
	admin.POST("/pipelines/similarity", handler.RunSimilarity)
	admin.GET("/freshness", handler.Freshness)
	admin.POST("/cache/flush", handler.FlushCache)
}
