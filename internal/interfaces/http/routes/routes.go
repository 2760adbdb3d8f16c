// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/cart"
	"github.com/your-org/saree-store/internal/domain/checkout"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/domain/user"
	redisdb "github.com/your-org/saree-store/internal/infrastructure/database/redis"
	"github.com/your-org/saree-store/internal/interfaces/http/handlers"
	"github.com/your-org/saree-store/internal/interfaces/http/middleware"
	"github.com/your-org/saree-store/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Dependencies are the shared resources the routes are built from
type Dependencies struct {
	DB     *gorm.DB
	Redis  *redisdb.Client
	Config *config.Config
	Logger *logrus.Logger

	// Notifier receives order events; nil disables customer emails
	Notifier order.Notifier
}

// SetupRoutes builds the services and registers every API route on api
func SetupRoutes(api *gin.RouterGroup, deps Dependencies) {
	cfg, logger := deps.Config, deps.Logger

	productService := product.NewService(deps.DB, logger)
	categoryService := product.NewCategoryService(deps.DB, logger)
	importService := product.NewImportService(deps.DB, logger)
	inventoryService := inventory.NewService(deps.DB)
	userService := user.NewService(deps.DB, cfg, logger)
	orderService := order.NewService(deps.DB, logger, deps.Notifier)
	cartService := cart.NewService(productService, cart.NewRedisStore(deps.Redis.GetClient(), cfg.Session.CartTTL), logger)
	checkoutService := checkout.NewService(deps.DB, cartService, orderService, logger)

	productHandler := handlers.NewProductHandler(productService, importService, deps.Redis)
	categoryHandler := handlers.NewCategoryHandler(categoryService, deps.Redis)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	invoiceHandler := handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg))
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	authHandler := handlers.NewAuthHandler(userService)

	jwtManager := userService.JWTManager()
	requireAuth := middleware.AuthMiddleware(jwtManager)

	// Catalog
	api.GET("/products", productHandler.GetProducts)
	api.GET("/products/:slug", productHandler.GetProductBySlug)
	api.GET("/categories", categoryHandler.GetCategories)
	api.GET("/categories/:slug", categoryHandler.GetCategoryBySlug)

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.GET("/me", requireAuth, authHandler.GetProfile)
	}

	// Cart and checkout work for guests; a signed-in shopper's order is
	// linked to their account.
	shop := api.Group("")
	shop.Use(middleware.Session(cfg.Session), middleware.OptionalAuthMiddleware(jwtManager))
	{
		shop.GET("/cart", cartHandler.GetCart)
		shop.POST("/cart/items", cartHandler.AddToCart)
		shop.PATCH("/cart/items/:variant_id", cartHandler.AdjustCartItem)
		shop.DELETE("/cart/items/:variant_id", cartHandler.RemoveFromCart)
		shop.DELETE("/cart", cartHandler.ClearCart)

		shop.GET("/checkout", checkoutHandler.GetCheckout)
		shop.POST("/checkout", checkoutHandler.PlaceOrder)
	}

	api.POST("/orders/track", orderHandler.TrackOrder)

	orders := api.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("", orderHandler.GetUserOrders)
		orders.GET("/:id", orderHandler.GetUserOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/receipt", invoiceHandler.GetReceipt)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.AdminMiddleware())
	{
		admin.GET("/orders", orderHandler.ListOrders)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.POST("/orders/status", orderHandler.UpdateStatus)
		admin.PATCH("/orders/:id/payment", orderHandler.UpdatePayment)
		admin.GET("/orders/:id/invoice", invoiceHandler.GetInvoice)

		admin.GET("/variants/:id/movements", inventoryHandler.GetVariantMovements)
		admin.DELETE("/variants/:id", productHandler.DeleteVariant)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/catalog/import", productHandler.ImportCatalog)
	}
}
