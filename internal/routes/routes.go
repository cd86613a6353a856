package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/config"
	"github.com/example/vinora/internal/handlers"
	"github.com/example/vinora/internal/middleware"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/storage"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.StoreName)
	tokenService := services.NewTokenService(storage.NewTokenStore(db))
	orderService := services.NewOrderService(storage.NewOrderStore(db), storage.NewNotificationStore(db))
	cartService := services.NewCartService(storage.NewCartStore(rdb))

	authHandler := handlers.NewAuthHandler(db, cfg, tokenService, mailer)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, tokenService, mailer)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db, cartService)
	orderHandler := handlers.NewOrderHandler(db, cfg, cartService, orderService)
	profileHandler := handlers.NewProfileHandler(db)
	marketingHandler := handlers.NewMarketingHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService, tokenService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-2fa", middleware.TwoFactorMiddleware(cfg), authHandler.Verify2FA)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Public catalog
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Public marketing
	api.Get("/sliders", marketingHandler.ListSliders)
	api.Get("/blog", marketingHandler.ListBlogPosts)
	api.Get("/blog/:slug", marketingHandler.GetBlogPost)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:productId", cartHandler.UpdateItem)
	cart.Delete("/items/:productId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)

	protected.Post("/orders", orderHandler.Checkout)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)
	protected.Get("/notifications", profileHandler.ListNotifications)
	protected.Put("/notifications/:id/read", profileHandler.MarkNotificationRead)

	// Admin back office
	admin := protected.Group("/admin", middleware.AdminOnly(db))
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/dashboard/recent-orders", adminHandler.RecentOrders)

	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/orders/:id", adminHandler.GetOrderDetail)
	admin.Patch("/orders/:id/status", adminHandler.UpdateOrderStatus)

	admin.Get("/users", adminHandler.ListAllUsers)
	admin.Patch("/users/:id", adminHandler.UpdateUser)

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)

	admin.Post("/sliders", marketingHandler.CreateSlider)
	admin.Put("/sliders/:id", marketingHandler.UpdateSlider)
	admin.Delete("/sliders/:id", marketingHandler.DeleteSlider)

	admin.Post("/blog", marketingHandler.CreateBlogPost)
	admin.Put("/blog/:id", marketingHandler.UpdateBlogPost)
	admin.Delete("/blog/:id", marketingHandler.DeleteBlogPost)

	admin.Post("/maintenance/cleanup-tokens", adminHandler.CleanupExpiredTokens)
}
