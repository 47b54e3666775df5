package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/config"
	"github.com/example/tillpoint/internal/handlers"
	"github.com/example/tillpoint/internal/middleware"
	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/services"
)

// Register mounts every API route group on the app.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	customerHandler := handlers.NewCustomerHandler(db)
	orderHandler := handlers.NewOrderHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db)
	reportHandler := handlers.NewReportHandler(db)
	storage, err := services.NewDiskStorage(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("failed to initialize upload storage: %v", err)
	}
	uploadHandler := handlers.NewUploadHandler(storage)

	api := app.Group("/api")
	authRequired := middleware.AuthMiddleware(cfg, db)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authRequired, authHandler.Me)
	auth.Post("/verify-passcode", authRequired, authHandler.VerifyPasscode)

	users := api.Group("/users", authRequired, middleware.RequirePermission(models.ActionManageUsers))
	users.Get("/", userHandler.ListUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Patch("/:id/deactivate", userHandler.DeactivateUser)

	categories := api.Group("/categories", authRequired)
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/parents", catalogHandler.ListParentCategories)
	categories.Get("/:parentId/subcategories", catalogHandler.ListSubcategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Put("/:id", catalogHandler.UpdateCategory)
	categories.Delete("/:id", catalogHandler.DeleteCategory)

	products := api.Group("/products", authRequired)
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", productHandler.CreateProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	modifications := api.Group("/modifications", authRequired)
	modifications.Get("/", catalogHandler.ListModifications)
	modifications.Get("/:id", catalogHandler.GetModification)
	modifications.Post("/", catalogHandler.CreateModification)
	modifications.Put("/:id", catalogHandler.UpdateModification)
	modifications.Delete("/:id", catalogHandler.DeleteModification)

	branches := api.Group("/branches", authRequired)
	branches.Get("/", catalogHandler.ListBranches)
	branches.Post("/", catalogHandler.CreateBranch)

	customers := api.Group("/customers", authRequired)
	customers.Post("/find-or-create", customerHandler.FindOrCreate)
	customers.Get("/:mobile", customerHandler.GetByMobile)

	orders := api.Group("/orders", authRequired, middleware.RequirePermission(models.ActionManageOrders))
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Put("/item/:itemId/status", orderHandler.UpdateOrderItemStatus)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/status", orderHandler.UpdateOrderStatus)
	orders.Put("/:id", orderHandler.UpdateOrder)

	payments := api.Group("/payments", authRequired, middleware.RequirePermission(models.ActionRecordPayments))
	payments.Post("/", paymentHandler.CreatePayment)
	payments.Put("/:id/status", paymentHandler.UpdatePaymentStatus)
	payments.Get("/order/:orderId", paymentHandler.GetPaymentsByOrder)

	reports := api.Group("/reports", authRequired, middleware.RequirePermission(models.ActionViewReports))
	reports.Get("/sales", reportHandler.GetSalesReport)

	upload := api.Group("/upload", authRequired)
	upload.Post("/image", uploadHandler.UploadImage)
}
