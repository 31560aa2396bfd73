package router

import (
	"time"

	"github.com/IagoMorais/sistema-venda/internal/config"
	"github.com/IagoMorais/sistema-venda/internal/handler"
	"github.com/IagoMorais/sistema-venda/internal/middleware"
	"github.com/IagoMorais/sistema-venda/internal/model"
	"github.com/IagoMorais/sistema-venda/internal/repository"
	"github.com/IagoMorais/sistema-venda/internal/service"
	"github.com/IagoMorais/sistema-venda/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.Metrics())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	orderSvc := service.NewOrderService(orderRepo, productRepo, dispatcher, cfg.CheckoutToleranceCents)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Orders — waiters open them, cashiers settle them
		v1.POST("/orders", middleware.RequireRole(model.RoleWaiter, model.RoleAdmin), ordersH.Create)
		v1.GET("/orders", ordersH.List)
		v1.GET("/orders/open", middleware.RequireRole(model.RoleCashier, model.RoleAdmin), ordersH.ListOpen)
		v1.GET("/orders/:id", ordersH.GetByID)
		v1.POST("/orders/:id/checkout", middleware.RequireRole(model.RoleCashier, model.RoleAdmin), ordersH.Checkout)
		v1.PATCH("/orders/:id/cancel", middleware.RequireRole(model.RoleAdmin), ordersH.Cancel)

		// Item preparation flow
		v1.PATCH("/order-items/:id/status",
			middleware.RequireRole(model.RoleKitchen, model.RoleBar, model.RoleWaiter, model.RoleAdmin),
			ordersH.UpdateItemStatus)
		v1.GET("/station/queue", middleware.RequireRole(model.RoleKitchen, model.RoleBar), ordersH.StationQueue)

		// Products — any authenticated role can read the catalog
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.GetByID)
		v1.GET("/low-stock", productsH.LowStock)
		prods := v1.Group("/products", middleware.RequireRole(model.RoleAdmin))
		{
			prods.POST("", productsH.Create)
			prods.PATCH("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.POST("/bulk-import", productsH.BulkImport)
		}

		v1.GET("/stats", ordersH.SalesStats)

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.GET("", usersH.List)
			users.POST("", usersH.Create)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
