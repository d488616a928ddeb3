package server

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/config"
	"github.com/alimrdn/solarportal/internal/cache"
	"github.com/alimrdn/solarportal/internal/gateway"
	"github.com/alimrdn/solarportal/internal/handlers"
	"github.com/alimrdn/solarportal/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	zpCfg, err := config.LoadZarinpalConfig()
	if err != nil {
		return fmt.Errorf("failed to load gateway config: %v", err)
	}
	gatewayClient := gateway.NewClient(zpCfg.MerchantID, zpCfg.BaseURL)

	cache.Connect(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	setupRoutes(r, db, gatewayClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, gatewayClient *gateway.Client) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.GatewayMiddleware(gatewayClient))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		public.GET("/posts", handlers.ListPosts)
		public.GET("/posts/:id", handlers.GetPost)
		public.GET("/posts/:id/comments", handlers.ListComments)

		public.GET("/packages", handlers.ListPackages)
		public.POST("/calculate", handlers.CalculatePrice)
		public.POST("/contact", handlers.ContactForm)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)
		protected.PUT("/profile", handlers.UpdateProfile)

		protected.POST("/posts/:id/comments", handlers.CreateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)

		protected.POST("/payments/request", handlers.RequestPayment)
		protected.POST("/payments/verify", handlers.VerifyPayment)
		protected.GET("/payments", handlers.ListPayments)
		protected.GET("/payments/:id/receipt", handlers.PaymentReceiptQR)

		protected.GET("/purchases", handlers.ListPurchases)
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/posts", handlers.AdminListPosts)
		admin.POST("/posts", handlers.CreatePost)
		admin.PUT("/posts/:id", handlers.UpdatePost)
		admin.DELETE("/posts/:id", handlers.DeletePost)

		admin.GET("/comments", handlers.AdminListComments)

		admin.POST("/packages", handlers.CreatePackage)
		admin.PUT("/packages/:id", handlers.UpdatePackage)
		admin.DELETE("/packages/:id", handlers.DeletePackage)

		admin.GET("/purchases", handlers.AdminListPurchases)
		admin.POST("/purchases", handlers.CreatePurchase)

		admin.GET("/payments", handlers.AdminListPayments)

		admin.GET("/users", handlers.ListUsers)
		admin.PUT("/users/:id/role", handlers.UpdateUserRole)

		admin.POST("/uploads", handlers.UploadImage)
	}
}
