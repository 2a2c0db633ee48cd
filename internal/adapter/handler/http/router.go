package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wheelhaus/bikeshop-service/internal/config"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	revocations RevocationChecker,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	bikeHandler *BikeHandler,
	clientHandler *ClientHandler,
	jobHandler *JobHandler,
	purchaseHandler *PurchaseHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := AuthMiddleware(tokenService, revocations)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/password-reset", authHandler.RequestPasswordReset)
		auth.POST("/logout", authRequired, authHandler.Logout)
	}

	// Users routes
	users := router.Group("/users")
	users.Use(authRequired)
	{
		users.GET("/me", userHandler.GetMe)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.PUT("/:id/role", userHandler.SetUserRole)
	}

	// Bikes routes
	bikes := router.Group("/bikes")
	bikes.Use(authRequired)
	{
		bikes.POST("", bikeHandler.CreateBike)
		bikes.GET("", bikeHandler.GetAvailableBikes)
		bikes.GET("/my", bikeHandler.GetMyBikes)
		bikes.GET("/:id", bikeHandler.GetBike)
		bikes.PUT("/:id", bikeHandler.UpdateBike)
		bikes.PUT("/:id/status", bikeHandler.ChangeBikeStatus)
		bikes.DELETE("/:id", bikeHandler.DeleteBike)
	}

	// Clients routes
	clients := router.Group("/clients")
	clients.Use(authRequired)
	{
		clients.POST("", clientHandler.CreateClient)
		clients.GET("", clientHandler.ListClients)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PUT("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)
	}

	// Jobs routes
	jobs := router.Group("/jobs")
	jobs.Use(authRequired)
	{
		jobs.POST("", jobHandler.CreateJob)
		jobs.POST("/scan", jobHandler.ScanJobSheet)
		jobs.GET("", jobHandler.ListJobs)
		jobs.GET("/:id", jobHandler.GetJob)
		jobs.PUT("/:id", jobHandler.UpdateJob)
		jobs.PUT("/:id/status", jobHandler.ChangeJobStatus)
		jobs.DELETE("/:id", jobHandler.DeleteJob)
	}

	// Purchases routes
	purchases := router.Group("/purchases")
	purchases.Use(authRequired)
	{
		purchases.POST("", purchaseHandler.PurchaseBike)
		purchases.GET("", purchaseHandler.ListPurchases)
		purchases.GET("/my", purchaseHandler.GetMyPurchases)
		purchases.GET("/:id", purchaseHandler.GetPurchase)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
