package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wheelhaus/bikeshop-service/internal/adapter/gemini"
	"github.com/wheelhaus/bikeshop-service/internal/adapter/handler/http"
	"github.com/wheelhaus/bikeshop-service/internal/adapter/logger"
	"github.com/wheelhaus/bikeshop-service/internal/adapter/postgres"
	"github.com/wheelhaus/bikeshop-service/internal/adapter/prometheus"
	"github.com/wheelhaus/bikeshop-service/internal/adapter/redis"
	"github.com/wheelhaus/bikeshop-service/internal/config"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
	"github.com/wheelhaus/bikeshop-service/internal/core/services"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	DB           *sql.DB
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	Extractor    *gemini.Extractor
	HTTPRouter   *http.Router
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	// Set redis
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrate DB
	if err := goose.Up(db, "./internal/adapter/postgres/migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Repositories
	bikeRepo := postgres.NewBikeRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	jobRepo := postgres.NewJobRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Tokens
	tokenDuration := cfg.Token.TokenDuration()
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, tokenDuration, loggerAdapter)

	// Services
	bikeService := services.NewBikeService(bikeRepo, loggerAdapter, validate, cacheAdapter)
	clientService := services.NewClientService(clientRepo, loggerAdapter, validate)
	jobService := services.NewJobService(jobRepo, loggerAdapter, validate)
	purchaseService := services.NewPurchaseService(purchaseRepo, bikeRepo, userRepo, loggerAdapter, validate, cacheAdapter)
	userService := services.NewUserService(userRepo, tokenService, loggerAdapter, validate, cacheAdapter, tokenDuration)

	// Job sheet extractor. The service runs without it; scanning just
	// reports itself unconfigured.
	var extractor *gemini.Extractor
	var sheetExtractor ports.SheetExtractor
	if cfg.Gemini.APIKey != "" {
		extractor, err = gemini.NewExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, loggerAdapter)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sheet extractor: %w", err)
		}
		sheetExtractor = extractor
	} else {
		loggerAdapter.Warn("GEMINI_API_KEY not set, job sheet scanning disabled", nil)
	}

	// HTTP Handlers
	authHandler := http.NewAuthHandler(userService, loggerAdapter, metrics)
	userHandler := http.NewUserHandler(userService, loggerAdapter, metrics)
	bikeHandler := http.NewBikeHandler(bikeService, loggerAdapter, metrics)
	clientHandler := http.NewClientHandler(clientService, loggerAdapter, metrics)
	jobHandler := http.NewJobHandler(jobService, sheetExtractor, loggerAdapter, metrics)
	purchaseHandler := http.NewPurchaseHandler(purchaseService, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		tokenService,
		userService,
		authHandler,
		userHandler,
		bikeHandler,
		clientHandler,
		jobHandler,
		purchaseHandler,
	)
	if err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       loggerAdapter,
		DB:           db,
		RedisClient:  redisConn,
		RedisAdapter: cacheAdapter,
		Extractor:    extractor,
		HTTPRouter:   router,
	}, nil
}

// Runs all services
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	if a.Extractor != nil {
		a.Extractor.Close()
	}

	// Close database
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
