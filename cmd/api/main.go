package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/server"
	"github.com/platefeed/backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("failed to load configuration", "error", err)
	}

	db, err := database.Connect(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		sugar.Fatalw("failed to migrate database", "error", err)
	}

	// Redis backs the short-link cache and the mutation rate limiter;
	// both degrade gracefully, so a missing Redis is not fatal.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		sugar.Warnw("redis unavailable, continuing without cache and rate limiting", "error", err)
		redisClient = nil
	}

	var store service.ImageStore
	switch cfg.Storage {
	case "s3":
		s3Cfg, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			sugar.Fatalw("failed to initialize S3", "error", err)
		}
		store = service.NewS3Store(s3Cfg)
	default:
		store = service.NewLocalStore(cfg.MediaDir, cfg.BaseURL)
	}

	images := service.NewImageService(store)
	auth := service.NewAuthService(db, cfg.JWTSecret, sugar)
	recipes := service.NewRecipeService(db, images, sugar)
	favorites := service.NewFavoriteService(db)
	cart := service.NewCartService(db)
	subs := service.NewSubscriptionService(db)
	shoppingList := service.NewShoppingListService(db)
	shortLinks := service.NewShortLinkService(db, redisClient, cfg.BaseURL)
	ingredients := service.NewIngredientService(db)
	users := service.NewUserService(db, images)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRecipeMutationRateLimiter(redisClient)
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:       api.NewAuthHandler(auth, db),
		Users:      api.NewUserHandler(users, subs, auth, db),
		Ingredient: api.NewIngredientHandler(ingredients),
		Recipes:    api.NewRecipeHandler(recipes, favorites, cart, shoppingList, shortLinks, auth, rateLimiter, db),
		ShortLinks: api.NewShortLinkHandler(shortLinks),
		MediaDir:   cfg.MediaDir,
	}, sugar)

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort, sugar)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			sugar.Fatalw("server error", "error", err)
		}
	case sig := <-quit:
		sugar.Infow("received signal", "signal", sig)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		sugar.Fatalw("server shutdown error", "error", err)
	}
	sugar.Info("server stopped")
}
