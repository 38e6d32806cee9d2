package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/handler"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/metrics"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/middleware"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/repository"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/config"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/services"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// A dead store at startup is fatal: the service must not accept
	// traffic without it.
	mongoClient, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	log.Println("Connected to MongoDB successfully")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Authenticated with Redis successfully")

	db := mongoClient.Database(cfg.MongoDatabase)
	userRepo := repository.NewMongoUserRepository(db)
	requestRepo := repository.NewMongoRequestRepository(db)
	outboxRepo := repository.NewMongoOutboxRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to create user indexes: %v", err)
	}
	if err := requestRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to create request indexes: %v", err)
	}
	if err := outboxRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to create outbox indexes: %v", err)
	}

	identityService := services.NewIdentityService(cfg.JWKSURL, cfg.Audience, redisClient)
	accessService := services.NewAccessService(userRepo)
	userService := services.NewUserService(userRepo, requestRepo, accessService)
	requestService := services.NewRequestService(requestRepo, outboxRepo, accessService)

	m := metrics.New()
	authMiddleware := middleware.NewAuthMiddleware(identityService)

	userHandler := handler.NewUserHandler(userService, m)
	requestHandler := handler.NewRequestHandler(requestService, m)
	healthHandler := handler.NewHealthHandler(mongoClient, redisClient)

	router := handler.NewRouter(authMiddleware, userHandler, requestHandler, healthHandler, m, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
