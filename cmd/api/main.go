package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"taskflow/internal/config"
	"taskflow/internal/db"
	apihttp "taskflow/internal/http"
	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	// Falla aquí si faltan JWT_SECRET o DATABASE_URL: nunca se sirve
	// tráfico con un secreto ausente o por defecto.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	jwtSvc, err := service.NewJWTService(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("jwt init", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)

	// El limitador de login es opt-in: sin REDIS_ADDR no hay throttling,
	// igual que el flujo de login original.
	var loginLimiter service.LoginRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
			loginLimiter = service.NewLoginRateLimiter(10*time.Minute, 10)
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 10)
		}
		cancel()
	}

	userSvc := service.NewUserService(logger, userRepo, loginLimiter)
	taskSvc := service.NewTaskService(logger, taskRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	taskHandler := apihttp.NewTaskHandler(logger, taskSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, taskHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
