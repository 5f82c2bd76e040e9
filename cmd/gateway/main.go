package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tutorgate/internal/config"
	"tutorgate/internal/db"
	gatewayhttp "tutorgate/internal/http"
	"tutorgate/internal/query"
	"tutorgate/internal/repository"
	"tutorgate/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.UsingDefaultSecret() {
		logger.Warn("running with the development auth secret; set AUTH_SECRET in production")
	}

	var users repository.UserRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		users = repository.NewPgUserRepository(pool)
	} else {
		logger.Warn("no DATABASE_URL configured, using in-memory identity store")
		users = repository.NewMemoryUserRepository()
	}

	var sessionStore service.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory session store", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
		}
		cancel()
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessionSvc := service.NewSessionService(cfg.AuthSecret, sessionTTL, sessionStore)
	userSvc := service.NewUserService(logger, users)

	// Sondeo informativo del upstream; el proxy reenvia igual y deja que el
	// cliente degrade si el QueryService sigue caido.
	queryClient := query.NewClient(cfg.QueryBaseURL, cfg.QueryAskPath, cfg.QueryHealthPath, nil)
	ctxHealth, cancelHealth := context.WithTimeout(ctx, 2*time.Second)
	if !queryClient.Healthy(ctxHealth) {
		logger.Warn("query service health check failed at startup",
			zap.String("base_url", cfg.QueryBaseURL))
	}
	cancelHealth()

	authHandler := gatewayhttp.NewAuthHandler(logger, userSvc, sessionSvc)
	proxy := gatewayhttp.NewProxyRouter(logger, []gatewayhttp.Route{
		{Prefix: cfg.ProxyPrefix, Target: cfg.QueryBaseURL, Rewrite: cfg.QueryAskPath},
	}, sessionSvc, cfg.ProxyRequireAuth)
	limiter := gatewayhttp.NewRateLimiter(cfg.AuthRatePerMin, cfg.AuthRateBurst)
	router := gatewayhttp.NewRouter(logger, authHandler, proxy, limiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting gateway", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
