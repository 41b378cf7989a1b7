package main

import (
	"context" // Redis connection check
	"log"     // Startup logging

	"brokerage_system/internal/account"       // Account manager
	"brokerage_system/internal/api"           // API handlers and routing
	"brokerage_system/internal/config"        // Configuration
	"brokerage_system/internal/portfolio"     // Portfolio valuator
	"brokerage_system/internal/quote"         // Price oracle client
	"brokerage_system/internal/storage/mysql" // MySQL store
	"brokerage_system/internal/trading"       // Trading engine

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	store, err := mysql.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Price oracle: HTTP client with a bounded timeout, behind a redis
	// read-through cache
	oracle := quote.NewCached(
		quote.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIToken, cfg.QuoteTimeout),
		redisClient,
		cfg.QuoteCacheTTL,
	)

	// Core components over the shared store
	engine := trading.NewEngine(store, oracle)
	valuator := portfolio.NewValuator(store, oracle)
	accounts := account.NewManager(store)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.NewRouter(r, api.Deps{
		Store:     store,
		Engine:    engine,
		Valuator:  valuator,
		Accounts:  accounts,
		Redis:     redisClient,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	})

	log.Println("Server running on " + cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
