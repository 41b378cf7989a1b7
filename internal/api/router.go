package api

import (
	"time"

	"brokerage_system/internal/account"
	"brokerage_system/internal/middleware"
	"brokerage_system/internal/portfolio"
	"brokerage_system/internal/storage"
	"brokerage_system/internal/trading"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps bundles everything the HTTP surface needs. The redis client may
// be nil, which disables response caching (used by tests).
type Deps struct {
	Store     storage.Store
	Engine    *trading.Engine
	Valuator  *portfolio.Valuator
	Accounts  *account.Manager
	Redis     *redis.Client
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter wires all routes onto a gin engine.
func NewRouter(r *gin.Engine, d Deps) *gin.Engine {
	// Auth routes
	r.POST("/user", RegisterHandler(d.Accounts))                       // Registration endpoint
	r.GET("/user", LoginHandler(d.Accounts, d.JWTSecret, d.TokenTTL))  // Login endpoint

	// Brokerage routes (protected by JWT)
	broker := r.Group("/broker")
	broker.Use(middleware.JWTAuthMiddleware(d.JWTSecret))
	broker.GET("/quote", QuoteHandler(d.Engine))                       // Quote lookup endpoint
	broker.POST("/buy", BuyHandler(d.Engine, d.Redis))                 // Buy endpoint
	broker.POST("/sell", SellHandler(d.Engine, d.Redis))               // Sell endpoint
	broker.POST("/add", TopUpHandler(d.Accounts, d.Redis))             // Cash top-up endpoint
	broker.POST("/change", ChangePasswordHandler(d.Accounts))          // Change password endpoint
	broker.GET("/portfolio", PortfolioHandler(d.Valuator, d.Redis))    // Portfolio view endpoint
	broker.GET("/history", HistoryHandler(d.Store, d.Redis))           // Transaction history endpoint

	// Admin routes (protected, admin only)
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.AdminOnlyMiddleware(d.Store))
	admin.GET("/users", ListUsersHandler(d.Store, d.Redis))            // List users endpoint
	admin.GET("/trades", ListTradesHandler(d.Store, d.Redis))          // List ledger entries endpoint

	return r
}
