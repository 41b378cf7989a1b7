package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Cache key formatting
	"time"     // Cache TTL

	"brokerage_system/internal/domain"    // Domain models
	"brokerage_system/internal/portfolio" // Portfolio valuator
	"brokerage_system/internal/storage"   // Store interface
	"brokerage_system/internal/utils"     // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// viewCacheTTL bounds how stale a cached portfolio or history view can be.
const viewCacheTTL = 60 * time.Second

// PortfolioHandler returns the current-value portfolio view for the
// authenticated user: one line per held symbol plus cash and grand total.
func PortfolioHandler(valuator *portfolio.Valuator, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := "portfolio:user:" + strconv.Itoa(int(userID))
		// Reads may lag a concurrent write by the cache TTL, but never
		// observe a half-applied trade.
		if rdb != nil {
			var cached portfolio.View
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"portfolio": cached, "cached": true})
				return
			}
		}
		view, err := valuator.View(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, view, viewCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"portfolio": view, "cached": false})
	}
}

// historyResponse bundles the full trade and cash-event audit trail.
type historyResponse struct {
	Trades     []domain.LedgerEntry `json:"trades"`      // Oldest first
	CashEvents []domain.CashEvent   `json:"cash_events"` // Oldest first
}

// HistoryHandler returns the authenticated user's full transaction
// history, oldest first.
func HistoryHandler(store storage.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := "history:user:" + strconv.Itoa(int(userID))
		if rdb != nil {
			var cached historyResponse
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"history": cached, "cached": true})
				return
			}
		}
		trades, err := store.History(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		events, err := store.CashHistory(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		resp := historyResponse{Trades: trades, CashEvents: events}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, viewCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"history": resp, "cached": false})
	}
}
