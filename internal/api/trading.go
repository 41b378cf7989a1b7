package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key formatting
	"time"     // Timestamp formatting

	"brokerage_system/internal/trading" // Trading engine
	"brokerage_system/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// invalidateUserCaches drops the cached portfolio and history views
// after any mutation for a user.
func invalidateUserCaches(rdb *redis.Client, userID uint) {
	if rdb == nil {
		return
	}
	ctx := context.Background()
	id := strconv.Itoa(int(userID))
	_ = utils.DeleteCache(ctx, rdb, "portfolio:user:"+id)
	_ = utils.DeleteCache(ctx, rdb, "history:user:"+id)
}

// QuoteHandler returns the current quote for a symbol
func QuoteHandler(engine *trading.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			return
		}
		symbol := c.Query("symbol")
		if symbol == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "must provide symbol"})
			return
		}
		q, err := engine.Quote(c.Request.Context(), symbol)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quote": q})
	}
}

// BuyHandler executes a purchase for the authenticated user
func BuyHandler(engine *trading.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req trading.BuyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		exec, err := engine.Buy(c.Request.Context(), userID, req)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"symbol":  req.Symbol,
				"shares":  req.Shares,
				"error":   err.Error(),
			}).Warn("Buy rejected")
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"symbol":    exec.Symbol,
			"shares":    exec.Shares,
			"price":     exec.Price.String(),
			"total":     exec.Total.String(),
			"type":      "buy",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Buy executed")
		invalidateUserCaches(rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Purchase successful", "trade": exec})
	}
}

// SellHandler executes a sale for the authenticated user
func SellHandler(engine *trading.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req trading.SellRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		exec, err := engine.Sell(c.Request.Context(), userID, req)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"symbol":  req.Symbol,
				"shares":  req.Shares,
				"error":   err.Error(),
			}).Warn("Sell rejected")
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"symbol":    exec.Symbol,
			"shares":    exec.Shares,
			"price":     exec.Price.String(),
			"total":     exec.Total.String(),
			"type":      "sell",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Sell executed")
		invalidateUserCaches(rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Sale successful", "trade": exec})
	}
}
