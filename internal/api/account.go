package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamp formatting

	"brokerage_system/internal/account" // Account manager

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// TopUpRequest carries a cash top-up form.
type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"` // Top-up amount, positive integer
}

// TopUpHandler credits cash to the authenticated user's balance
func TopUpHandler(accounts *account.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req TopUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		balance, err := accounts.TopUp(c.Request.Context(), userID, req.Amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"amount":  req.Amount,
				"error":   err.Error(),
			}).Error("Top up failed")
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"amount":    req.Amount,
			"type":      "top_up",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Top up transaction")
		invalidateUserCaches(rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Top up successful", "cash": balance})
	}
}
