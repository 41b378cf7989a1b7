package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Pagination parsing

	"brokerage_system/internal/domain"  // Domain models
	"brokerage_system/internal/storage" // Store interface
	"brokerage_system/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// pageParams parses page/page_size query params with the usual bounds.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

// ListUsersHandler returns all users with balances, paginated (admin only)
func ListUsersHandler(store storage.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pageParams(c)
		cacheKey := "admin:users:page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		if rdb != nil {
			var cached gin.H
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				cached["cached"] = true
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		total, err := store.CountUsers(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		users, err := store.ListUsers(ctx, (page-1)*pageSize, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		if users == nil {
			users = []domain.User{}
		}
		resp := gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, viewCacheTTL)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListTradesHandler returns the ledger across all users, newest first,
// paginated (admin only)
func ListTradesHandler(store storage.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pageParams(c)
		cacheKey := "admin:trades:page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		if rdb != nil {
			var cached gin.H
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				cached["cached"] = true
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		total, err := store.CountTrades(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count trades"})
			return
		}
		trades, err := store.ListTrades(ctx, (page-1)*pageSize, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trades"})
			return
		}
		if trades == nil {
			trades = []domain.LedgerEntry{}
		}
		resp := gin.H{
			"trades":      trades,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, viewCacheTTL)
		}
		c.JSON(http.StatusOK, resp)
	}
}
