package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatsSource exposes the counters rendered by the stats endpoint.
type StatsSource interface {
	SubscriptionCount(ctx context.Context) (int64, error)
	BlockedCount(ctx context.Context) (int64, error)
	PoolStats() map[string]interface{}
}

// Stats creates a handler reporting subscription and blocklist counts plus
// database pool statistics.
func Stats(source StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		stats := gin.H{
			"timestamp": time.Now().Format(time.RFC3339),
			"database":  source.PoolStats(),
		}

		subs, err := source.SubscriptionCount(ctx)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
			return
		}
		stats["subscriptions"] = subs

		blocked, err := source.BlockedCount(ctx)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
			return
		}
		stats["blocked_users"] = blocked

		c.JSON(http.StatusOK, stats)
	}
}
