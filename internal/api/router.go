package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers 路由用到的全部 handler
type Handlers struct {
	Resolve     *ResolveHandler
	Match       *MatchHandler
	Feed        *FeedHandler
	Leaderboard *LeaderboardHandler
	Queue       *QueueHandler
}

// RegisterRoutes 注册所有业务路由
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/resolve", h.Resolve.Resolve)

		startups := apiGroup.Group("/startups/:id")
		startups.GET("/radar", h.Match.Radar)
		startups.GET("/top-matches", h.Match.TopMatches)
		startups.GET("/matches/:investor_id/why", h.Match.Why)
		startups.POST("/matches/:investor_id/unlock", h.Match.Unlock)

		apiGroup.GET("/feed/live", h.Feed.Live)
		apiGroup.GET("/signals", h.Feed.Signals)
		apiGroup.GET("/leaderboard", h.Leaderboard.List)
		apiGroup.GET("/admin/queue", h.Queue.Stats)
	}
}
