package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/service"
)

// Resolver service.ResolverService 的最小接口
type Resolver interface {
	Resolve(ctx context.Context, input string, opts service.ResolveOptions) (*service.Resolution, error)
}

// ResolveHandler URL → 初创公司
type ResolveHandler struct {
	resolver Resolver
	logger   *logrus.Logger
}

func NewResolveHandler(resolver Resolver, logger *logrus.Logger) *ResolveHandler {
	return &ResolveHandler{resolver: resolver, logger: logger}
}

type resolveRequest struct {
	URL               string `json:"url" binding:"required"`
	WaitForEnrichment bool   `json:"wait_for_enrichment"`
}

// Resolve POST /api/resolve {"url": "...", "wait_for_enrichment": false}
// 无法解析时返回 404，前端展示 "not found" 状态
func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	res, err := h.resolver.Resolve(c.Request.Context(), req.URL, service.ResolveOptions{WaitForEnrichment: req.WaitForEnrichment})
	if err != nil {
		writeError(c, h.logger, "resolve", err)
		return
	}
	c.JSON(http.StatusOK, res.View())
}
